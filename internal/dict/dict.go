// Package dict holds the static dictionaries used by the bytesize encoder.
//
// Every dictionary is an immutable bijection between lemmas (short byte
// strings) and dense indices 0..Len()-1. The tables are parsed once from
// the embedded word lists on first use and never change afterwards, so a
// *Set may be shared freely between goroutines.
//
// The one-byte table reserves the identity index for every printable ASCII
// byte as well as '\t', '\n' and '\r'. The slots of the remaining ASCII
// control bytes carry multi-byte lemmas instead; those bytes are handled by
// the control table.
package dict

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"
)

var (
	//go:embed data/one_byte.txt
	oneByteList []byte
	//go:embed data/two_byte.txt
	twoByteList []byte
	//go:embed data/three_byte.txt
	threeByteList []byte
	//go:embed data/repetition.txt
	repetitionList []byte
)

// Keys for the dictionary fingerprint; changing them changes every fingerprint.
const (
	fingerprintK0 = 0x6279746573697a65 // "bytesize"
	fingerprintK1 = 0x6469637469736574 // "dictiset"
)

// Table is one immutable lemma dictionary.
type Table struct {
	name    string
	lemmas  []string
	index   map[string]int
	lengths []int // distinct lemma lengths, longest first
}

func newTable(name string, lemmas []string) (*Table, error) {
	t := &Table{
		name:   name,
		lemmas: lemmas,
		index:  make(map[string]int, len(lemmas)),
	}
	for i, lemma := range lemmas {
		if lemma == "" {
			return nil, fmt.Errorf("dict: %s: empty lemma at index %d", name, i)
		}
		if j, ok := t.index[lemma]; ok {
			return nil, fmt.Errorf("dict: %s: lemma %q at index %d duplicates index %d", name, lemma, i, j)
		}
		t.index[lemma] = i
		if !slices.Contains(t.lengths, len(lemma)) {
			t.lengths = append(t.lengths, len(lemma))
		}
	}
	slices.Sort(t.lengths)
	slices.Reverse(t.lengths)
	return t, nil
}

// Name returns the name of the table, for diagnostics.
func (t *Table) Name() string { return t.name }

// Len returns the number of lemmas in the table.
func (t *Table) Len() int { return len(t.lemmas) }

// Lengths returns the distinct lemma lengths present in the table,
// sorted longest first. The slice must not be modified.
func (t *Table) Lengths() []int { return t.lengths }

// Lookup returns the index of the lemma equal to b.
func (t *Table) Lookup(b []byte) (int, bool) {
	i, ok := t.index[string(b)]
	return i, ok
}

// Lemma returns the lemma stored at index i.
func (t *Table) Lemma(i int) (string, bool) {
	if i < 0 || i >= len(t.lemmas) {
		return "", false
	}
	return t.lemmas[i], true
}

// Set groups the five dictionaries the encoder works with.
type Set struct {
	OneByte    *Table
	TwoByte    *Table
	ThreeByte  *Table
	Control    *Table
	Repetition *Table

	sweep       []int
	fingerprint uint64
}

// SweepLengths returns the union of the lemma lengths of the one-, two- and
// three-byte tables, longest first, without length 1. The slice must not be
// modified.
func (s *Set) SweepLengths() []int { return s.sweep }

// Fingerprint identifies the exact content and order of every table.
// Two builds with different word lists produce different fingerprints.
func (s *Set) Fingerprint() uint64 { return s.fingerprint }

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the dictionaries built from the embedded word lists.
// It panics if the embedded lists are malformed, which is a build defect.
func Default() *Set {
	defaultOnce.Do(func() {
		s, err := Load(oneByteList, twoByteList, threeByteList, repetitionList)
		if err != nil {
			panic(err)
		}
		defaultSet = s
	})
	return defaultSet
}

// Load builds a Set from word lists in the embedded list format: one lemma
// per line, blank lines and lines starting with '#' are ignored, and lines
// starting with '"' are Go-quoted strings. Duplicate lemmas keep their first
// position.
func Load(oneByte, twoByte, threeByte, repetition []byte) (*Set, error) {
	var (
		s   = &Set{}
		err error
	)
	extra, err := ParseList(oneByte)
	if err != nil {
		return nil, fmt.Errorf("dict: one-byte list: %w", err)
	}
	if s.OneByte, err = buildOneByte(extra); err != nil {
		return nil, err
	}
	two, err := ParseList(twoByte)
	if err != nil {
		return nil, fmt.Errorf("dict: two-byte list: %w", err)
	}
	if s.TwoByte, err = newTable("two-byte", two); err != nil {
		return nil, err
	}
	three, err := ParseList(threeByte)
	if err != nil {
		return nil, fmt.Errorf("dict: three-byte list: %w", err)
	}
	if s.ThreeByte, err = newTable("three-byte", three); err != nil {
		return nil, err
	}
	reps, err := ParseList(repetition)
	if err != nil {
		return nil, fmt.Errorf("dict: repetition list: %w", err)
	}
	if len(reps) > 256 {
		return nil, fmt.Errorf("dict: repetition list has %d units, at most 256 fit in one byte", len(reps))
	}
	if s.Repetition, err = newTable("repetition", reps); err != nil {
		return nil, err
	}
	if s.Control, err = buildControl(); err != nil {
		return nil, err
	}

	for _, t := range []*Table{s.OneByte, s.TwoByte, s.ThreeByte} {
		for _, n := range t.lengths {
			if n > 1 && !slices.Contains(s.sweep, n) {
				s.sweep = append(s.sweep, n)
			}
		}
	}
	slices.Sort(s.sweep)
	slices.Reverse(s.sweep)
	s.fingerprint = s.hash()
	return s, nil
}

// IsControl reports whether b is an ASCII control byte handled by the
// control table rather than by an identity slot of the one-byte table.
func IsControl(b byte) bool {
	return (b < 0x20 && b != '\t' && b != '\n' && b != '\r') || b == 0x7f
}

func buildOneByte(extra []string) (*Table, error) {
	lemmas := make([]string, 0, 128+len(extra))
	next := 0
	for b := 0; b < 128; b++ {
		if !IsControl(byte(b)) {
			lemmas = append(lemmas, string([]byte{byte(b)}))
			continue
		}
		if next >= len(extra) {
			return nil, fmt.Errorf("dict: one-byte list has %d lemmas, not enough to fill the control slots", len(extra))
		}
		lemmas = append(lemmas, extra[next])
		next++
	}
	lemmas = append(lemmas, extra[next:]...)
	if len(lemmas) > 254 {
		return nil, fmt.Errorf("dict: one-byte table has %d entries, leaving no escape bytes", len(lemmas))
	}
	return newTable("one-byte", lemmas)
}

func buildControl() (*Table, error) {
	var lemmas []string
	for b := 0; b < 128; b++ {
		if IsControl(byte(b)) {
			lemmas = append(lemmas, string([]byte{byte(b)}))
		}
	}
	return newTable("control", lemmas)
}

// ParseList parses a word list. See Load for the format.
func ParseList(data []byte) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]struct{})
		sc   = bufio.NewScanner(bytes.NewReader(data))
		line int
	)
	for sc.Scan() {
		line++
		text := string(bytes.TrimSuffix(sc.Bytes(), []byte{'\r'}))
		if text == "" || text[0] == '#' {
			continue
		}
		if text[0] == '"' {
			unq, err := strconv.Unquote(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			text = unq
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Set) hash() uint64 {
	var key [16]byte
	binary.LittleEndian.PutUint64(key[:8], fingerprintK0)
	binary.LittleEndian.PutUint64(key[8:], fingerprintK1)
	h := siphash.New(key[:])
	var lenbuf [binary.MaxVarintLen64]byte
	for _, t := range []*Table{s.OneByte, s.TwoByte, s.ThreeByte, s.Control, s.Repetition} {
		n := binary.PutUvarint(lenbuf[:], uint64(len(t.lemmas)))
		h.Write(lenbuf[:n])
		for _, lemma := range t.lemmas {
			n = binary.PutUvarint(lenbuf[:], uint64(len(lemma)))
			h.Write(lenbuf[:n])
			h.Write([]byte(lemma))
		}
	}
	return h.Sum64()
}
