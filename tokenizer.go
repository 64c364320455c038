package bytesize

import (
	"unicode/utf8"

	"lukechampine.com/uint128"

	"github.com/axiomhq/bytesize/internal/dict"
)

const (
	// minRepetitions is the largest run that is not worth a Repetitions token.
	minRepetitions = 3
	// maxRepetitions is the longest run a single Repetitions token holds;
	// the count is stored as an offset in a 32-wide partition.
	maxRepetitions = repetitionCodes - 1
	// maxNumberDigits is the number of digits of 2^66-1.
	maxNumberDigits = 20
)

// detector inspects the input at the cursor and returns the token it would
// emit and the number of input bytes that token covers.
type detector func(e *Engine, s []byte) (Token, int, bool)

// detectors run in this order and the first hit wins. The order is part of
// the format: changing it changes the compressed bytes for the same text.
// detectLiteral always succeeds, so every input is covered.
var detectors = [...]detector{
	detectCustom,
	detectRepetition,
	detectNumber,
	detectDictionary,
	detectUnicode,
	detectControl,
	detectLiteral,
}

// sweepLevel holds the per-length matchers visited by the dictionary sweep.
type sweepLevel struct {
	one, two, three dict.Matcher
}

func newSweep(d *dict.Set) []sweepLevel {
	levels := make([]sweepLevel, len(d.SweepLengths()))
	for i, n := range d.SweepLengths() {
		levels[i] = sweepLevel{
			one:   d.OneByte.AtLength(n),
			two:   d.TwoByte.AtLength(n),
			three: d.ThreeByte.AtLength(n),
		}
	}
	return levels
}

// tokenizer walks the input once, left to right, and never backtracks.
type tokenizer struct {
	e    *Engine
	rest []byte
}

func newTokenizer(e *Engine, s []byte) *tokenizer {
	return &tokenizer{e: e, rest: s}
}

// next returns the next token and the input it covers. It reports false
// once the input is exhausted.
func (z *tokenizer) next() (Token, []byte, bool) {
	if len(z.rest) == 0 {
		return Token{}, nil, false
	}
	for _, detect := range detectors {
		if tok, n, ok := detect(z.e, z.rest); ok {
			covered := z.rest[:n]
			z.rest = z.rest[n:]
			return tok, covered, true
		}
	}
	panic("bytesize: no detector matched")
}

func detectCustom(e *Engine, s []byte) (Token, int, bool) {
	m, ok := e.words.LongestMatch(e.customSpaces, s)
	if !ok {
		return Token{}, 0, false
	}
	return customToken(m.Space, m.Index), m.Length, true
}

// detectRepetition looks for a run of abutting copies of one repetition
// unit, trying the longest unit length first.
func detectRepetition(e *Engine, s []byte) (Token, int, bool) {
	reps := e.dicts.Repetition
	for _, n := range reps.Lengths() {
		count, index := 0, -1
		for sub := s; len(sub) >= n && count < maxRepetitions; sub = sub[n:] {
			i, ok := reps.Lookup(sub[:n])
			if !ok || (index >= 0 && i != index) {
				break
			}
			index = i
			count++
		}
		if count > minRepetitions {
			return repetitionsToken(count, index), count * n, true
		}
	}
	return Token{}, 0, false
}

// detectNumber accepts the maximal digit run at the cursor when its value
// is in [1000, 2^66) and formatting the value gives back the same digits.
func detectNumber(_ *Engine, s []byte) (Token, int, bool) {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	if n == 0 || n > maxNumberDigits {
		return Token{}, 0, false
	}
	var v uint128.Uint128
	for _, c := range s[:n] {
		v = v.Mul64(10).Add64(uint64(c - '0'))
	}
	if v.Cmp64(minNumber) < 0 || v.Cmp(numberLimit) >= 0 {
		return Token{}, 0, false
	}
	if v.String() != string(s[:n]) {
		return Token{}, 0, false
	}
	return numberToken(v), n, true
}

// detectDictionary sweeps lemma lengths longest first. At each length the
// one-byte table is tried before the two-byte and three-byte tables, so the
// cheapest code wins among equally long matches.
func detectDictionary(e *Engine, s []byte) (Token, int, bool) {
	for _, level := range e.sweep {
		if m, ok := level.one.LongestMatch(false, s); ok {
			return oneByteToken(m.Index), m.Length, true
		}
		if m, ok := level.two.LongestMatch(true, s); ok {
			return twoByteToken(m.Space, m.Index), m.Length, true
		}
		if m, ok := level.three.LongestMatch(true, s); ok {
			return threeByteToken(m.Space, m.Index), m.Length, true
		}
	}
	return Token{}, 0, false
}

// detectUnicode emits one scalar value for a non-ASCII leading byte. A byte
// that does not start a valid sequence becomes U+FFFD covering that byte,
// the same way ranging over a string treats it.
func detectUnicode(_ *Engine, s []byte) (Token, int, bool) {
	if s[0] < utf8.RuneSelf {
		return Token{}, 0, false
	}
	r, size := utf8.DecodeRune(s)
	return unicodeToken(r), size, true
}

func detectControl(e *Engine, s []byte) (Token, int, bool) {
	i, ok := e.dicts.Control.Lookup(s[:1])
	if !ok {
		return Token{}, 0, false
	}
	return unprintableToken(i), 1, true
}

// detectLiteral relies on the identity slots of the one-byte table.
func detectLiteral(_ *Engine, s []byte) (Token, int, bool) {
	return oneByteToken(int(s[0])), 1, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
