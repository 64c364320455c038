package bytesize

import (
	"encoding/binary"
	"strings"
)

const (
	// maxSymbolLen is the longest custom word candidate the trainer counts.
	maxSymbolLen = 8
	// minSymbolLen is the shortest candidate worth a custom word; shorter
	// words never cost more than the two bytes of a Custom token.
	minSymbolLen = 3

	hashPrime = uint64(2971215073) // prime for multiplicative hashing
	hashShift = 15
)

func mixHash(w uint64) uint64 { x := w * hashPrime; return x ^ (x >> hashShift) }

// symbol is a custom word candidate of 1-8 bytes packed into one word, so
// the trainer can count candidates in a map without allocating strings.
//
//	val: the bytes in little-endian order, unused high bytes are zero
//	n:   the length
type symbol struct {
	val uint64
	n   uint8
}

func newSymbol(in []byte) symbol {
	n := min(len(in), maxSymbolLen)
	var buf [8]byte
	copy(buf[:], in[:n])
	return symbol{val: binary.LittleEndian.Uint64(buf[:]), n: uint8(n)}
}

func (s symbol) bytes() []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.val)
	return buf[:s.n]
}

func (s symbol) String() string { return string(s.bytes()) }

// overlaps reports whether one symbol is a substring of the other. Such
// pairs compete for the same occurrences.
func (s symbol) overlaps(o symbol) bool {
	a, b := s.String(), o.String()
	return strings.Contains(a, b) || strings.Contains(b, a)
}
