package bytesize

import (
	"fmt"
	"unicode/utf8"

	"lukechampine.com/uint128"

	"github.com/axiomhq/bytesize/internal/dict"
)

// Sizes of the fixed partitions of the escape code space.
const (
	customCodes     = 32
	repetitionCodes = 32
	numberCodes     = 32

	// customHalf splits the custom partition when custom words may carry a
	// leading space: [0,16) without, [16,32) with.
	customHalf = customCodes / 2

	// numberLenCodes is the number of tail lengths (1..8 bytes) per low2 value.
	numberLenCodes = 8
)

// Code layout of one serialized token, keyed by its first byte H:
//
//	H < N:  one-byte table entry H                           (1 byte)
//	H == N: Unicode escape, followed by the UTF-8 bytes      (1+1..4 bytes)
//	H > N:  code = (H-N-1)*256 + second byte, looked up in the
//	        partitions below, in order, followed by a tail
//
// where N is the size of the one-byte table. The partitions are:
//
//	two-byte      2*T2      first half without space, second half with
//	custom        32        halves of 16 when custom spaces are enabled
//	repetitions   32        offset is the count, tail is the unit index
//	number        32        offset is low2*8 + tail length - 1
//	unprintable   #controls
//	three-byte    ceil(2*T3/256), tail byte T: (offset*256+T) split by T3
type layout struct {
	oneByte int // size of the one-byte table, also the Unicode escape byte
	parts   []partition
	byKind  [numKinds]int // index into parts, -1 for kinds without a partition
	total   int           // number of escape codes in use
}

// partition is one contiguous range of the escape code space.
type partition struct {
	kind Kind
	base int
	size int

	// offset returns the position of t inside the partition.
	offset func(t Token) int
	// tail appends the bytes following the two header bytes, if any.
	tail func(dst []byte, t Token) []byte
	// decode rebuilds the token at offset, reading its tail from src.
	// It returns the number of tail bytes consumed.
	decode func(offset int, src []byte) (Token, int, error)
}

func newLayout(d *dict.Set, customSpaces bool) (*layout, error) {
	var (
		two    = d.TwoByte.Len()
		three  = d.ThreeByte.Len()
		nctrl  = d.Control.Len()
		parts  = make([]partition, 0, 6)
		oneLen = d.OneByte.Len()
	)
	parts = append(parts,
		partition{
			kind: KindTwoByte,
			size: 2 * two,
			offset: func(t Token) int {
				if t.Space {
					return two + t.Index
				}
				return t.Index
			},
			decode: func(off int, _ []byte) (Token, int, error) {
				return twoByteToken(off >= two, off%two), 0, nil
			},
		},
		partition{
			kind: KindCustom,
			size: customCodes,
			offset: func(t Token) int {
				if customSpaces && t.Space {
					return customHalf + t.Index
				}
				return t.Index
			},
			decode: func(off int, _ []byte) (Token, int, error) {
				if customSpaces && off >= customHalf {
					return customToken(true, off-customHalf), 0, nil
				}
				return customToken(false, off), 0, nil
			},
		},
		partition{
			kind:   KindRepetitions,
			size:   repetitionCodes,
			offset: func(t Token) int { return t.Count },
			tail: func(dst []byte, t Token) []byte {
				return append(dst, byte(t.Index))
			},
			decode: func(off int, src []byte) (Token, int, error) {
				if len(src) < 1 {
					return Token{}, 0, ErrUnexpectedEndOfBytes
				}
				return repetitionsToken(off, int(src[0])), 1, nil
			},
		},
		partition{
			kind:   KindNumber,
			size:   numberCodes,
			offset: numberOffset,
			tail:   appendNumberTail,
			decode: decodeNumber,
		},
		partition{
			kind:   KindUnprintable,
			size:   nctrl,
			offset: func(t Token) int { return t.Index },
			decode: func(off int, _ []byte) (Token, int, error) {
				return unprintableToken(off), 0, nil
			},
		},
		partition{
			kind: KindThreeByte,
			size: (2*three + 255) / 256,
			offset: func(t Token) int {
				return threeByteCode(three, t) >> 8
			},
			tail: func(dst []byte, t Token) []byte {
				return append(dst, byte(threeByteCode(three, t)))
			},
			decode: func(off int, src []byte) (Token, int, error) {
				if len(src) < 1 {
					return Token{}, 0, ErrUnexpectedEndOfBytes
				}
				code := off<<8 | int(src[0])
				if code >= 2*three {
					return Token{}, 0, ErrInvalidCode
				}
				return threeByteToken(code >= three, code%three), 1, nil
			},
		},
	)

	l := &layout{oneByte: oneLen, parts: parts}
	for i := range l.byKind {
		l.byKind[i] = -1
	}
	for i := range l.parts {
		l.parts[i].base = l.total
		l.total += l.parts[i].size
		l.byKind[l.parts[i].kind] = i
	}
	if avail := (255 - oneLen) * 256; l.total > avail {
		return nil, fmt.Errorf("bytesize: dictionaries need %d escape codes, only %d available", l.total, avail)
	}
	return l, nil
}

func threeByteCode(three int, t Token) int {
	if t.Space {
		return three + t.Index
	}
	return t.Index
}

// numberOffset packs the two low bits of the value and the length of the
// tail holding the remaining bits.
func numberOffset(t Token) int {
	low2 := int(t.Number.Lo & 3)
	return low2*numberLenCodes + numberTailLen(t.Number) - 1
}

// appendNumberTail appends value>>2 in minimal little-endian form.
func appendNumberTail(dst []byte, t Token) []byte {
	rest := t.Number.Rsh(2).Lo
	for n := numberTailLen(t.Number); n > 0; n-- {
		dst = append(dst, byte(rest))
		rest >>= 8
	}
	return dst
}

func decodeNumber(off int, src []byte) (Token, int, error) {
	low2 := off / numberLenCodes
	n := off%numberLenCodes + 1
	if len(src) < n {
		return Token{}, 0, ErrUnexpectedEndOfBytes
	}
	v := uint128.From64(uint64(low2))
	for i := 0; i < n; i++ {
		v = v.Or(uint128.From64(uint64(src[i])).Lsh(uint(i*8 + 2)))
	}
	return numberToken(v), n, nil
}

// appendToken serializes t. The token must come from the tokenizer of an
// engine sharing this layout.
func (l *layout) appendToken(dst []byte, t Token) []byte {
	switch t.Kind {
	case KindOneByte:
		return append(dst, byte(t.Index))
	case KindUnicode:
		dst = append(dst, byte(l.oneByte))
		return utf8.AppendRune(dst, t.Rune)
	}
	p := &l.parts[l.byKind[t.Kind]]
	code := p.base + p.offset(t)
	dst = append(dst, byte(code>>8+l.oneByte+1), byte(code))
	if p.tail != nil {
		dst = p.tail(dst, t)
	}
	return dst
}

// decodeToken reads one token from the start of src and returns it together
// with the number of bytes it occupied.
func (l *layout) decodeToken(src []byte) (Token, int, error) {
	if len(src) == 0 {
		return Token{}, 0, ErrUnexpectedEndOfBytes
	}
	h := int(src[0])
	switch {
	case h < l.oneByte:
		return oneByteToken(h), 1, nil
	case h == l.oneByte:
		r, n, err := decodeScalar(src[1:])
		if err != nil {
			return Token{}, 0, err
		}
		return unicodeToken(r), 1 + n, nil
	}
	if len(src) < 2 {
		return Token{}, 0, ErrUnexpectedEndOfBytes
	}
	code := (h-l.oneByte-1)<<8 | int(src[1])
	for i := range l.parts {
		p := &l.parts[i]
		if code < p.base+p.size {
			t, n, err := p.decode(code-p.base, src[2:])
			if err != nil {
				return Token{}, 0, err
			}
			return t, 2 + n, nil
		}
	}
	return Token{}, 0, ErrInvalidCode
}

// decodeScalar reads exactly one UTF-8 encoded scalar value.
func decodeScalar(src []byte) (rune, int, error) {
	if len(src) == 0 {
		return 0, 0, ErrUnexpectedEndOfBytes
	}
	n := utf8SeqLen(src[0])
	if n == 0 {
		return 0, 0, ErrInvalidUnicodeScalar
	}
	if len(src) < n {
		return 0, 0, ErrUnexpectedEndOfBytes
	}
	r, size := utf8.DecodeRune(src[:n])
	if size != n {
		return 0, 0, ErrInvalidUnicodeScalar
	}
	return r, n, nil
}

// utf8SeqLen returns the sequence length announced by a leading byte, or 0
// if b cannot start a sequence.
func utf8SeqLen(b byte) int {
	switch {
	case b < utf8.RuneSelf:
		return 1
	case b >= 0xc2 && b <= 0xdf:
		return 2
	case b >= 0xe0 && b <= 0xef:
		return 3
	case b >= 0xf0 && b <= 0xf4:
		return 4
	}
	return 0
}
