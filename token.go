package bytesize

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"unicode/utf8"

	"lukechampine.com/uint128"

	"github.com/axiomhq/bytesize/internal/dict"
)

// Kind identifies the representation chosen for one token.
type Kind uint8

const (
	KindOneByte     Kind = iota // lemma or literal byte of the one-byte table, 1 byte
	KindTwoByte                 // common word, optional leading space, 2 bytes
	KindThreeByte               // uncommon word, optional leading space, 3 bytes
	KindUnicode                 // one non-ASCII scalar value, 1+len(utf8) bytes
	KindNumber                  // decimal number in [1000, 2^66), 3-10 bytes
	KindUnprintable             // ASCII control byte, 2 bytes
	KindRepetitions             // run of 4..31 copies of a repetition unit, 3 bytes
	KindCustom                  // caller supplied word, optional leading space, 2 bytes

	numKinds
)

var kindNames = [numKinds]string{
	KindOneByte:     "OneByte",
	KindTwoByte:     "TwoByte",
	KindThreeByte:   "ThreeByte",
	KindUnicode:     "Unicode",
	KindNumber:      "Number",
	KindUnprintable: "Unprintable",
	KindRepetitions: "Repetitions",
	KindCustom:      "Custom",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Token is one unit of the intermediate representation between text and
// the compressed bytes. Only the fields relevant to Kind are set.
type Token struct {
	Kind   Kind
	Space  bool            // TwoByte, ThreeByte, Custom: a space precedes the lemma
	Index  int             // dictionary or custom word index
	Count  int             // Repetitions: number of copies
	Rune   rune            // Unicode
	Number uint128.Uint128 // Number
}

// minNumber is the smallest value worth a Number token; smaller values are
// never shorter than their digits.
const minNumber = 1000

// numberLimit is the exclusive upper bound of a Number token: the value
// shifted right by two must fit in eight bytes.
var numberLimit = uint128.From64(1).Lsh(66)

func oneByteToken(index int) Token { return Token{Kind: KindOneByte, Index: index} }

func twoByteToken(space bool, index int) Token {
	return Token{Kind: KindTwoByte, Space: space, Index: index}
}

func threeByteToken(space bool, index int) Token {
	return Token{Kind: KindThreeByte, Space: space, Index: index}
}

func unicodeToken(r rune) Token { return Token{Kind: KindUnicode, Rune: r} }

func numberToken(v uint128.Uint128) Token { return Token{Kind: KindNumber, Number: v} }

func unprintableToken(index int) Token { return Token{Kind: KindUnprintable, Index: index} }

func repetitionsToken(count, index int) Token {
	return Token{Kind: KindRepetitions, Count: count, Index: index}
}

func customToken(space bool, index int) Token {
	return Token{Kind: KindCustom, Space: space, Index: index}
}

// EncodedLen returns the number of bytes the token occupies once serialized.
func (t Token) EncodedLen() int {
	switch t.Kind {
	case KindOneByte:
		return 1
	case KindTwoByte, KindUnprintable, KindCustom:
		return 2
	case KindThreeByte, KindRepetitions:
		return 3
	case KindUnicode:
		return 1 + utf8.RuneLen(t.Rune)
	case KindNumber:
		return 2 + numberTailLen(t.Number)
	}
	return 0
}

// numberTailLen returns the length of the minimal little-endian form of
// v>>2, at least one byte.
func numberTailLen(v uint128.Uint128) int {
	n := (bits.Len64(v.Rsh(2).Lo) + 7) / 8
	if n == 0 {
		return 1
	}
	return n
}

// appendText appends the text the token stands for. custom is the word
// list of the engine that produced or decoded the token.
func (t Token) appendText(dst []byte, d *dict.Set, custom []string) ([]byte, error) {
	switch t.Kind {
	case KindOneByte, KindTwoByte, KindThreeByte, KindUnprintable:
		return appendLemma(dst, lemmaTable(d, t.Kind), t.Space, t.Index)
	case KindUnicode:
		if !utf8.ValidRune(t.Rune) {
			return dst, ErrFormat
		}
		return utf8.AppendRune(dst, t.Rune), nil
	case KindNumber:
		if t.Number.Hi == 0 {
			return strconv.AppendUint(dst, t.Number.Lo, 10), nil
		}
		return append(dst, t.Number.String()...), nil
	case KindRepetitions:
		unit, ok := d.Repetition.Lemma(t.Index)
		if !ok {
			return dst, ErrFormat
		}
		for i := 0; i < t.Count; i++ {
			dst = append(dst, unit...)
		}
		return dst, nil
	case KindCustom:
		if t.Index < 0 || t.Index >= len(custom) {
			return dst, ErrFormat
		}
		if t.Space {
			dst = append(dst, ' ')
		}
		return append(dst, custom[t.Index]...), nil
	}
	return dst, ErrFormat
}

// lemmaTable returns the table holding the lemmas of kind k.
func lemmaTable(d *dict.Set, k Kind) *dict.Table {
	switch k {
	case KindOneByte:
		return d.OneByte
	case KindTwoByte:
		return d.TwoByte
	case KindThreeByte:
		return d.ThreeByte
	case KindUnprintable:
		return d.Control
	case KindRepetitions:
		return d.Repetition
	}
	return nil
}

func appendLemma(dst []byte, tbl *dict.Table, space bool, index int) ([]byte, error) {
	lemma, ok := tbl.Lemma(index)
	if !ok {
		return dst, ErrFormat
	}
	if space {
		dst = append(dst, ' ')
	}
	return append(dst, lemma...), nil
}

// String renders the token for debugging, e.g. TwoByte(" with") or Number(1000).
func (t Token) String() string {
	d := dict.Default()
	var sb strings.Builder
	sb.WriteString(t.Kind.String())
	sb.WriteByte('(')
	switch t.Kind {
	case KindOneByte, KindTwoByte, KindThreeByte, KindUnprintable:
		text, err := appendLemma(nil, lemmaTable(d, t.Kind), t.Space, t.Index)
		if err != nil {
			fmt.Fprintf(&sb, "#%d", t.Index)
		} else {
			sb.WriteString(strconv.Quote(string(text)))
		}
	case KindUnicode:
		sb.WriteString(strconv.QuoteRune(t.Rune))
	case KindNumber:
		sb.WriteString(t.Number.String())
	case KindRepetitions:
		unit, _ := d.Repetition.Lemma(t.Index)
		fmt.Fprintf(&sb, "%d x %q", t.Count, unit)
	case KindCustom:
		if t.Space {
			sb.WriteString("space, ")
		}
		fmt.Fprintf(&sb, "#%d", t.Index)
	}
	sb.WriteByte(')')
	return sb.String()
}
