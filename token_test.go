package bytesize

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestKindString(t *testing.T) {
	if got := KindRepetitions.String(); got != "Repetitions" {
		t.Fatalf("KindRepetitions = %q", got)
	}
	if got := Kind(200).String(); got != "Kind(200)" {
		t.Fatalf("unknown kind = %q", got)
	}
}

func TestEncodedLen(t *testing.T) {
	tests := []struct {
		tok  Token
		want int
	}{
		{oneByteToken(1), 1},
		{twoByteToken(true, 3), 2},
		{threeByteToken(false, 3), 3},
		{unicodeToken('é'), 3},
		{unicodeToken('❤'), 4},
		{unicodeToken('😀'), 5},
		{numberToken(uint128.From64(1000)), 3},
		{numberToken(uint128.From64(1023)), 3},
		{numberToken(uint128.From64(1024)), 4},
		{numberToken(uint128.From64(1<<62 - 1)), 10},
		{numberToken(numberLimit.Sub64(1)), 10},
		{unprintableToken(0), 2},
		{repetitionsToken(31, 0), 3},
		{customToken(true, 15), 2},
	}
	for _, tc := range tests {
		if got := tc.tok.EncodedLen(); got != tc.want {
			t.Fatalf("%v.EncodedLen() = %d, want %d", tc.tok, got, tc.want)
		}
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{oneByteToken('a'), `OneByte("a")`},
		{oneByteToken(1), `OneByte("the")`},
		{twoByteToken(true, 1), `TwoByte(" with")`},
		{unicodeToken('❤'), `Unicode('❤')`},
		{numberToken(uint128.From64(1000)), "Number(1000)"},
		{repetitionsToken(4, 1), `Repetitions(4 x "-")`},
		{customToken(true, 3), "Custom(space, #3)"},
		{customToken(false, 0), "Custom(#0)"},
		{twoByteToken(false, 1 << 20), "TwoByte(#1048576)"},
	}
	for _, tc := range tests {
		if got := tc.tok.String(); got != tc.want {
			t.Fatalf("String() = %s, want %s", got, tc.want)
		}
	}
}

func TestAppendTextRejectsBadTokens(t *testing.T) {
	e := EmptyBuilder().SetCustom([]string{"abc"}).Engine()
	bad := []Token{
		oneByteToken(-1),
		twoByteToken(false, 1<<20),
		repetitionsToken(4, 255),
		customToken(false, 1),
		unicodeToken(0xD800),
		{Kind: numKinds},
	}
	for _, tok := range bad {
		if _, err := e.Text(tok); err != ErrFormat {
			t.Fatalf("Text(%v) err = %v, want ErrFormat", tok, err)
		}
	}
	if got, err := e.Text(customToken(true, 0)); err != nil || got != " abc" {
		t.Fatalf("Text(custom) = %q, %v", got, err)
	}
}
