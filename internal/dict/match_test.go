package dict

import "testing"

func mustTable(t *testing.T, lemmas ...string) *Table {
	t.Helper()
	tbl, err := newTable("test", lemmas)
	if err != nil {
		t.Fatalf("newTable: %v", err)
	}
	return tbl
}

func TestTableLongestMatch(t *testing.T) {
	tbl := mustTable(t, "ab", "abc", "abcd", "x")

	tests := []struct {
		in    string
		space bool
		want  Match
		ok    bool
	}{
		{in: "abcdef", want: Match{Index: 2, Length: 4}, ok: true},
		{in: "abcx", want: Match{Index: 1, Length: 3}, ok: true},
		{in: "ab", want: Match{Index: 0, Length: 2}, ok: true},
		{in: " abc", space: true, want: Match{Index: 1, Length: 4, Space: true}, ok: true},
		{in: " abc", space: false, ok: false},
		{in: "zz", ok: false},
		{in: "x", want: Match{Index: 3, Length: 1}, ok: true},
	}
	for _, tc := range tests {
		got, ok := tbl.LongestMatch(tc.space, []byte(tc.in))
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("LongestMatch(%v, %q) = %+v, %v; want %+v, %v", tc.space, tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAtLength(t *testing.T) {
	tbl := mustTable(t, "ab", "abc")
	if _, ok := tbl.AtLength(3).LongestMatch(false, []byte("ab")); ok {
		t.Fatalf("short input must not match a longer lemma")
	}
	m, ok := tbl.AtLength(2).LongestMatch(false, []byte("abc"))
	if !ok || m.Index != 0 || m.Length != 2 {
		t.Fatalf("AtLength(2) = %+v, %v", m, ok)
	}
	m, ok = tbl.AtLength(3).LongestMatch(true, []byte(" abc"))
	if !ok || !m.Space || m.Length != 4 {
		t.Fatalf("AtLength(3) space = %+v, %v", m, ok)
	}
}

func TestWordsLongestMatch(t *testing.T) {
	w := Words{"http://", "https://", "", ".com", "http"}

	m, ok := w.LongestMatch(false, []byte("https://example.com"))
	if !ok || m.Index != 1 || m.Length != 8 {
		t.Fatalf("got %+v, %v", m, ok)
	}
	m, ok = w.LongestMatch(false, []byte("http://x"))
	if !ok || m.Index != 0 || m.Length != 7 {
		t.Fatalf("got %+v, %v", m, ok)
	}
	if _, ok := w.LongestMatch(false, []byte(" .com")); ok {
		t.Fatalf("space must not match when disabled")
	}
	m, ok = w.LongestMatch(true, []byte(" .com"))
	if !ok || m.Index != 3 || m.Length != 5 || !m.Space {
		t.Fatalf("got %+v, %v", m, ok)
	}
	if _, ok := w.LongestMatch(true, []byte("")); ok {
		t.Fatalf("empty input must not match")
	}
	if _, ok := (Words{""}).LongestMatch(true, []byte(" a")); ok {
		t.Fatalf("empty word must never match")
	}
}

func TestWordsTieKeepsFirst(t *testing.T) {
	w := Words{"abc", "abc", "ab"}
	m, ok := w.LongestMatch(false, []byte("abcd"))
	if !ok || m.Index != 0 {
		t.Fatalf("got %+v, %v; want the first equal-length entry", m, ok)
	}
}

func TestMatchersSatisfyInterface(t *testing.T) {
	var _ Matcher = (*Table)(nil)
	var _ Matcher = Words(nil)
	var _ Matcher = lengthView{}
}
