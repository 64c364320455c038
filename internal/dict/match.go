package dict

// Match describes a lemma found at the start of the input.
type Match struct {
	Index  int  // index of the lemma in its source
	Length int  // input bytes consumed, including the leading space
	Space  bool // a leading space was consumed with the lemma
}

// Matcher finds the longest lemma of a source that prefixes s. When space
// is true and s starts with ' ', a lemma following that space also matches
// and consumes one extra byte.
type Matcher interface {
	LongestMatch(space bool, s []byte) (Match, bool)
}

// matchAt looks for a lemma of exactly n bytes at the start of s, trying
// the space-prefixed form first.
func (t *Table) matchAt(space bool, s []byte, n int) (Match, bool) {
	if space && len(s) > n && s[0] == ' ' {
		if i, ok := t.index[string(s[1:n+1])]; ok {
			return Match{Index: i, Length: n + 1, Space: true}, true
		}
	}
	if len(s) >= n {
		if i, ok := t.index[string(s[:n])]; ok {
			return Match{Index: i, Length: n}, true
		}
	}
	return Match{}, false
}

// LongestMatch implements Matcher, trying lemma lengths longest first.
func (t *Table) LongestMatch(space bool, s []byte) (Match, bool) {
	for _, n := range t.lengths {
		if m, ok := t.matchAt(space, s, n); ok {
			return m, true
		}
	}
	return Match{}, false
}

// AtLength returns a Matcher restricted to the lemmas of exactly n bytes.
func (t *Table) AtLength(n int) Matcher {
	return lengthView{t: t, n: n}
}

type lengthView struct {
	t *Table
	n int
}

func (v lengthView) LongestMatch(space bool, s []byte) (Match, bool) {
	return v.t.matchAt(space, s, v.n)
}

// Words is an ordered list of caller supplied lemmas. Unlike a Table it is
// scanned linearly; lists are at most a few dozen entries long.
// Empty entries never match.
type Words []string

// LongestMatch implements Matcher. The longest match wins; among equally
// long matches the earliest entry wins.
func (w Words) LongestMatch(space bool, s []byte) (Match, bool) {
	var (
		best  Match
		found bool
	)
	for i, word := range w {
		if word == "" {
			continue
		}
		m, ok := matchWord(word, space, s)
		if !ok {
			continue
		}
		if !found || m.Length > best.Length {
			m.Index = i
			best = m
			found = true
		}
	}
	return best, found
}

func matchWord(word string, space bool, s []byte) (Match, bool) {
	if space && len(s) > 0 && s[0] == ' ' && hasPrefix(s[1:], word) {
		return Match{Length: len(word) + 1, Space: true}, true
	}
	if hasPrefix(s, word) {
		return Match{Length: len(word)}, true
	}
	return Match{}, false
}

func hasPrefix(s []byte, word string) bool {
	return len(s) >= len(word) && string(s[:len(word)]) == word
}
