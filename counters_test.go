package bytesize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type seenCount struct {
	Word  string
	Count uint32
}

func collect(c *counters, minCount uint32) []seenCount {
	var seen []seenCount
	c.each(minCount, func(s symbol, n uint32) { seen = append(seen, seenCount{s.String(), n}) })
	return seen
}

func TestCountersBasic(t *testing.T) {
	c := newCounters()
	abc := newSymbol([]byte("abc"))
	xyz := newSymbol([]byte("xyz"))

	c.inc(xyz)
	c.inc(abc)
	c.inc(abc)

	// each visits in first-seen order and honors the minimum
	want := []seenCount{{"xyz", 1}, {"abc", 2}}
	if diff := cmp.Diff(want, collect(c, 1)); diff != "" {
		t.Fatalf("each (-want +got):\n%s", diff)
	}
	want = []seenCount{{"abc", 2}}
	if diff := cmp.Diff(want, collect(c, 2)); diff != "" {
		t.Fatalf("each with minimum (-want +got):\n%s", diff)
	}

	// saturation
	c.counts[abc] = ^uint32(0)
	c.inc(abc)
	want = []seenCount{{"abc", ^uint32(0)}}
	if diff := cmp.Diff(want, collect(c, 2)); diff != "" {
		t.Fatalf("count wrapped (-want +got):\n%s", diff)
	}
}
