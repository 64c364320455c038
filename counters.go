package bytesize

// counters tracks candidate frequencies during training.
//
// Counts saturate instead of wrapping. Candidates are remembered in the order
// they were first seen so that iteration, and therefore training, is
// deterministic regardless of map ordering.
type counters struct {
	counts map[symbol]uint32
	order  []symbol
}

func newCounters() *counters {
	return &counters{counts: make(map[symbol]uint32)}
}

// inc increments the frequency count of a candidate.
func (c *counters) inc(s symbol) {
	n, ok := c.counts[s]
	if !ok {
		c.order = append(c.order, s)
	}
	if n < ^uint32(0) {
		c.counts[s] = n + 1
	}
}

// each calls fn for every candidate counted at least minCount times, in
// first-seen order.
func (c *counters) each(minCount uint32, fn func(s symbol, count uint32)) {
	for _, s := range c.order {
		if n := c.counts[s]; n >= minCount {
			fn(s, n)
		}
	}
}
