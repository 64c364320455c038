package bytesize

import (
	"container/heap"
	"unicode/utf8"
)

const (
	sampleTarget = 1 << 14 // 16KB
	sampleMaxSz  = 2 * sampleTarget
	sampleLine   = 512

	minCandidateCount = 2
	// candidateFactor is how many ranked candidates per custom word slot
	// are kept for selection, leaving room to skip overlapping ones.
	candidateFactor = 4
	rngSeed         = 4637947
)

// TrainCustom suggests custom words for messages like inputs. It counts
// every substring of 3 to 8 bytes, scores each one by its frequency times
// the bytes saved by encoding it as a two byte Custom token instead of
// through the dictionaries, and keeps the best non-overlapping ones up to
// the custom word capacity. Words the tokenizer never ends up using are
// dropped. Training is deterministic.
func TrainCustom(inputs []string, customSpaces bool) []string {
	var (
		sample   = makeSample(inputs)
		base     = EmptyBuilder().SetCustomSpaces(customSpaces).Engine()
		capacity = base.CustomCapacity()
		counter  = newCounters()
	)
	countCandidates(counter, sample, customSpaces)
	ranked := rankCandidates(base, counter, capacity*candidateFactor)
	words := selectWords(ranked, capacity)
	return pruneUnused(words, sample, customSpaces)
}

// countCandidates counts every valid UTF-8 substring of minSymbolLen to
// maxSymbolLen bytes. With custom spaces a leading space is matched for
// free, so candidates starting with one are skipped.
func countCandidates(c *counters, sample []string, customSpaces bool) {
	for _, line := range sample {
		for i := range len(line) {
			if customSpaces && line[i] == ' ' {
				continue
			}
			for n := minSymbolLen; n <= maxSymbolLen && i+n <= len(line); n++ {
				if !utf8.ValidString(line[i : i+n]) {
					continue
				}
				c.inc(newSymbol([]byte(line[i : i+n])))
			}
		}
	}
}

type qsym struct {
	symbol symbol
	gain   uint64
}

// qsymHeap is a min-heap of qsym based on gain (with tiebreak on symbol.val).
// We use a min-heap to maintain top-K elements efficiently.
type qsymHeap []qsym

// Len implements heap.Interface and returns the number of elements.
func (h qsymHeap) Len() int { return len(h) }

// Less implements heap.Interface ordering by ascending gain, breaking ties
// by larger symbol value to keep selection deterministic.
func (h qsymHeap) Less(i, j int) bool { return worse(h[i], h[j]) }

// Swap implements heap.Interface swap.
func (h qsymHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push implements heap.Interface push.
func (h *qsymHeap) Push(x any) { *h = append(*h, x.(qsym)) }

// Pop implements heap.Interface pop.
func (h *qsymHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// worse orders candidates by ascending gain, then longer first, then by
// descending packed value.
func worse(a, b qsym) bool {
	if a.gain != b.gain {
		return a.gain < b.gain
	}
	if a.symbol.n != b.symbol.n {
		return a.symbol.n < b.symbol.n
	}
	return a.symbol.val > b.symbol.val
}

// rankCandidates scores the counted candidates against the default encoding
// of base and returns the best k, best first.
func rankCandidates(base *Engine, c *counters, k int) []qsym {
	h := make(qsymHeap, 0, k+1)
	heap.Init(&h)

	buf := make([]byte, 0, 4*maxSymbolLen)
	c.each(minCandidateCount, func(s symbol, count uint32) {
		buf = base.AppendCompress(buf[:0], s.String())
		if len(buf) <= 2 {
			return
		}
		candidate := qsym{symbol: s, gain: uint64(count) * uint64(len(buf)-2)}
		if len(h) < k {
			heap.Push(&h, candidate)
		} else if worse(h[0], candidate) {
			// Replace minimum with this better candidate
			heap.Pop(&h)
			heap.Push(&h, candidate)
		}
	})

	list := make([]qsym, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		list[i] = heap.Pop(&h).(qsym)
	}
	return list
}

// selectWords walks the ranked candidates and keeps up to capacity of them,
// skipping any that overlap an already chosen word.
func selectWords(ranked []qsym, capacity int) []symbol {
	var chosen []symbol
	for _, q := range ranked {
		if len(chosen) == capacity {
			break
		}
		overlapping := false
		for _, s := range chosen {
			if s.overlaps(q.symbol) {
				overlapping = true
				break
			}
		}
		if !overlapping {
			chosen = append(chosen, q.symbol)
		}
	}
	return chosen
}

// pruneUnused tokenizes the sample with the chosen words and drops the ones
// that never produce a Custom token, for example because a repetition or
// number always wins at their positions.
func pruneUnused(chosen []symbol, sample []string, customSpaces bool) []string {
	if len(chosen) == 0 {
		return nil
	}
	words := make([]string, len(chosen))
	for i, s := range chosen {
		words[i] = s.String()
	}
	e := EmptyBuilder().SetCustom(words).SetCustomSpaces(customSpaces).Engine()
	uses := make([]int, len(words))
	for _, line := range sample {
		e.Scan(line, func(t Token, _ string) bool {
			if t.Kind == KindCustom {
				uses[t.Index]++
			}
			return true
		})
	}
	out := words[:0]
	for i, w := range words {
		if uses[i] > 0 {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// makeSample assembles a ~16KB deterministic pseudo-random sample composed of
// 512-byte slices from the inputs to keep training fast yet representative.
func makeSample(inputs []string) []string {
	var total int
	for i := range inputs {
		total += len(inputs[i])
	}

	if total < sampleTarget {
		return inputs
	}

	var (
		sample = make([]string, 0, len(inputs))
		pos    = 0
	)

	rng := mixHash(rngSeed)

	for pos < sampleMaxSz {
		rng = mixHash(rng)
		idx := int(rng % uint64(len(inputs)))

		for len(inputs[idx]) == 0 {
			idx = (idx + 1) % len(inputs)
		}

		numChunks := (len(inputs[idx]) + sampleLine - 1) / sampleLine
		rng = mixHash(rng)
		off := sampleLine * int(rng%uint64(numChunks))

		n := min(len(inputs[idx])-off, sampleLine)
		if pos+n > sampleMaxSz {
			break
		}
		sample = append(sample, inputs[idx][off:off+n])
		pos += n

		if pos >= sampleTarget {
			break
		}
	}
	return sample
}
