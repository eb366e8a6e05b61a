package pal

import "sort"

// opEntry records one committed command's span, per operation kind: the
// start tick of its DMA0 to the end tick of its DMA1 (what Facade records).
type opEntry struct {
	start Tick
	end   Tick
}

// OpTimestamps is the per-operation-kind parallel interval set from §4.5:
// a mapping from DMA0-start tick to DMA1-end tick, whose union yields
// per-operation busy time without needing to store the full disjoint set
// once it has been collapsed.
type OpTimestamps struct {
	pending   []opEntry // sorted ascending by start, not yet collapsed
	collapsed Tick      // running busy-per-operation counter
}

// NewOpTimestamps returns an empty per-operation timestamp set.
func NewOpTimestamps() *OpTimestamps { return &OpTimestamps{} }

// Record adds one committed interval, keeping pending sorted by start.
func (o *OpTimestamps) Record(start, end Tick) {
	idx := sort.Search(len(o.pending), func(i int) bool { return o.pending[i].start >= start })
	if idx < len(o.pending) && o.pending[idx].start == start {
		o.pending[idx].end = end
		return
	}
	o.pending = append(o.pending, opEntry{})
	copy(o.pending[idx+1:], o.pending[idx:])
	o.pending[idx] = opEntry{start: start, end: end}
}

// unionLength walks entries (ascending by start) maintaining a running
// (curStart, curEnd) window per §4.5: an entry whose key and value both
// fall within the window is dropped, one whose key falls within the window
// but whose value extends past it widens the window, and otherwise the
// window is committed and a new one starts. This yields the exact union
// length without ever materializing the disjoint interval set.
func unionLength(entries []opEntry) Tick {
	if len(entries) == 0 {
		return 0
	}
	var total Tick
	curStart, curEnd := entries[0].start, entries[0].end
	for _, e := range entries[1:] {
		switch {
		case e.start <= curEnd && e.end <= curEnd:
			// fully contained: drop
		case e.start <= curEnd:
			curEnd = e.end
		default:
			total += curEnd - curStart + 1
			curStart, curEnd = e.start, e.end
		}
	}
	total += curEnd - curStart + 1
	return total
}

// BusyTime returns the union length of every interval recorded so far
// (collapsed plus still-pending), without discarding anything — the
// non-destructive counterpart used by Facade.OpBusyTime.
func (o *OpTimestamps) BusyTime() Tick {
	return o.collapsed + unionLength(o.pending)
}

// Collapse folds every pending interval into the running counter via the
// §4.5 union-scan and discards the pending set, bounding memory use. It is
// the destructive counterpart used by Facade.FlushBefore.
func (o *OpTimestamps) Collapse() {
	o.collapsed += unionLength(o.pending)
	o.pending = o.pending[:0]
}
