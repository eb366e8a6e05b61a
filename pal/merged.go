package pal

import "sort"

// MergedTimeline is the global union of every MEM interval ever committed
// on any die: a single ascending, pairwise-disjoint list of TimeSlots.
//
// Insertion follows the same shape as
// grailbio/bio/interval.BEDUnion.addInterval's BED-record union logic,
// generalized from BED's string-keyed per-chromosome slices to a single
// slice of Tick-valued slots: find the span of existing slots the new
// interval touches, and replace that whole span with one slot covering
// everything. The four cases in the design (both endpoints inside one
// slot / append-and-extend / prepend-and-extend / general overlap
// absorbing several slots) all fall out of the same splice.
type MergedTimeline struct {
	slots []TimeSlot
}

// NewMergedTimeline returns an empty timeline.
func NewMergedTimeline() *MergedTimeline { return &MergedTimeline{} }

// Insert adds [s.Start, s.End] to the union, merging with any overlapping
// slot and removing slots it subsumes.
func (m *MergedTimeline) Insert(s TimeSlot) {
	lo := sort.Search(len(m.slots), func(i int) bool { return m.slots[i].End >= s.Start })
	hi := sort.Search(len(m.slots), func(i int) bool { return m.slots[i].Start > s.End }) - 1

	if lo > hi {
		// No existing slot overlaps s: splice it in at lo, preserving order.
		m.slots = append(m.slots, TimeSlot{})
		copy(m.slots[lo+1:], m.slots[lo:])
		m.slots[lo] = s
		return
	}

	merged := s
	if m.slots[lo].Start < merged.Start {
		merged.Start = m.slots[lo].Start
	}
	if m.slots[hi].End > merged.End {
		merged.End = m.slots[hi].End
	}
	m.slots[lo] = merged
	m.slots = append(m.slots[:lo+1], m.slots[hi+1:]...)
}

// BusyTime returns the total length of the union — the sum of
// finishTick-startTick+1 over every disjoint slot, giving the §8 Invariant
// 5 union identity for free (the slots are disjoint by construction, so no
// separate overlap bookkeeping is required).
func (m *MergedTimeline) BusyTime() Tick {
	var total Tick
	for _, s := range m.slots {
		total += s.Len()
	}
	return total
}

// FlushBefore drops every slot entirely before currentTick, returning the
// sum of their lengths.
func (m *MergedTimeline) FlushBefore(currentTick Tick) Tick {
	idx := sort.Search(len(m.slots), func(i int) bool { return m.slots[i].End >= currentTick })
	var dropped Tick
	for _, s := range m.slots[:idx] {
		dropped += s.Len()
	}
	m.slots = m.slots[idx:]
	return dropped
}

// Slots returns the current union, ascending. Intended for tests and
// diagnostics.
func (m *MergedTimeline) Slots() []TimeSlot {
	out := make([]TimeSlot, len(m.slots))
	copy(out, m.slots)
	return out
}
