package pal

// busyNode is one node of a resource's busy timeline, held in an arena
// (BusyList.nodes) and addressed by integer handle rather than a raw
// pointer — the "arena of slots indexed by integer handles" option Design
// Notes §9 offers in place of the source's pointer-linked list with manual
// delete.
type busyNode struct {
	slot TimeSlot
	next int // index into BusyList.nodes, or -1
}

// BusyList is a resource's ascending, pairwise-disjoint sequence of
// committed busy intervals. head is the index of the earliest slot, or -1
// when empty.
type BusyList struct {
	resource string
	nodes    []busyNode
	head     int
	free     []int // recycled node indices, from FlushBefore
}

// NewBusyList creates an empty busy timeline for the named resource (used
// only in diagnostics — see VerificationReport).
func NewBusyList(resource string) *BusyList {
	return &BusyList{resource: resource, head: -1}
}

func (b *BusyList) alloc(slot TimeSlot, next int) int {
	if n := len(b.free); n > 0 {
		idx := b.free[n-1]
		b.free = b.free[:n-1]
		b.nodes[idx] = busyNode{slot: slot, next: next}
		return idx
	}
	b.nodes = append(b.nodes, busyNode{slot: slot, next: next})
	return len(b.nodes) - 1
}

// Insert commits slot to the timeline. Insertion walks from head to the last
// slot that starts before slot and links it in after that one (or in front
// of head when slot starts earliest), so the list stays in ascending start
// order whatever order commits arrive in.
func (b *BusyList) Insert(slot TimeSlot) {
	if b.head == -1 {
		b.head = b.alloc(slot, -1)
		return
	}
	prev := b.head
	for b.nodes[prev].next != -1 && b.nodes[b.nodes[prev].next].slot.Start < slot.Start {
		prev = b.nodes[prev].next
	}
	idx := b.alloc(slot, b.nodes[prev].next)
	if slot.Start < b.nodes[b.head].slot.Start {
		b.nodes[idx].next = b.head
		b.head = idx
		return
	}
	b.nodes[prev].next = idx
}

// FlushBefore drops every slot entirely before currentTick (slot.End <
// currentTick), returning the sum of their lengths so the caller can fold
// it into a running exact-busy-time counter.
func (b *BusyList) FlushBefore(currentTick Tick) Tick {
	var dropped Tick
	for b.head != -1 && b.nodes[b.head].slot.End < currentTick {
		dropped += b.nodes[b.head].slot.Len()
		old := b.head
		b.head = b.nodes[b.head].next
		b.free = append(b.free, old)
	}
	return dropped
}

// Verify walks the list and checks that it is strictly ascending and
// pairwise disjoint and that no slot ends before it starts (a one-tick slot,
// Start == End, is valid), returning a VerificationReport naming the
// offending pair on the first violation found (nil if the list is
// well-formed). It is a diagnostic, never a panic, per the
// VerificationFailure disposition.
func (b *BusyList) Verify() *VerificationReport {
	if b.head == -1 {
		return nil
	}
	prev := b.head
	if s := b.nodes[prev].slot; s.Start > s.End {
		return &VerificationReport{Resource: b.resource, Prev: s, Next: s}
	}
	for b.nodes[prev].next != -1 {
		next := b.nodes[prev].next
		ps, ns := b.nodes[prev].slot, b.nodes[next].slot
		if !(ps.End < ns.Start) || !(ns.Start <= ns.End) {
			return &VerificationReport{Resource: b.resource, Prev: ps, Next: ns}
		}
		prev = next
	}
	return nil
}

// Slots returns the committed intervals in ascending order. Intended for
// tests and diagnostics; the scheduler itself never needs a full scan.
func (b *BusyList) Slots() []TimeSlot {
	var out []TimeSlot
	for i := b.head; i != -1; i = b.nodes[i].next {
		out = append(out, b.nodes[i].slot)
	}
	return out
}
