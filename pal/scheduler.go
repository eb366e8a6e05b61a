package pal

// resource bundles the two structures the scheduler maintains per channel
// or per die: the free-interval index used for fit-search, and the
// committed busy timeline used for diagnostics.
type resource struct {
	free *FreeSlotIndex
	busy *BusyList
}

func newResource(name string, thresholds []Tick) *resource {
	return &resource{free: NewFreeSlotIndex(name, thresholds), busy: NewBusyList(name)}
}

// findFitOrFrontier runs FreeSlotIndex.FindFit and, on a miss, falls back to
// the later of StartPoint and earliestStart, for every
// "X.findFit(...) or X.StartPoint" step of the §4.6 pseudocode.
func findFitOrFrontier(r *resource, length, earliestStart Tick) (start Tick, conflict bool) {
	start, conflict, ok := r.free.FindFit(length, earliestStart)
	if !ok {
		if sp := r.free.StartPoint(); sp > earliestStart {
			return sp, false
		}
		return earliestStart, false
	}
	return start, conflict
}

// placement is the resolved (t0, tm, t1) triple for one command, the search
// floors that produced them (needed by commitTriple to reproduce the exact
// insertAssignment calls §4.6 specifies), and which phases, if any, first
// reported a busy resource during the search.
type placement struct {
	t0, tm, t1     Tick
	t0From, t1From Tick
	conflict       ConflictKind
}

// fitTriple implements the §4.6 algorithm: it searches for a lexicographically
// minimal (t0, t1) such that DMA0 [t0, t0+l0-1] and the anticipatory-padded
// DMA1 window are free on ch, MEM [t0, t0+l0+lm-1] is free on die, and every
// start is >= floor. It does not mutate either resource — commit happens
// separately via commitTriple once the caller has decided to accept the
// placement (the §4.6 loop is designed so commit is a single trailing step,
// and the search itself never rolls back a partial commit because it never
// makes one).
func fitTriple(ch, die *resource, floor, l0, lm, l1, la Tick) placement {
	var conflict ConflictKind
	t0From := floor
	var t0, tm, t1, t1From Tick

	for { // outer: widen the die window until the channel's DMA1 placement
		// and the die's re-verified MEM window agree.
		for { // inner: converge t0 (channel) and tm (die) on the same start.
			candT0, confCh := findFitOrFrontier(ch, l0, t0From)
			tmFrom := t0From
			candTm, confDie := findFitOrFrontier(die, l0+lm, tmFrom)
			if confCh {
				conflict |= ConflictDMA0
			}
			if candTm == candT0 {
				t0, tm = candT0, candTm
				break
			}
			t0From = candTm
			if confDie {
				conflict |= ConflictMEM
			}
			reCandT0, _ := findFitOrFrontier(ch, l0, t0From)
			if reCandT0 == candT0 {
				t0, tm = reCandT0, candTm
				break
			}
		}

		t1From = t0From + l0 + lm
		candT1, confT1 := findFitOrFrontier(ch, l1+la, t1From)
		if confT1 {
			conflict |= ConflictDMA1
		}
		total := (t1From + l1 + la) - t0From
		candTmV, _ := findFitOrFrontier(die, total, t0From)
		if candTmV == tm {
			t1 = candT1
			break
		}
		t0From = candTmV
	}

	return placement{t0: t0, tm: tm, t1: t1, t0From: t0From, t1From: t1From, conflict: conflict}
}

// commitTriple reserves the three phases on ch and die, per §4.6 "Commit":
// four insertAssignment calls — DMA0 on the channel, the DMA1 window on the
// channel, the ANTI pad on the channel (split so a later command can claim
// it back), and the combined MEM span on the die — followed by registering
// each committed interval on the resource's BusyList for diagnostics.
func commitTriple(ch, die *resource, p placement, l0, lm, l1, la Tick) (dma0, mem, dma1 TimeSlot) {
	total := (p.t1From + l1 + la) - p.t0From

	ch.free.InsertAssignment(l0, p.t0From, p.t0, false)
	ch.free.InsertAssignment(l1, p.t1From, p.t1, false)
	ch.free.InsertAssignment(la, p.t1+l1, p.t1+l1, true)
	die.free.InsertAssignment(total, p.t0From, p.tm, false)

	dma0 = TimeSlot{Start: p.t0, End: p.t0 + l0 - 1}
	dma1 = TimeSlot{Start: p.t1, End: p.t1 + l1 - 1}
	mem = TimeSlot{Start: p.tm, End: p.tm + total - 1}

	ch.busy.Insert(dma0)
	ch.busy.Insert(dma1)
	die.busy.Insert(mem)

	return dma0, mem, dma1
}
