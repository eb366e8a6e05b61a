package pal

import (
	"sort"

	"github.com/biogo/store/llrb"
)

// freeEntry is a free interval [start, end], ordered (and looked up) by
// start tick only, the way bampair.ShardInfo's llrb key orders by
// (refID, start) and carries the payload alongside the ordering fields.
type freeEntry struct {
	start Tick
	end   Tick
}

func (e freeEntry) Compare(c llrb.Comparable) int {
	o := c.(freeEntry)
	switch {
	case e.start < o.start:
		return -1
	case e.start > o.start:
		return 1
	default:
		return 0
	}
}

func (e freeEntry) length() Tick { return e.end - e.start + 1 }

// FreeSlotIndex answers "where can a request of length L start at or after
// tick T?" for a single resource (a channel or a die). Free intervals are
// bucketed by duration class: the outer key is a fixed threshold (derived
// from the Latency collaborator at construction, see the latency package),
// the inner ordered map holds intervals whose length is <= that threshold
// and > the preceding threshold, ordered by start tick within a bucket via
// biogo/store/llrb.Tree (the same ordered-tree idiom
// encoding/bampair.ShardInfo uses for its start-ordered index).
//
// Thresholds are fixed for the index's lifetime: PAL2 never changes the
// technology of a running device, so the bucket set never needs to grow.
type FreeSlotIndex struct {
	resource   string
	thresholds []Tick // ascending, deduplicated
	buckets    map[Tick]*llrb.Tree
	startPoint Tick
}

// NewFreeSlotIndex builds an index over the given resource, bucketed by the
// given duration thresholds (deduplicated and sorted ascending internally,
// so the caller need not pre-sort them — see Open Question (b) in
// DESIGN.md regarding the TLC table's out-of-order source thresholds).
func NewFreeSlotIndex(resource string, thresholds []Tick) *FreeSlotIndex {
	seen := make(map[Tick]bool, len(thresholds))
	ts := make([]Tick, 0, len(thresholds))
	for _, t := range thresholds {
		if !seen[t] {
			seen[t] = true
			ts = append(ts, t)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	buckets := make(map[Tick]*llrb.Tree, len(ts))
	for _, t := range ts {
		buckets[t] = &llrb.Tree{}
	}
	return &FreeSlotIndex{resource: resource, thresholds: ts, buckets: buckets, startPoint: 0}
}

// StartPoint returns the earliest tick not yet represented by any free
// interval and not yet consumed by any busy assignment: the frontier beyond
// which the resource is unconditionally free.
func (f *FreeSlotIndex) StartPoint() Tick { return f.startPoint }

// candidateBucketKeys returns every bucket threshold >= minLength, ascending.
// A free interval living in any of these buckets might be long enough; one
// living in a smaller bucket provably is not, since a bucket's threshold
// bounds the length of everything inside it.
func (f *FreeSlotIndex) candidateBucketKeys(minLength Tick) []Tick {
	idx := sort.Search(len(f.thresholds), func(i int) bool { return f.thresholds[i] >= minLength })
	return f.thresholds[idx:]
}

// bucketFor returns the bucket a free interval of the given actual length
// is stored under: the smallest threshold >= length, or ok=false if length
// exceeds every threshold (the interval is then simply not retained —
// PAL2's own AddFreeSlot has the same limitation, relying on the bucket set
// spanning every length the scheduler can produce).
func (f *FreeSlotIndex) bucketFor(length Tick) (Tick, bool) {
	keys := f.candidateBucketKeys(length)
	if len(keys) == 0 {
		return 0, false
	}
	return keys[0], true
}

func (f *FreeSlotIndex) addFreeSlot(length, start Tick) {
	if length == 0 {
		return
	}
	key, ok := f.bucketFor(length)
	if !ok {
		return
	}
	f.buckets[key].Insert(freeEntry{start: start, end: start + length - 1})
}

// FindFit returns the earliest start >= earliestStart of a free interval of
// length >= minLength. conflict is false when a slot at or before
// earliestStart already covers [earliestStart, earliestStart+minLength-1];
// true when only a later slot qualifies. ok is false on a miss: the caller
// then falls back to StartPoint.
func (f *FreeSlotIndex) FindFit(minLength, earliestStart Tick) (start Tick, conflict bool, ok bool) {
	keys := f.candidateBucketKeys(minLength)

	// Phase 1: a slot at or before earliestStart that already covers the
	// requested span wins immediately — it cannot be beaten by anything
	// later, so we don't need to consider other buckets.
	for _, key := range keys {
		tree := f.buckets[key]
		c := tree.Floor(freeEntry{start: earliestStart})
		if c == nil {
			continue
		}
		e := c.(freeEntry)
		if e.start <= earliestStart && e.end >= earliestStart+minLength-1 {
			return earliestStart, false, true
		}
	}

	// Phase 2: no covering floor slot anywhere; find the earliest
	// sufficiently-long slot at or after earliestStart, across all buckets.
	found := false
	var best Tick
	for _, key := range keys {
		tree := f.buckets[key]
		probe := earliestStart
		for {
			c := tree.Ceil(freeEntry{start: probe})
			if c == nil {
				break
			}
			e := c.(freeEntry)
			if e.length() >= minLength {
				if !found || e.start < best {
					best, found = e.start, true
				}
				break
			}
			probe = e.start + 1
		}
	}
	if found {
		return best, true, true
	}
	return 0, false, false
}

// InsertAssignment commits a placement of the given length starting at
// actualStart, searched for with a floor of fromTick (fromTick == actualStart
// in the common case; they differ when the caller widened its search window
// — see the Three-Phase Scheduler). It removes the free interval that
// contained actualStart (or rolls StartPoint forward if the assignment
// consumes the frontier), and re-registers the leading and trailing
// remainders as new free intervals. If split is set, the consumed segment
// itself is also registered as a free interval under its own (necessarily
// smaller) duration class — used for the DMA1 anticipatory-pad reservation,
// so a later command can claim that short window.
//
// actualStart >= StartPoint is treated as consuming the frontier: findFitOrFrontier
// can return a floor-clamped actualStart that has moved past StartPoint
// without ever being registered as a free interval (the DMA1 window landing
// well past the channel's last DMA0 commit while the die is still mid-MEM is
// the common case), so the gap [StartPoint, actualStart) is registered here
// before proceeding, same as any other leading remainder.
func (f *FreeSlotIndex) InsertAssignment(length, fromTick, actualStart Tick, split bool) {
	if actualStart >= f.startPoint {
		if actualStart > f.startPoint {
			f.addFreeSlot(actualStart-f.startPoint, f.startPoint)
		}
		if fromTick == actualStart {
			if split {
				f.addFreeSlot(length, actualStart)
			}
			f.startPoint = actualStart + length
			return
		}
		if split {
			f.addFreeSlot(length, fromTick)
		}
		newStartPoint := fromTick + length
		f.addFreeSlot(fromTick-actualStart, actualStart)
		f.startPoint = newStartPoint
		return
	}

	// actualStart need not be a registered entry's own start tick — FindFit's
	// covering case (§4.2) returns the caller's earliestStart, which commonly
	// falls strictly inside a longer free interval — so this is a containment
	// lookup (Floor then range-check), not an exact-key lookup.
	for _, key := range f.candidateBucketKeys(length) {
		tree := f.buckets[key]
		c := tree.Floor(freeEntry{start: actualStart})
		if c == nil {
			continue
		}
		e := c.(freeEntry)
		if e.start > actualStart || e.end < actualStart {
			continue
		}
		tree.Delete(e)

		if e.start < fromTick {
			f.addFreeSlot(fromTick-e.start, e.start)
			if split {
				f.addFreeSlot(length, fromTick)
			}
			if e.end > fromTick+length-1 {
				f.addFreeSlot(e.end-(fromTick+length-1), fromTick+length)
			}
		} else {
			if split {
				f.addFreeSlot(length, e.start)
			}
			if e.end > fromTick+length-1 {
				f.addFreeSlot(e.end-(fromTick+length-1), e.start+length)
			}
		}
		return
	}
}

// FlushBefore drops every free interval whose end tick precedes currentTick,
// from every bucket, bounding the index's memory use.
func (f *FreeSlotIndex) FlushBefore(currentTick Tick) {
	for _, tree := range f.buckets {
		var stale []freeEntry
		tree.Do(func(c llrb.Comparable) bool {
			e := c.(freeEntry)
			if e.end < currentTick {
				stale = append(stale, e)
			}
			return false
		})
		for _, e := range stale {
			tree.Delete(e)
		}
	}
}
