// Package stats implements pal.StatisticsSink: a running aggregate of
// per-operation latency, the last committed tick, and diagnostic counters,
// with snapshot persistence and verification-failure dedupe.
package stats

import (
	"sync"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"

	"nandpal/pal"
)

// latencyHistogram is a minimal running accumulator: count and sum, plus
// min/max, per operation kind. A full histogram (buckets, percentiles) is
// out of scope for the scheduler core (see §1's explicit Non-goals) but the
// ambient collector still needs enough to report a meaningful snapshot.
type latencyHistogram struct {
	count          uint64
	sum, min, max  pal.Tick
}

func (h *latencyHistogram) add(ticks pal.Tick) {
	if h.count == 0 || ticks < h.min {
		h.min = ticks
	}
	if ticks > h.max {
		h.max = ticks
	}
	h.sum += ticks
	h.count++
}

// Snapshot is a point-in-time, gob-encodable copy of a Collector's state,
// used both for persistence and for palctl's final report. MergeSnapshot
// does not produce one; it only increments SnapshotCount.
type Snapshot struct {
	LastTick             pal.Tick
	LatencyCount         [3]uint64
	LatencySum           [3]pal.Tick
	LatencyMin, LatencyMax [3]pal.Tick
	VerificationFailures uint64
	LatencyZeroCount     uint64
	SnapshotCount        uint64
}

// Collector implements pal.StatisticsSink. It is safe for concurrent use by
// multiple Facade instances sharing one sink, guarded by a single mutex —
// the core itself is single-threaded (§5), but a host may run several
// Facade instances against one shared Collector.
type Collector struct {
	mu sync.Mutex

	lastTick pal.Tick
	hist     [3]latencyHistogram

	verificationFailures uint64
	latencyZeroCount     uint64
	snapshotCount        uint64

	// seenFailures dedupes VerificationReport occurrences by a 64-bit
	// fingerprint of (resource, prev, next), the way
	// grailbio/bio/markduplicates keys its duplicate index off a
	// FarmHash fingerprint of the read's defining fields rather than the
	// full struct, to bound the memory a pathological flood of identical
	// reports would otherwise consume.
	seenFailures map[uint64]struct{}
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{seenFailures: make(map[uint64]struct{})}
}

// UpdateLastTick implements pal.StatisticsSink.
func (c *Collector) UpdateLastTick(tick pal.Tick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tick > c.lastTick {
		c.lastTick = tick
	}
}

// AddLatency implements pal.StatisticsSink.
func (c *Collector) AddLatency(op pal.Operation, ticks pal.Tick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist[op].add(ticks)
}

func fingerprintReport(r pal.VerificationReport) uint64 {
	buf := make([]byte, 0, len(r.Resource)+32)
	buf = append(buf, r.Resource...)
	buf = appendTick(buf, r.Prev.Start)
	buf = appendTick(buf, r.Prev.End)
	buf = appendTick(buf, r.Next.Start)
	buf = appendTick(buf, r.Next.End)
	return farm.Fingerprint64(buf)
}

func appendTick(buf []byte, t pal.Tick) []byte {
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(t>>(8*uint(i))))
	}
	return buf
}

// NoteVerificationFailure implements pal.StatisticsSink. Each distinct
// (resource, prev, next) triple is logged once; repeats are counted but not
// re-logged, matching markduplicates' fingerprint-keyed dedupe idiom.
func (c *Collector) NoteVerificationFailure(r pal.VerificationReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verificationFailures++
	fp := fingerprintReport(r)
	if _, seen := c.seenFailures[fp]; seen {
		return
	}
	c.seenFailures[fp] = struct{}{}
	log.Error.Printf("stats: %v", r)
}

// NoteLatencyZero implements pal.StatisticsSink.
func (c *Collector) NoteLatencyZero(op pal.Operation, phase pal.Phase) {
	c.mu.Lock()
	c.latencyZeroCount++
	c.mu.Unlock()
	log.Debug.Printf("stats: zero latency for op=%s phase=%s, substituting 1 tick", op, phase)
}

// MergeSnapshot implements pal.StatisticsSink: it simply counts the
// snapshot point (tests assert an exact invocation count per §8 scenario 6);
// Snapshot() below returns the data a caller would actually persist.
func (c *Collector) MergeSnapshot() {
	c.mu.Lock()
	c.snapshotCount++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current aggregate state.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s Snapshot
	s.LastTick = c.lastTick
	s.VerificationFailures = c.verificationFailures
	s.LatencyZeroCount = c.latencyZeroCount
	s.SnapshotCount = c.snapshotCount
	for i := 0; i < 3; i++ {
		s.LatencyCount[i] = c.hist[i].count
		s.LatencySum[i] = c.hist[i].sum
		s.LatencyMin[i] = c.hist[i].min
		s.LatencyMax[i] = c.hist[i].max
	}
	return s
}
