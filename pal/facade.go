package pal

import (
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// Latency supplies the three phase durations for one command, plus the
// anticipatory pad appended after DMA1. Implementations live in the latency
// package; Facade only depends on this narrow interface so pal never imports
// a concrete NAND technology table.
type Latency interface {
	// Durations returns (L0, Lm, L1, La) for op against ppn. A zero L0, Lm,
	// or L1 is reported to sink as LatencyZero and then substituted with a
	// minimum of one tick before scheduling, per §7.
	Durations(op Operation, ppn uint64) (l0, lm, l1, la Tick)
}

// AddressRouter decodes a PPN to the (channel, die) pair it targets. addr.Layout
// implements this.
type AddressRouter interface {
	Route(ppn uint64) (channel, die int, err error)
	// EraseUnit returns every PPN that must be individually scheduled to
	// erase the block containing ppn (one page each), per §4.7's
	// erase-amplification handling.
	EraseUnit(ppn uint64) ([]uint64, error)
}

// StatisticsSink receives the side-channel observations Facade.Submit and
// Facade.FlushBefore produce: the latest committed tick, a per-operation
// latency sample, and diagnostic reports that don't block scheduling. A nil
// sink is valid; every call is guarded.
type StatisticsSink interface {
	UpdateLastTick(tick Tick)
	AddLatency(op Operation, ticks Tick)
	NoteVerificationFailure(r VerificationReport)
	NoteLatencyZero(op Operation, phase Phase)
	MergeSnapshot()
}

// Facade is the single entry point a caller submits commands through. It
// owns one FreeSlotIndex/BusyList pair per channel and per die, the global
// MergedTimeline, and one OpTimestamps per Operation kind.
type Facade struct {
	router  AddressRouter
	latency Latency
	sink    StatisticsSink

	channels []*resource
	dies     []*resource

	merged *MergedTimeline
	ops    [3]*OpTimestamps // indexed by Operation

	lastTick      Tick
	trackConflict bool
}

// NewFacade builds a Facade over numChannels channels and numDies dies, the
// channel resources bucketed by channelThresholds and the die resources by
// dieThresholds (the two resources see different interval-length classes,
// per the latency package's ChannelThresholds/DieThresholds split). sink may
// be nil. trackConflict controls whether Command.Conflict is populated;
// fitTriple computes the conflict bits either way.
func NewFacade(router AddressRouter, latency Latency, sink StatisticsSink, numChannels, numDies int, channelThresholds, dieThresholds []Tick, trackConflict bool) *Facade {
	f := &Facade{
		router:        router,
		latency:       latency,
		sink:          sink,
		channels:      make([]*resource, numChannels),
		dies:          make([]*resource, numDies),
		merged:        NewMergedTimeline(),
		trackConflict: trackConflict,
	}
	for i := range f.channels {
		f.channels[i] = newResource("channel", channelThresholds)
	}
	for i := range f.dies {
		f.dies[i] = newResource("die", dieThresholds)
	}
	for op := range f.ops {
		f.ops[op] = NewOpTimestamps()
	}
	return f
}

// clampTick substitutes a minimum of one tick for a zero phase duration, per
// §7's LatencyZero disposition: the zero is logged and reported to the sink
// above, but a literal zero-length TimeSlot would underflow End = Start - 1
// (Tick is unsigned) and corrupt every index keyed off it.
func clampTick(l Tick) Tick {
	if l == 0 {
		return 1
	}
	return l
}

func (f *Facade) noteSink(fn func(StatisticsSink)) {
	if f.sink != nil {
		fn(f.sink)
	}
}

// submitOne schedules a single physical-page command (one page, one
// channel, one die) and commits it, returning the populated Command.
func (f *Facade) submitOne(cmd Command) (Command, error) {
	channel, die, err := f.router.Route(cmd.PPN)
	if err != nil {
		return cmd, errors.Wrapf(err, "pal: routing PPN %d", cmd.PPN)
	}
	if channel < 0 || channel >= len(f.channels) || die < 0 || die >= len(f.dies) {
		return cmd, newError(InvalidPPN, "PPN %d routed to channel=%d die=%d out of range", cmd.PPN, channel, die)
	}

	l0, lm, l1, la := f.latency.Durations(cmd.Operation, cmd.PPN)
	for phase, l := range map[Phase]Tick{PhaseDMA0: l0, PhaseMEM: lm, PhaseDMA1: l1} {
		if l == 0 {
			log.Debug.Printf("pal: %s latency zero for op=%s ppn=%d, substituting 1 tick", phase, cmd.Operation, cmd.PPN)
			f.noteSink(func(s StatisticsSink) { s.NoteLatencyZero(cmd.Operation, phase) })
		}
	}
	l0, lm, l1 = clampTick(l0), clampTick(lm), clampTick(l1)

	ch, die2 := f.channels[channel], f.dies[die]
	floor := cmd.ArrivalTick
	if f.lastTick > floor {
		floor = f.lastTick
	}

	p := fitTriple(ch, die2, floor, l0, lm, l1, la)
	dma0, mem, dma1 := commitTriple(ch, die2, p, l0, lm, l1, la)

	f.merged.Insert(mem)
	f.ops[cmd.Operation].Record(dma0.Start, dma1.End)

	cmd.StartTick = dma0.Start
	cmd.FinishTick = dma1.End
	if f.trackConflict {
		cmd.Conflict = p.conflict
	}
	if cmd.FinishTick > f.lastTick {
		f.lastTick = cmd.FinishTick
	}

	f.noteSink(func(s StatisticsSink) {
		s.UpdateLastTick(f.lastTick)
		s.AddLatency(cmd.Operation, cmd.FinishTick-cmd.ArrivalTick+1)
	})

	if r := ch.busy.Verify(); r != nil {
		log.Error.Printf("%v", r)
		f.noteSink(func(s StatisticsSink) { s.NoteVerificationFailure(*r) })
	}
	if r := die2.busy.Verify(); r != nil {
		log.Error.Printf("%v", r)
		f.noteSink(func(s StatisticsSink) { s.NoteVerificationFailure(*r) })
	}

	return cmd, nil
}

// Submit schedules cmd. For OpErase, the PPN's block is expanded into its
// constituent pages (via AddressRouter.EraseUnit) and each page is scheduled
// in turn, fully, before the next is attempted — per §4.7, erase
// amplification is modeled as a strictly sequential burst rather than a
// single wide phase. The returned Command reflects the last page scheduled;
// its StartTick is the first page's start.
func (f *Facade) Submit(cmd Command) (Command, error) {
	if cmd.Operation != OpErase {
		done, err := f.submitOne(cmd)
		if err == nil && cmd.MergeSnapshot {
			f.noteSink(func(s StatisticsSink) { s.MergeSnapshot() })
		}
		return done, err
	}

	pages, err := f.router.EraseUnit(cmd.PPN)
	if err != nil {
		return cmd, errors.Wrapf(err, "pal: erase unit for PPN %d", cmd.PPN)
	}
	if len(pages) == 0 {
		return cmd, newError(InvalidPPN, "erase unit for PPN %d is empty", cmd.PPN)
	}

	var first, last Command
	for i, ppn := range pages {
		sub := cmd
		sub.PPN = ppn
		if i > 0 {
			sub.ArrivalTick = last.FinishTick + 1
		}
		sub.MergeSnapshot = cmd.MergeSnapshot && i == len(pages)-1

		done, err := f.submitOne(sub)
		if err != nil {
			return cmd, errors.Wrapf(err, "pal: erase sub-command %d/%d (PPN %d)", i+1, len(pages), ppn)
		}
		if i == 0 {
			first = done
		}
		last = done
	}

	last.StartTick = first.StartTick
	last.PPN = cmd.PPN
	if cmd.MergeSnapshot {
		f.noteSink(func(s StatisticsSink) { s.MergeSnapshot() })
	}
	return last, nil
}

// FlushBefore drops the bookkeeping for ticks strictly before currentTick
// from every channel and die's FreeSlotIndex and BusyList and from the
// global MergedTimeline, bounding the Facade's memory use across a
// long-running simulation. The dropped MergedTimeline slots are discarded,
// not counted anywhere, so InquireBusyTime afterwards covers only the slots
// that remain. Every per-operation OpTimestamps is collapsed whole (Collapse
// ignores currentTick) into its running counter, so OpBusyTime keeps
// counting what was flushed.
func (f *Facade) FlushBefore(currentTick Tick) {
	for _, ch := range f.channels {
		ch.free.FlushBefore(currentTick)
		ch.busy.FlushBefore(currentTick)
	}
	for _, die := range f.dies {
		die.free.FlushBefore(currentTick)
		die.busy.FlushBefore(currentTick)
	}
	f.merged.FlushBefore(currentTick)
	for _, ot := range f.ops {
		ot.Collapse()
	}
}

// InquireBusyTime returns the union busy time of the MEM slots the
// MergedTimeline still holds across every die (via MergedTimeline.BusyTime),
// without dropping anything. Slots already removed by FlushBefore are not
// included. The tick argument is ignored.
func (f *Facade) InquireBusyTime(Tick) Tick {
	return f.merged.BusyTime()
}

// OpBusyTime returns the union busy time recorded for one operation kind.
func (f *Facade) OpBusyTime(op Operation) Tick {
	return f.ops[op].BusyTime()
}
