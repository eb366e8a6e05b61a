// Package latency supplies the per-NAND-technology phase durations the
// scheduler core treats as an opaque collaborator (pal.Latency), plus the
// duration-class bucket thresholds a FreeSlotIndex is built with.
package latency

import "nandpal/pal"

// Technology is the NAND cell type, which determines both the phase
// durations and the free-slot bucket thresholds.
type Technology uint8

const (
	SLC Technology = iota
	MLC
	TLC
)

func (t Technology) String() string {
	switch t {
	case SLC:
		return "SLC"
	case MLC:
		return "MLC"
	case TLC:
		return "TLC"
	default:
		return "unknown"
	}
}

// durations holds the nine raw phase numbers (read/write/erase x DMA0/MEM/DMA1).
// La has no field of its own: Durations returns readDMA0 as La for every
// operation.
type durations struct {
	readDMA0, readMEM, readDMA1     pal.Tick
	writeDMA0, writeMEM, writeDMA1  pal.Tick
	eraseDMA0, eraseMEM, eraseDMA1  pal.Tick
}

// Table is a concrete pal.Latency implementation for one Technology. The
// literal phase numbers below are grounded on the constructor switch in
// original_source/PAL2.cc, which hardcodes DMA0/MEM/DMA1 per technology
// (scaled there by SPDIV/PGDIV divisors baked into a Latency config object);
// here they are plain tick counts, since Tick's scale is opaque to the core.
type Table struct {
	tech Technology
	d    durations
}

// NewTable returns the Table for tech. SLC reproduces the exact scenario
// values in the specification's testable-properties table
// (DMA0=1000, MEM=100000, DMA1=1000, ANTI=1000); MLC and TLC scale MEM up
// per bit-per-cell, matching the relative ordering (SLC fastest, TLC
// slowest) PAL2's three NAND_SLC/NAND_MLC/NAND_TLC branches establish.
func NewTable(tech Technology) *Table {
	switch tech {
	case SLC:
		return &Table{tech: tech, d: durations{
			readDMA0: 1000, readMEM: 100000, readDMA1: 1000,
			writeDMA0: 1000, writeMEM: 300000, writeDMA1: 1000,
			eraseDMA0: 1000, eraseMEM: 3500000, eraseDMA1: 1000,
		}}
	case MLC:
		return &Table{tech: tech, d: durations{
			readDMA0: 1000, readMEM: 150000, readDMA1: 1000,
			writeDMA0: 1000, writeMEM: 900000, writeDMA1: 1000,
			eraseDMA0: 1000, eraseMEM: 5000000, eraseDMA1: 1000,
		}}
	case TLC:
		return &Table{tech: tech, d: durations{
			readDMA0: 1000, readMEM: 220000, readDMA1: 1000,
			writeDMA0: 1000, writeMEM: 2000000, writeDMA1: 1000,
			eraseDMA0: 1000, eraseMEM: 5500000, eraseDMA1: 1000,
		}}
	default:
		return &Table{tech: tech, d: durations{
			readDMA0: 1000, readMEM: 100000, readDMA1: 1000,
			writeDMA0: 1000, writeMEM: 100000, writeDMA1: 1000,
			eraseDMA0: 1000, eraseMEM: 100000, eraseDMA1: 1000,
		}}
	}
}

// Technology reports which table this is.
func (t *Table) Technology() Technology { return t.tech }

// Durations implements pal.Latency. La is always the READ DMA0 latency,
// per §6: "the anticipatory pad uses getLatency(pageIndex, READ, DMA0)".
func (t *Table) Durations(op pal.Operation, _ uint64) (l0, lm, l1, la pal.Tick) {
	la = t.d.readDMA0
	switch op {
	case pal.OpRead:
		return t.d.readDMA0, t.d.readMEM, t.d.readDMA1, la
	case pal.OpWrite:
		return t.d.writeDMA0, t.d.writeMEM, t.d.writeDMA1, la
	case pal.OpErase:
		return t.d.eraseDMA0, t.d.eraseMEM, t.d.eraseDMA1, la
	default:
		return t.d.readDMA0, t.d.readMEM, t.d.readDMA1, la
	}
}

// ChannelThresholds returns the FreeSlotIndex bucket thresholds for the
// channel resource: one bucket per phase-length class a command can produce
// on the bus (a lone DMA0, two back-to-back DMA0s, a DMA1+ANTI window, that
// window preceded by a DMA0, and a generous ceiling for reassembled spans
// from a widened scheduler search). Classes of equal length share one
// threshold: with the built-in tables two DMA0s and a DMA1+ANTI window are
// both 2000 ticks.
func (t *Table) ChannelThresholds() []pal.Tick {
	_, _, l1r, lar := t.Durations(pal.OpRead, 0)
	l0w, _, l1w, _ := t.Durations(pal.OpWrite, 0)
	_, _, l1e, _ := t.Durations(pal.OpErase, 0)

	l0 := l0w
	dma1Anti := maxTick(l1r+lar, l1w+lar, l1e+lar)
	var out []pal.Tick
	seen := make(map[pal.Tick]bool)
	for _, th := range []pal.Tick{
		l0,
		2 * l0,
		dma1Anti,
		dma1Anti + l0,
		4 * dma1Anti,
	} {
		if !seen[th] {
			seen[th] = true
			out = append(out, th)
		}
	}
	return out
}

// DieThresholds returns the per-technology bucket thresholds for the die
// resource, scaled from the MEM duration. The TLC table keeps a threshold
// that is numerically smaller than its predecessor — see
// original_source/PAL2.cc's DieFreeSlots(NAND_TLC) literals (...,
// 5001000000 + pad, 2274000000 + pad) — reproduced here in the same order;
// FreeSlotIndex sorts its bucket keys internally so this does not affect
// correctness (see DESIGN.md).
func (t *Table) DieThresholds() []pal.Tick {
	_, readMEM, _, _ := t.Durations(pal.OpRead, 0)
	_, writeMEM, _, _ := t.Durations(pal.OpWrite, 0)
	_, eraseMEM, _, _ := t.Durations(pal.OpErase, 0)
	m := maxTick(readMEM, writeMEM, eraseMEM)

	switch t.tech {
	case TLC:
		return []pal.Tick{m, 2 * m, 3 * m, 8 * m, 28 * m, 64 * m, 29 * m}
	case MLC:
		return []pal.Tick{m, 2 * m, 10 * m, 24 * m, 64 * m}
	default: // SLC
		return []pal.Tick{m, 10 * m, 60 * m}
	}
}

func maxTick(ts ...pal.Tick) pal.Tick {
	best := ts[0]
	for _, t := range ts[1:] {
		if t > best {
			best = t
		}
	}
	return best
}
