// Package addr implements the physical-page-number codec: a bidirectional
// mapping between a linear PPN and the six-tuple of axis indices
// (Channel, Way, Die, Plane, Block, Page) under a configurable
// most-significant-to-least-significant ordering of the axes.
package addr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Axis identifies one of the six coordinates a PPN decomposes into.
type Axis int

const (
	AxisChannel Axis = iota
	AxisWay
	AxisDie
	AxisPlane
	AxisBlock
	AxisPage
	numAxes
)

func (a Axis) String() string {
	switch a {
	case AxisChannel:
		return "Channel"
	case AxisWay:
		return "Way"
	case AxisDie:
		return "Die"
	case AxisPlane:
		return "Plane"
	case AxisBlock:
		return "Block"
	case AxisPage:
		return "Page"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// CPDPBP is the six-tuple (Channel, Package/Way, Die, Plane, Block, Page).
type CPDPBP struct {
	Channel, Way, Die, Plane, Block, Page uint32
}

func (c CPDPBP) axis(a Axis) uint32 {
	switch a {
	case AxisChannel:
		return c.Channel
	case AxisWay:
		return c.Way
	case AxisDie:
		return c.Die
	case AxisPlane:
		return c.Plane
	case AxisBlock:
		return c.Block
	case AxisPage:
		return c.Page
	default:
		panic("addr: invalid axis")
	}
}

func (c *CPDPBP) setAxis(a Axis, v uint32) {
	switch a {
	case AxisChannel:
		c.Channel = v
	case AxisWay:
		c.Way = v
	case AxisDie:
		c.Die = v
	case AxisPlane:
		c.Plane = v
	case AxisBlock:
		c.Block = v
	case AxisPage:
		c.Page = v
	default:
		panic("addr: invalid axis")
	}
}

// Stripe describes super-page misalignment: a multiplier applied across a
// boundary in the axis ordering, used when several physical pages across
// otherwise-independent axes are addressed as one logical super-page. Position
// is an index into AddrSeq: the stripe factor sits between AddrSeq[:5-Position-1]
// and the remaining axes, mirroring the source's RearrangedSizes[6]/AS[6] pair.
type Stripe struct {
	Factor   uint32
	Position int
}

// Layout is a fully-resolved AddressLayout: six axis sizes, a permutation
// defining decomposition order from most to least significant, and an
// optional Stripe for super-page striping.
type Layout struct {
	sizes   [int(numAxes)]uint32
	addrSeq [int(numAxes)]Axis
	stripe  *Stripe

	rearranged [int(numAxes)]uint32 // rearranged[i] = sizes[addrSeq[i]]
}

// NewLayout validates and builds a Layout. sizes is indexed by Axis
// (Channel, Way, Die, Plane, Block, Page); addrSeq[0] is the most significant
// axis position and addrSeq[5] the least. Every size must be >= 1 and addrSeq
// must be a bijection on {0..5}, per §3's AddressLayout invariants.
func NewLayout(sizes [6]uint32, addrSeq [6]Axis, stripe *Stripe) (*Layout, error) {
	for a, sz := range sizes {
		if sz == 0 {
			return nil, invalidf("axis %s has zero size", Axis(a))
		}
	}
	var seen [6]bool
	for _, a := range addrSeq {
		if a < 0 || int(a) >= 6 {
			return nil, invalidf("addrSeq entry %d out of range", a)
		}
		if seen[a] {
			return nil, invalidf("addrSeq is not a bijection: %s repeated", a)
		}
		seen[a] = true
	}

	l := &Layout{sizes: sizes, addrSeq: addrSeq, stripe: stripe}
	for i, a := range addrSeq {
		l.rearranged[i] = sizes[a]
	}
	return l, nil
}

func invalidf(format string, args ...interface{}) error {
	return errors.WithStack(fmt.Errorf("addr: invalid layout: "+format, args...))
}

// TotalPages returns the product of all six axis sizes: the total PPN space.
func (l *Layout) TotalPages() uint64 {
	total := uint64(1)
	for _, sz := range l.sizes {
		total *= uint64(sz)
	}
	return total
}

// Size returns the configured size of one axis.
func (l *Layout) Size(a Axis) uint32 { return l.sizes[a] }

// DieIndex computes channel*(Die*Way) + way*Die + die, the integer key into
// the per-die FreeSlotIndex/BusyList pair.
func (l *Layout) DieIndex(c CPDPBP) int {
	return int(c.Die) + int(c.Way)*int(l.sizes[AxisDie]) + int(c.Channel)*int(l.sizes[AxisDie])*int(l.sizes[AxisWay])
}

// Disassemble decomposes ppn into its six-axis coordinates by walking
// addrSeq from most to least significant, dividing the remaining PPN by the
// product of the sizes of the axes still to come at each step. When a Stripe
// is configured, the axes before the stripe boundary are decoded the same
// way, the stripe factor is decoded as its own digit, and that digit is
// multiplied into the index of the axis at addrSeq[5-Position], the second
// axis past the boundary (mirroring the source's
// pCPDPBP_IDX[AS[5-Position]] *= tmp).
func (l *Layout) Disassemble(ppn uint64) (CPDPBP, error) {
	space := l.TotalPages()
	if l.stripe != nil {
		space *= uint64(l.stripe.Factor)
	}
	if ppn >= space {
		return CPDPBP{}, errors.WithStack(fmt.Errorf("addr: PPN %d exceeds address space of %d pages", ppn, space))
	}

	var c CPDPBP
	remaining := ppn

	if l.stripe == nil {
		for i := 0; i < 6; i++ {
			divisor := product(l.rearranged[i+1:])
			c.setAxis(l.addrSeq[i], uint32(remaining/divisor))
			remaining %= divisor
		}
		return c, nil
	}

	boundary := 5 - l.stripe.Position - 1
	total := uint64(l.stripe.Factor)
	for _, sz := range l.rearranged {
		total *= uint64(sz)
	}

	for i := 0; i < boundary; i++ {
		total /= uint64(l.rearranged[i])
		c.setAxis(l.addrSeq[i], uint32(remaining/total))
		remaining %= total
	}
	total /= uint64(l.stripe.Factor)
	stripeDigit := remaining / total
	remaining %= total
	for i := boundary; i < 6; i++ {
		total /= uint64(l.rearranged[i])
		c.setAxis(l.addrSeq[i], uint32(remaining/total))
		remaining %= total
	}
	boundaryAxis := l.addrSeq[5-l.stripe.Position]
	c.setAxis(boundaryAxis, c.axis(boundaryAxis)*uint32(stripeDigit))
	return c, nil
}

// Assemble inverts Disassemble for the non-striped case: assemble(disassemble(p))
// == p for every p < TotalPages(). Striped layouts are write-only through
// Disassemble, mirroring the source (AssemblePPN never reconstructs the
// stripe digit).
func (l *Layout) Assemble(c CPDPBP) uint64 {
	var ppn uint64
	for i := 5; i >= 0; i-- {
		ppn += uint64(c.axis(l.addrSeq[i])) * product(l.rearranged[i+1:])
	}
	return ppn
}

func product(sizes []uint32) uint64 {
	total := uint64(1)
	for _, sz := range sizes {
		total *= uint64(sz)
	}
	return total
}
