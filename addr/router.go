package addr

import "github.com/pkg/errors"

// Route decomposes ppn and returns the channel index and the combined die
// index (pal.AddressRouter). It exists purely to adapt Layout to the
// scheduler's narrow routing interface; pal never imports this package.
func (l *Layout) Route(ppn uint64) (channel, die int, err error) {
	c, err := l.Disassemble(ppn)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "addr: routing PPN %d", ppn)
	}
	return int(c.Channel), l.DieIndex(c), nil
}

// EraseUnit returns every PPN that must be scheduled to erase the block
// containing ppn: the digits of the PPN at every position after the Block
// axis in addrSeq vary across their full range while the Block digit and
// every more significant digit stay fixed, per §4.6's erase-amplification
// rule. Which axes vary depends only on Block's position: with the default
// ordering (Block fifth, Page last) it is exactly the Page axis.
// Unlike the source, which aligns the PPN with a bitmask (valid only when
// every one of those axis sizes is a power of two), this uses modular
// arithmetic so arbitrary axis sizes are supported.
func (l *Layout) EraseUnit(ppn uint64) ([]uint64, error) {
	if ppn >= l.TotalPages() {
		return nil, errors.WithStack(errors.Errorf("addr: PPN %d exceeds address space of %d pages", ppn, l.TotalPages()))
	}

	blockPos := -1
	for i, a := range l.addrSeq {
		if a == AxisBlock {
			blockPos = i
			break
		}
	}
	if blockPos < 0 {
		return nil, errors.WithStack(errors.Errorf("addr: Block axis missing from addrSeq"))
	}

	count := product(l.rearranged[blockPos+1:])
	base := ppn - ppn%count

	pages := make([]uint64, count)
	for i := range pages {
		pages[i] = base + uint64(i)
	}
	return pages, nil
}
