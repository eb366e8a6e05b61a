package pal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newChDieForTest() (ch, die *resource) {
	return newResource("ch0", []Tick{1000, 10000, 200000}),
		newResource("die0", []Tick{1000, 10000, 200000})
}

func TestFitCommitTripleFirstCommandOnEmptyResources(t *testing.T) {
	ch, die := newChDieForTest()

	p := fitTriple(ch, die, 0 /* floor */, 1000, 100000, 1000, 1000)
	assert.Equal(t, Tick(0), p.t0)
	assert.Equal(t, Tick(0), p.tm)
	assert.Equal(t, Tick(101000), p.t1)
	assert.Equal(t, ConflictNone, p.conflict)

	dma0, mem, dma1 := commitTriple(ch, die, p, 1000, 100000, 1000, 1000)
	assert.Equal(t, TimeSlot{Start: 0, End: 999}, dma0)
	assert.Equal(t, TimeSlot{Start: 101000, End: 101999}, dma1)
	assert.Equal(t, TimeSlot{Start: 0, End: 102999}, mem)

	assert.Nil(t, ch.busy.Verify())
	assert.Nil(t, die.busy.Verify())
}

func TestFitCommitTripleSecondCommandAbutsFirst(t *testing.T) {
	ch, die := newChDieForTest()

	p1 := fitTriple(ch, die, 0, 1000, 100000, 1000, 1000)
	commitTriple(ch, die, p1, 1000, 100000, 1000, 1000)

	// A second command arriving after the first finishes (die.StartPoint is
	// now 103000) must not overlap either the first command's DMA0/DMA1
	// channel windows or its MEM span on the die.
	p2 := fitTriple(ch, die, die.free.StartPoint(), 1000, 100000, 1000, 1000)
	dma0b, memb, dma1b := commitTriple(ch, die, p2, 1000, 100000, 1000, 1000)

	assert.False(t, dma0b.Overlaps(TimeSlot{Start: 0, End: 999}))
	assert.False(t, dma0b.Overlaps(TimeSlot{Start: 101000, End: 101999}))
	assert.False(t, memb.Overlaps(TimeSlot{Start: 0, End: 102999}))
	assert.False(t, dma1b.Overlaps(dma0b))

	assert.Nil(t, ch.busy.Verify())
	assert.Nil(t, die.busy.Verify())
}

func TestFitTripleReportsChannelConflictWhenOnlyALaterSlotFits(t *testing.T) {
	ch, die := newChDieForTest()

	// [0,49] is registered but too short for a length-40 request floored at
	// 100; [150,249] is the only interval long enough, so the DMA0 search
	// must report a conflict.
	ch.free.InsertAssignment(100, 50, 0, false)
	ch.free.InsertAssignment(100, 250, 150, false)

	p := fitTriple(ch, die, 100, 40, 1, 40, 1)
	assert.True(t, p.conflict&ConflictDMA0 != 0)
}
