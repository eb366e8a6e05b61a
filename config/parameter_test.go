package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nandpal/addr"
)

func validParameter() Parameter {
	return Parameter{
		Channel: 4, Way: 2, Die: 2, Plane: 1, Block: 512, Page: 256,
		PageSize: 8192, SuperPageSize: 8192,
	}
}

func TestParameterValidateAcceptsWellFormed(t *testing.T) {
	assert.NoError(t, validParameter().Validate())
}

func TestParameterValidateRejectsZeroField(t *testing.T) {
	p := validParameter()
	p.Plane = 0
	err := p.Validate()
	assert.Error(t, err)
	var target *ErrInvalidParameter
	assert.ErrorAs(t, err, &target)
}

func TestParameterValidateRejectsSuperPageSmallerThanPage(t *testing.T) {
	p := validParameter()
	p.SuperPageSize = p.PageSize - 1
	assert.Error(t, p.Validate())
}

func TestParameterSizesOrderMatchesAddrAxis(t *testing.T) {
	p := validParameter()
	sizes := p.Sizes()
	assert.Equal(t, p.Channel, sizes[addr.AxisChannel])
	assert.Equal(t, p.Way, sizes[addr.AxisWay])
	assert.Equal(t, p.Die, sizes[addr.AxisDie])
	assert.Equal(t, p.Plane, sizes[addr.AxisPlane])
	assert.Equal(t, p.Block, sizes[addr.AxisBlock])
	assert.Equal(t, p.Page, sizes[addr.AxisPage])
}

func TestBuildLayoutRejectsInvalidParameterBeforeTouchingAddr(t *testing.T) {
	p := validParameter()
	p.Block = 0
	seq := [6]addr.Axis{addr.AxisChannel, addr.AxisWay, addr.AxisDie, addr.AxisPlane, addr.AxisBlock, addr.AxisPage}
	_, err := BuildLayout(p, seq, nil)
	assert.Error(t, err)
}

func TestBuildLayoutConstructsUsableLayout(t *testing.T) {
	p := validParameter()
	seq := [6]addr.Axis{addr.AxisChannel, addr.AxisWay, addr.AxisDie, addr.AxisPlane, addr.AxisBlock, addr.AxisPage}
	layout, err := BuildLayout(p, seq, nil)
	assert.NoError(t, err)
	assert.Equal(t, uint64(p.Channel)*uint64(p.Way)*uint64(p.Die)*uint64(p.Plane)*uint64(p.Block)*uint64(p.Page), layout.TotalPages())
}
