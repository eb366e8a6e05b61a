// Package config builds and validates the Parameter and AddressLayout
// values the pal and addr packages are constructed from, and reads a small
// XML subtree describing them.
package config

import (
	"fmt"

	"github.com/pkg/errors"

	"nandpal/addr"
)

// Parameter is the plain struct the scheduler core is built from: six axis
// sizes plus the two page-size fields, per §6. Invariant: every field >= 1.
type Parameter struct {
	Channel, Way, Die, Plane, Block, Page uint32
	PageSize, SuperPageSize               uint32
}

// ErrInvalidParameter wraps every validation failure raised by this
// package, so callers can errors.As against a single sentinel type.
type ErrInvalidParameter struct{ msg string }

func (e *ErrInvalidParameter) Error() string { return "config: invalid parameter: " + e.msg }

func invalid(format string, args ...interface{}) error {
	return errors.WithStack(&ErrInvalidParameter{msg: fmt.Sprintf(format, args...)})
}

// Validate checks the "each >= 1" invariant from §6.
func (p Parameter) Validate() error {
	fields := map[string]uint32{
		"channel": p.Channel, "way": p.Way, "die": p.Die,
		"plane": p.Plane, "block": p.Block, "page": p.Page,
		"pageSize": p.PageSize, "superPageSize": p.SuperPageSize,
	}
	for name, v := range fields {
		if v == 0 {
			return invalid("%s must be >= 1, got 0", name)
		}
	}
	if p.SuperPageSize < p.PageSize {
		return invalid("superPageSize (%d) must be >= pageSize (%d)", p.SuperPageSize, p.PageSize)
	}
	return nil
}

// Sizes returns the six axis sizes in addr.Axis order, ready for
// addr.NewLayout.
func (p Parameter) Sizes() [6]uint32 {
	return [6]uint32{p.Channel, p.Way, p.Die, p.Plane, p.Block, p.Page}
}

// AddrSeqEntry is one XML <axis> element: a decomposition position (0 =
// most significant) and the axis name it holds.
type AddrSeqEntry struct {
	Position int
	Axis     addr.Axis
}

// BuildLayout validates p and constructs the addr.Layout it describes, with
// the given axis permutation and optional stripe.
func BuildLayout(p Parameter, seq [6]addr.Axis, stripe *addr.Stripe) (*addr.Layout, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	layout, err := addr.NewLayout(p.Sizes(), seq, stripe)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return layout, nil
}
