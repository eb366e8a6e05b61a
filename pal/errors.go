package pal

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the error conditions this package can raise, per the
// disposition table in the scheduler's error-handling design: InvalidParameter
// and InvalidPPN are fatal and returned to the caller; VerificationFailure and
// LatencyZero are diagnostic and are logged rather than returned (see
// stats.Collector.NoteVerificationFailure and the one-tick substitution,
// clampTick, in Facade.submitOne).
type ErrorKind uint8

const (
	// InvalidParameter marks a zero/overflowing axis size, a permutation
	// that is not a bijection, or an unsupported NAND technology. Raised at
	// construction.
	InvalidParameter ErrorKind = iota
	// InvalidPPN marks a PPN that exceeds the product of axis sizes. The
	// command cannot be routed.
	InvalidPPN
	// VerificationFailure marks a post-commit invariant violation on a
	// BusyList (ordering or disjointness).
	VerificationFailure
	// LatencyZero marks a Latency collaborator returning zero ticks for a
	// non-optional phase.
	LatencyZero
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidParameter:
		return "InvalidParameter"
	case InvalidPPN:
		return "InvalidPPN"
	case VerificationFailure:
		return "VerificationFailure"
	case LatencyZero:
		return "LatencyZero"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Error is the concrete error type returned by this package. Use errors.As
// to recover the Kind for callers that need to branch on disposition.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("pal: %s: %s", e.Kind, e.msg)
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, msg: fmt.Sprintf(format, args...)})
}

// VerificationReport describes a single BusyList.Verify failure: the
// identifier of the offending resource and the adjacent pair of slots that
// violated ordering or disjointness.
type VerificationReport struct {
	Resource string
	Prev     TimeSlot
	Next     TimeSlot
}

func (r VerificationReport) Error() string {
	return fmt.Sprintf("pal: VerificationFailure on %s: prev=%v next=%v", r.Resource, r.Prev, r.Next)
}
