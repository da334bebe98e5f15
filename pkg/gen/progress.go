package gen

import "errors"

// ErrCancelled is returned when the caller's progress reporter requests a
// stop. It marks a user decision, not a failure; callers should not log it
// as an error.
var ErrCancelled = errors.New("generation cancelled")

// ProgressFunc receives a stage label and a completion fraction in [0, 1].
// Returning false requests cooperative cancellation; the generator observes
// it at the next polling point (row, quadrant, or level).
type ProgressFunc func(stage string, frac float64) bool

// Token carries progress reporting and the cancellation flag through a
// single generation pass. It enforces the monotonic non-decrease contract
// on reported fractions and latches cancellation once observed.
//
// A token belongs to one pass; do not share it across invocations.
type Token struct {
	fn        ProgressFunc
	last      float64
	cancelled bool
}

// NewToken wraps a reporter. A nil fn yields a token that never cancels.
func NewToken(fn ProgressFunc) *Token {
	return &Token{fn: fn}
}

// Report delivers a progress update and polls for cancellation. Fractions
// below the high-water mark are raised to it before delivery.
func (t *Token) Report(stage string, frac float64) {
	if t.cancelled {
		return
	}
	if frac < t.last {
		frac = t.last
	}
	if frac > 1 {
		frac = 1
	}
	t.last = frac
	if t.fn != nil && !t.fn(stage, frac) {
		t.cancelled = true
	}
}

// Cancelled reports whether a stop has been requested.
func (t *Token) Cancelled() bool { return t.cancelled }
