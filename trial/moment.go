// Package trial sequences an experiment: queues of timed moments advanced
// by a cooperative run loop that also dispatches input events and records
// structured trial events. Moments are a tagged variant (timed callbacks,
// trial boundaries, response waits, parallel compounds, dispatch-time
// conditionals, run-last finalizers), so dispatch is a single switch over
// the tag.
package trial

import (
	"time"

	"github.com/psylab/psykit/input"
)

// MomentFunc is a user callback run by the scheduler; it receives the
// dispatch time. A non-nil error terminates the run loop.
type MomentFunc func(now time.Time) error

type momentKind uint8

const (
	kindTimed momentKind = iota
	kindOffsetStart
	kindResponse
	kindCompound
	kindExpanding
	kindFinal
)

// Moment is one dispatchable scheduling unit. Construct moments with the
// package functions; the zero value is not meaningful.
type Moment struct {
	kind momentKind

	// timed
	delta time.Duration
	run   MomentFunc

	// offset-start
	practice bool

	// response
	accept     func(input.Event) bool
	onResponse func(ev input.Event, now time.Time) error
	timeout    time.Duration
	onTimeout  MomentFunc
	atLeast    time.Duration

	// compound
	children []*Moment

	// expanding: evaluated at dispatch time; returns the moments to splice
	// in front of the queue and whether to re-enqueue itself after them.
	expand func() (body []*Moment, repeat bool)
}

// After returns a moment that runs fn once delta has elapsed since the
// preceding moment's start.
func After(delta time.Duration, fn MomentFunc) *Moment {
	return &Moment{kind: kindTimed, delta: delta, run: fn}
}

// Do returns a moment that runs fn immediately after the preceding moment.
func Do(fn MomentFunc) *Moment {
	return After(0, fn)
}

// Pause returns a moment that only advances the clock.
func Pause(delta time.Duration) *Moment {
	return After(delta, nil)
}

// TrialStart marks a trial boundary: it advances the trial and offset
// counters, records a trial_start event and resets the response watcher.
func TrialStart() *Moment {
	return &Moment{kind: kindOffsetStart}
}

// PracticeStart marks a practice boundary: it advances only the offset
// counter and records a practice_start event.
func PracticeStart() *Moment {
	return &Moment{kind: kindOffsetStart, practice: true}
}

// ResponseOpts configure a Response moment.
type ResponseOpts struct {
	// OnResponse runs when an event is accepted.
	OnResponse func(ev input.Event, now time.Time) error

	// Timeout pops the moment after this much waiting; zero waits forever.
	Timeout time.Duration

	// OnTimeout runs when the timeout fires.
	OnTimeout MomentFunc

	// AtLeast keeps the queue from advancing before this much time has
	// passed since the moment became current, even on an earlier response.
	AtLeast time.Duration
}

// Response returns a moment that waits for an input event satisfying
// accept. While it is current it owns event dispatch; at most one response
// moment may be current across all queues.
func Response(accept func(input.Event) bool, opts ResponseOpts) *Moment {
	return &Moment{
		kind:       kindResponse,
		accept:     accept,
		onResponse: opts.OnResponse,
		timeout:    opts.Timeout,
		onTimeout:  opts.OnTimeout,
		atLeast:    opts.AtLeast,
	}
}

// Sequence groups moments into a compound: at dispatch it becomes a new
// parallel queue anchored at the enclosing moment's start time.
func Sequence(children ...*Moment) *Moment {
	return &Moment{kind: kindCompound, children: children}
}

// Final returns a moment that runs only once every other queue has
// drained; until then it keeps migrating to the tail of whichever queue
// still has work.
func Final(fn MomentFunc) *Moment {
	return &Moment{kind: kindFinal, run: fn}
}

// When returns a moment whose body runs only if pred holds at dispatch
// time. Conditions over experiment state must use this rather than host
// control flow: an if statement would freeze the decision while the
// moment list is being built.
func When(pred func() bool, body ...*Moment) *Moment {
	return &Moment{kind: kindExpanding, expand: func() ([]*Moment, bool) {
		if pred() {
			return body, false
		}
		return nil, false
	}}
}

// WhenElse is When with an else branch; pred is read once per dispatch.
func WhenElse(pred func() bool, then, otherwise []*Moment) *Moment {
	return &Moment{kind: kindExpanding, expand: func() ([]*Moment, bool) {
		if pred() {
			return then, false
		}
		return otherwise, false
	}}
}

// While re-evaluates pred each pass, splicing the body in front of itself
// for as long as pred holds.
func While(pred func() bool, body ...*Moment) *Moment {
	return &Moment{kind: kindExpanding, expand: func() ([]*Moment, bool) {
		if pred() {
			return body, true
		}
		return nil, false
	}}
}
