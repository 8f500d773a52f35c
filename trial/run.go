package trial

import (
	"fmt"
	"time"

	"github.com/psylab/psykit/input"
)

// pollInterval paces the cooperative loop; short enough that response
// timestamps stay well inside a millisecond of the driving event.
const pollInterval = 500 * time.Microsecond

// Run executes the experiment: it polls input, advances every queue by at
// most one dispatch per pass, and returns when all queues drain. The first
// error from a moment function or the watcher aborts the run; an input
// Quit event ends it cleanly.
func (e *Experiment) Run() error {
	e.started = e.now()
	e.lastEvent = e.started
	for _, q := range e.queues {
		q.last = e.started
	}
	if e.cfg.Recorder != nil {
		if err := e.cfg.Recorder.WriteHeader(); err != nil {
			return err
		}
	}

	for e.anyPending() {
		events, err := e.cfg.Source.Poll()
		if err != nil {
			return fmt.Errorf("input source: %w", err)
		}
		for _, ev := range events {
			if ev.Kind == input.Quit {
				return nil
			}
			e.lastEvent = e.eventTime(ev)
			if e.watcher != nil {
				if err := e.watcher(ev); err != nil {
					return err
				}
			}
			if err := e.dispatchEvent(ev); err != nil {
				return err
			}
		}

		// Compound moments may append queues mid-pass; index so the new
		// queues are reached this same iteration.
		now := e.now()
		for i := 0; i < len(e.queues); i++ {
			if e.queues[i].empty() {
				continue
			}
			if err := e.handle(e.queues[i], now); err != nil {
				return err
			}
		}
		e.prune()

		e.sleep(pollInterval)
	}
	return nil
}

// eventTime prefers the event's own timestamp and falls back to the loop
// clock for sources that do not stamp events.
func (e *Experiment) eventTime(ev input.Event) time.Time {
	if !ev.Time.IsZero() {
		return ev.Time
	}
	return e.now()
}

func (e *Experiment) anyPending() bool {
	for _, q := range e.queues {
		if !q.empty() {
			return true
		}
	}
	return false
}

// prune drops drained parallel queues, keeping the primary queue alive for
// late Adds.
func (e *Experiment) prune() {
	kept := e.queues[:1]
	for _, q := range e.queues[1:] {
		if !q.empty() {
			kept = append(kept, q)
		}
	}
	e.queues = kept
}

// catchingUp reports whether the experiment is replaying to a target
// offset: delays collapse and response moments resolve as timeouts so the
// state mutations of earlier trials replay at full speed.
func (e *Experiment) catchingUp() bool {
	return e.offset < e.cfg.Offset
}

// handle advances one queue by at most one dispatch.
func (e *Experiment) handle(q *momentQueue, now time.Time) error {
	m := q.head()
	switch m.kind {
	case kindTimed:
		if !e.catchingUp() && now.Sub(q.last) < m.delta {
			return nil
		}
		q.popFront()
		q.last = now
		if m.run != nil {
			return m.run(now)
		}

	case kindOffsetStart:
		e.offset++
		code := "trial_start"
		if m.practice {
			code = "practice_start"
		} else {
			e.trial++
		}
		e.watcher = nil
		q.popFront()
		q.last = now
		if !e.catchingUp() {
			return e.Record(code, nil)
		}

	case kindResponse:
		if e.catchingUp() || (m.timeout > 0 && now.Sub(q.last) >= m.timeout) {
			q.popFront()
			q.last = now
			if m.onTimeout != nil && !e.catchingUp() {
				return m.onTimeout(now)
			}
		}

	case kindCompound:
		q.popFront()
		child := &momentQueue{
			moments: append([]*Moment{}, m.children...),
			last:    q.last,
		}
		e.queues = append(e.queues, child)

	case kindExpanding:
		body, repeat := m.expand()
		q.popFront()
		if repeat {
			q.unshift(m)
		}
		q.unshift(body...)

	case kindFinal:
		if e.anyNonFinalPending() {
			// Keep migrating behind the remaining work; prefer another
			// queue's tail so a drained queue can be pruned.
			q.popFront()
			if target := e.busiestOther(q); target != nil {
				target.push(m)
			} else {
				q.push(m)
			}
			return nil
		}
		q.popFront()
		q.last = now
		if m.run != nil {
			return m.run(now)
		}
	}
	return nil
}

// anyNonFinalPending reports whether any queue still holds a moment that is
// not a finalizer; while one exists no final moment may run.
func (e *Experiment) anyNonFinalPending() bool {
	for _, q := range e.queues {
		for _, m := range q.moments {
			if m.kind != kindFinal {
				return true
			}
		}
	}
	return false
}

// busiestOther returns a queue other than q that still has work, or nil.
func (e *Experiment) busiestOther(q *momentQueue) *momentQueue {
	for _, other := range e.queues {
		if other != q && !other.empty() {
			return other
		}
	}
	return nil
}

// dispatchEvent offers an event to the current response moment, if any.
// The first response head across the queue set owns the dispatch slot.
func (e *Experiment) dispatchEvent(ev input.Event) error {
	for _, q := range e.queues {
		m := q.head()
		if m == nil || m.kind != kindResponse {
			continue
		}
		if !m.accept(ev) {
			return nil
		}

		now := e.eventTime(ev)
		elapsed := now.Sub(q.last)
		q.popFront()
		if m.atLeast > 0 && elapsed < m.atLeast {
			// Hold the queue until the response floor passes.
			q.unshift(Pause(m.atLeast - elapsed))
		}
		q.last = now
		if m.onResponse != nil {
			return m.onResponse(ev, now)
		}
		return nil
	}
	return nil
}
