package trial

import (
	"fmt"
	"time"

	"github.com/psylab/psykit/input"
	"github.com/psylab/psykit/record"
)

// Watcher observes every input event before moment dispatch. Moment
// functions may replace it mid-run.
type Watcher func(ev input.Event) error

// Config describes an experiment.
type Config struct {
	// Source delivers input events; required.
	Source input.Source

	// Display presents a visual object; fire and forget. Optional.
	Display func(any)

	// Recorder receives trial events. Optional; without it Record is a
	// no-op.
	Recorder *record.Recorder

	// Offset is the offset-counter value to replay up to. While the counter
	// is below it, timed delays collapse, response moments resolve at once
	// as timeouts without running their callbacks, and boundary events are
	// not recorded, so earlier trials replay at full speed to a known state.
	Offset int
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	if c.Source == nil {
		return fmt.Errorf("experiment requires an input source")
	}
	return nil
}

// Experiment holds the moment queues and counters of one experimental
// session. Build it, add trials, then Run.
type Experiment struct {
	cfg Config

	queues  []*momentQueue
	trial   int
	offset  int
	watcher Watcher

	started   time.Time
	lastEvent time.Time

	// now and sleep are the loop's clock, injectable by tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewExperiment creates an experiment with one empty primary queue.
func NewExperiment(cfg Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:    cfg,
		queues: []*momentQueue{{}},
		now:    time.Now,
		sleep:  time.Sleep,
	}, nil
}

// Trial returns the current trial counter.
func (e *Experiment) Trial() int { return e.trial }

// Offset returns the current offset counter.
func (e *Experiment) Offset() int { return e.offset }

// SetWatcher installs the event watcher; moments may call this to swap
// observers mid-run.
func (e *Experiment) SetWatcher(w Watcher) { e.watcher = w }

// LastEventTime returns the timestamp of the most recent input event, or
// the run start before any event arrives.
func (e *Experiment) LastEventTime() time.Time { return e.lastEvent }

// Display forwards an object to the configured display, if any.
func (e *Experiment) Display(obj any) {
	if e.cfg.Display != nil {
		e.cfg.Display(obj)
	}
}

// Record writes one event row with the current counters and clock.
func (e *Experiment) Record(code string, values map[string]string) error {
	if e.cfg.Recorder == nil {
		return nil
	}
	return e.cfg.Recorder.Record(e.offset, e.trial, e.now().Sub(e.started), code, values)
}

// Add appends moments to the primary queue.
func (e *Experiment) Add(ms ...*Moment) {
	e.queues[0].push(ms...)
}

// AddTrial appends a trial: a TrialStart boundary followed by the given
// moments.
func (e *Experiment) AddTrial(ms ...*Moment) {
	e.Add(append([]*Moment{TrialStart()}, ms...)...)
}

// AddPractice appends a practice block: a PracticeStart boundary followed
// by the given moments.
func (e *Experiment) AddPractice(ms ...*Moment) {
	e.Add(append([]*Moment{PracticeStart()}, ms...)...)
}
