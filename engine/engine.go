// Package engine owns the realtime audio output: it opens the default
// stereo device through PortAudio, mixes queued 16-bit PCM onto the output
// in the driver's callback, and exposes timed playback with per-channel
// queues, pause/resume, latency reporting and late-playback warnings.
//
// The engine distinguishes errors (operations fail, the cause is kept for
// LastError) from warnings (stored one-shot strings that never abort
// playback). All control operations are safe from a single control
// goroutine; the mixing callback is the only other thread that touches the
// queues, through single-producer/single-consumer rings.
package engine

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/psylab/psykit/sound"
)

const (
	// streamQueueSize is the ring capacity of the reserved streaming
	// channels; one playing unit plus one queued replacement.
	streamQueueSize = 2

	defaultNumChannels = 8
	defaultQueueSize   = 8
	defaultStreamUnit  = 1 << 11
)

// Config describes an engine setup request.
type Config struct {
	// Rate is the output sample rate in Hz.
	Rate int

	// NumChannels is the number of discrete playback channels N; the
	// engine allocates 2N queues, the upper half reserved for streaming.
	NumChannels int

	// QueueSize is the per-channel capacity of the discrete queues,
	// rounded up to a power of two.
	QueueSize int

	// StreamUnit is the frame count per callback buffer, and the quantum a
	// stream source yields per pull.
	StreamUnit int
}

// Validate fills defaults and reports configuration errors.
func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("sample rate %d must be positive", c.Rate)
	}
	if c.NumChannels <= 0 {
		c.NumChannels = defaultNumChannels
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.StreamUnit <= 0 {
		c.StreamUnit = defaultStreamUnit
	}
	return nil
}

// Engine is the process-wide audio output. Lifecycle: New → Play/Pause/
// Resume/Stop → Close. Reconfiguration means Close then New.
type Engine struct {
	mu sync.Mutex

	queues      []*channelQueue // 2N: discrete then streaming
	numChannels int
	rate        int
	rateF       float64
	sampleLen   float64
	streamUnit  int

	stream *portaudio.Stream

	lastLatency    atomic.Uint64 // math.Float64bits, seconds
	lastBufferSize atomic.Int64  // frames
	playbackError  atomic.Int64  // negated count of late frames

	lastErr     error
	lateWarning string
}

// New opens the default stereo output and starts the mixing callback.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := newState(cfg)

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDevice, err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, float64(cfg.Rate), cfg.StreamUnit, e.callback)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: open at %d Hz: %v", ErrDevice, cfg.Rate, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: start: %v", ErrDevice, err)
	}

	e.stream = stream
	return e, nil
}

// newState allocates the queue set without touching the device; the mixer
// tests drive this directly.
func newState(cfg Config) *Engine {
	e := &Engine{
		queues:      make([]*channelQueue, 2*cfg.NumChannels),
		numChannels: cfg.NumChannels,
		rate:        cfg.Rate,
		rateF:       float64(cfg.Rate),
		sampleLen:   1.0 / float64(cfg.Rate),
		streamUnit:  cfg.StreamUnit,
	}
	for i := 0; i < cfg.NumChannels; i++ {
		e.queues[i] = newChannelQueue(cfg.QueueSize)
	}
	for i := cfg.NumChannels; i < 2*cfg.NumChannels; i++ {
		e.queues[i] = newChannelQueue(streamQueueSize)
	}
	return e
}

// Close stops the stream, releases every queued sound and terminates the
// device. The engine is unusable afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queues == nil {
		return ErrNotReady
	}

	var firstErr error
	if e.stream != nil {
		if err := e.stream.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: stop: %v", ErrDevice, err)
		}
		if err := e.stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: close: %v", ErrDevice, err)
		}
		if err := portaudio.Terminate(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: terminate: %v", ErrDevice, err)
		}
		e.stream = nil
	}
	e.queues = nil
	if firstErr != nil {
		e.lastErr = firstErr
	}
	return firstErr
}

// SampleRate returns the output rate in Hz.
func (e *Engine) SampleRate() int { return e.rate }

// StreamUnit returns the configured stream quantum in frames.
func (e *Engine) StreamUnit() int { return e.streamUnit }

// Now returns the engine's monotonic stream clock.
func (e *Engine) Now() time.Duration {
	if e.stream == nil {
		return 0
	}
	return e.stream.Time()
}

// CurrentLatency estimates the delay between a Play call and audibility:
// one callback buffer plus the driver's reported output latency.
func (e *Engine) CurrentLatency() time.Duration {
	frames := e.lastBufferSize.Load()
	lat := math.Float64frombits(e.lastLatency.Load())
	return time.Duration((float64(frames)*e.sampleLen + lat) * float64(time.Second))
}

// Play enqueues a canonical PCM buffer. when == 0 plays as soon as
// possible; when > 0 is an absolute time on the stream clock. channel == 0
// auto-assigns the soonest-free discrete channel; explicit channels are
// 1-based. Returns the channel the sound landed on.
func (e *Engine) Play(p *sound.PCM, when time.Duration, channel int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queues == nil {
		return 0, ErrNotReady
	}
	if p.Rate != e.rate {
		return 0, fmt.Errorf("%w: sound %d Hz, engine %d Hz", ErrRateMismatch, p.Rate, e.rate)
	}
	if channel < 0 || channel > e.numChannels {
		return 0, fmt.Errorf("%w: %d of %d", ErrBadChannel, channel, e.numChannels)
	}

	start := when.Seconds()
	if when > 0 && e.stream != nil {
		if earliest := e.Now() + e.CurrentLatency(); when < earliest {
			e.lateWarning = fmt.Sprintf(
				"requested start %v is inside the device latency window; playing %v late",
				when, earliest-when)
			start = 0
		}
	}

	if channel == 0 {
		assigned := e.pickChannel()
		if assigned < 0 {
			return 0, ErrNoChannels
		}
		channel = assigned + 1
	}

	q := e.queues[channel-1]
	if q.paused.Load() || !q.offer(newTimedSound(p, start)) {
		return 0, ErrNoChannels
	}
	return channel, nil
}

// pickChannel returns the index of the unpaused discrete queue with a free
// producer slot and the smallest done-at, or -1.
func (e *Engine) pickChannel() int {
	best := -1
	minDone := math.Inf(1)
	for i := 0; i < e.numChannels; i++ {
		q := e.queues[i]
		if q.paused.Load() || !q.producerFree() {
			continue
		}
		if done := q.getDoneAt(); done < minDone {
			minDone = done
			best = i
		}
	}
	return best
}

// PlayNext enqueues onto the streaming half of the channel set. The sound
// starts as soon as the channel's current unit finishes. A full slot
// returns ErrQueueFull and the caller retries; a paused channel is spliced
// (the unit at the head of its queue is retired unplayed) and resumed. Returns the stream-clock
// time by which the new unit will have finished.
func (e *Engine) PlayNext(p *sound.PCM, channel int) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queues == nil {
		return 0, ErrNotReady
	}
	if p.Rate != e.rate {
		return 0, fmt.Errorf("%w: sound %d Hz, engine %d Hz", ErrRateMismatch, p.Rate, e.rate)
	}
	if channel < 1 || channel > e.numChannels {
		return 0, fmt.Errorf("%w: stream channel %d of %d", ErrBadChannel, channel, e.numChannels)
	}

	q := e.queues[e.numChannels+channel-1]
	if q.paused.Load() {
		if tail := q.head(); tail != nil {
			tail.skip.Store(true)
		}
		q.paused.Store(false)
	}

	doneAt := q.getDoneAt() + float64(p.Frames)*e.sampleLen
	if !q.offer(newTimedSound(p, 0)) {
		return 0, ErrQueueFull
	}
	return time.Duration(doneAt * float64(time.Second)), nil
}

// Pause suspends a queue: isStream selects the streaming half; channel < 0
// suspends every queue. Takes effect at the next callback.
func (e *Engine) Pause(channel int, isStream bool) error {
	return e.setPaused(channel, isStream, true)
}

// Resume reverses Pause.
func (e *Engine) Resume(channel int, isStream bool) error {
	return e.setPaused(channel, isStream, false)
}

func (e *Engine) setPaused(channel int, isStream, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queues == nil {
		return ErrNotReady
	}
	if channel < 0 {
		for _, q := range e.queues {
			q.paused.Store(paused)
		}
		return nil
	}
	if channel < 1 || channel > e.numChannels {
		return fmt.Errorf("%w: %d of %d", ErrBadChannel, channel, e.numChannels)
	}
	idx := channel - 1
	if isStream {
		idx += e.numChannels
	}
	e.queues[idx].paused.Store(paused)
	return nil
}

// Stop discards everything queued on a discrete channel; channel < 0
// discards on all queues. Audio already inside the current callback buffer
// still plays, bounded by one stream unit.
func (e *Engine) Stop(channel int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queues == nil {
		return ErrNotReady
	}
	if channel < 0 {
		for _, q := range e.queues {
			q.flush.Store(true)
		}
		return nil
	}
	if channel < 1 || channel > e.numChannels {
		return fmt.Errorf("%w: %d of %d", ErrBadChannel, channel, e.numChannels)
	}
	e.queues[channel-1].flush.Store(true)
	return nil
}

// LastError returns the most recent structured failure, or nil.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// LastWarning returns the pending warning and clears it. Late playback
// observed by the mixer is reported here as the accumulated lateness.
func (e *Engine) LastWarning() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if w := e.lateWarning; w != "" {
		e.lateWarning = ""
		return w
	}
	if late := e.playbackError.Swap(0); late < 0 {
		ms := float64(-late) * e.sampleLen * 1e3
		return fmt.Sprintf("a previously played sound occurred %.2fms after it should have", ms)
	}
	return ""
}
