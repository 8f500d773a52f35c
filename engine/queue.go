package engine

import (
	"math"
	"sync/atomic"

	"github.com/psylab/psykit/sound"
)

// timedSound binds a canonical PCM buffer to its scheduled start on the
// stream clock. start <= 0 means "as soon as possible". offset counts the
// frames already mixed; once it reaches frames the record is retired.
//
// The buffer is the PCM's own storage: the producer side keeps the PCM
// reachable for as long as the record is queued, so the callback never
// touches freed memory.
type timedSound struct {
	data   []int16 // planar stereo: frames of left, then frames of right
	frames int
	start  float64
	offset int

	// skip marks a spliced-out stream sound; the mixer retires it without
	// playing the remainder.
	skip atomic.Bool
}

func newTimedSound(p *sound.PCM, start float64) *timedSound {
	return &timedSound{data: p.Data, frames: p.Frames, start: start}
}

// channelQueue is a single-producer/single-consumer ring of timedSound
// pointers. The control thread owns producer and only ever stores into an
// empty slot before advancing; the audio callback owns consumer and clears
// a slot only after the sound completes. A slot is empty iff it is nil, so
// no shared counter is needed.
type channelQueue struct {
	slots []atomic.Pointer[timedSound]
	mask  uint32

	paused atomic.Bool
	flush  atomic.Bool

	producer uint32 // control thread only, under Engine.mu
	consumer uint32 // callback only

	// doneAt is the stream-clock time at which the queue's current tail
	// will finish; play uses it to pick the soonest-free channel.
	doneAt atomic.Uint64 // math.Float64bits
}

// newChannelQueue creates a queue whose capacity is size rounded up to a
// power of two for index masking.
func newChannelQueue(size int) *channelQueue {
	capacity := 1
	for capacity < size {
		capacity <<= 1
	}
	return &channelQueue{
		slots: make([]atomic.Pointer[timedSound], capacity),
		mask:  uint32(capacity - 1),
	}
}

// offer stores ts at the producer slot if it is empty. Control thread only.
func (q *channelQueue) offer(ts *timedSound) bool {
	idx := q.producer & q.mask
	if q.slots[idx].Load() != nil {
		return false
	}
	q.slots[idx].Store(ts)
	q.producer++
	return true
}

// producerFree reports whether the next producer slot is empty.
func (q *channelQueue) producerFree() bool {
	return q.slots[q.producer&q.mask].Load() == nil
}

// head returns the sound at the consumer slot, or nil. Callback only.
func (q *channelQueue) head() *timedSound {
	return q.slots[q.consumer&q.mask].Load()
}

// pop clears the consumer slot and advances. Callback only; the slot must
// hold the sound just completed.
func (q *channelQueue) pop() {
	q.slots[q.consumer&q.mask].Store(nil)
	q.consumer++
}

// drain retires every queued sound. Callback only, triggered by the flush
// flag that Stop sets from the control thread.
func (q *channelQueue) drain() {
	for q.head() != nil {
		q.pop()
	}
}

func (q *channelQueue) setDoneAt(t float64) {
	q.doneAt.Store(math.Float64bits(t))
}

func (q *channelQueue) getDoneAt() float64 {
	return math.Float64frombits(q.doneAt.Load())
}
