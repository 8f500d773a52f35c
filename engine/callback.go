package engine

import (
	"math"

	"github.com/gordonklaus/portaudio"
)

// callback adapts the PortAudio invocation to the mixer. out is interleaved
// stereo, so the frame count is half its length.
func (e *Engine) callback(out []int16, info portaudio.StreamCallbackTimeInfo) {
	e.mix(out, info.OutputBufferDacTime.Seconds(), info.CurrentTime.Seconds())
}

// mix fills one output buffer from every unpaused channel queue. It runs on
// the audio driver's realtime thread: no allocation, no locks, no blocking.
//
// bufStart is the DAC time at which out[0] will play; now is the stream
// clock at invocation. Their difference is the reported callback latency.
func (e *Engine) mix(out []int16, bufStart, now float64) {
	frames := len(out) / 2
	for i := range out {
		out[i] = 0
	}

	e.lastLatency.Store(math.Float64bits(bufStart - now))
	e.lastBufferSize.Store(int64(frames))

	bufEnd := bufStart + e.sampleLen*float64(frames)

	for _, q := range e.queues {
		if q.flush.CompareAndSwap(true, false) {
			q.drain()
		}
		if q.paused.Load() {
			continue
		}

		if q.head() == nil {
			// Nothing queued: the channel is free from the end of this
			// buffer on.
			q.setDoneAt(bufEnd)
			continue
		}

		writeOff := 0
		for writeOff < frames {
			ts := q.head()
			if ts == nil {
				break
			}
			if ts.skip.Load() {
				q.pop()
				continue
			}

			if ts.offset == 0 {
				if ts.start > 0 {
					if ts.start >= bufEnd {
						// Belongs to a future buffer; later sounds on this
						// queue cannot jump the line.
						break
					}
					zeroPad := int(math.Floor((ts.start - bufStart) * e.rateF))
					if zeroPad < writeOff {
						// Late: record how many frames were missed and pull
						// the sound forward to the current write position.
						e.playbackError.Add(int64(zeroPad - writeOff))
						zeroPad = writeOff
					}
					writeOff = zeroPad
				}
				q.setDoneAt(bufStart + (float64(writeOff)+float64(ts.frames))*e.sampleLen)
			}

			n := min(frames-writeOff, ts.frames-ts.offset)
			mixInto(out, writeOff, ts, n)
			ts.offset += n
			writeOff += n

			if ts.offset >= ts.frames {
				q.pop()
			}
		}
	}
}

// mixInto sums n frames of ts starting at its current offset into the
// interleaved output at writeOff, saturating on overflow.
func mixInto(out []int16, writeOff int, ts *timedSound, n int) {
	left := ts.data[ts.offset : ts.offset+n]
	right := ts.data[ts.frames+ts.offset : ts.frames+ts.offset+n]
	for i := range n {
		oi := 2 * (writeOff + i)
		out[oi] = sat16(int32(out[oi]) + int32(left[i]))
		out[oi+1] = sat16(int32(out[oi+1]) + int32(right[i]))
	}
}

func sat16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
