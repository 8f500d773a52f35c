package sound

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMix(t *testing.T) {
	t.Run("identity with silence", func(t *testing.T) {
		s := Tone(440, 100*time.Millisecond, testRate)
		mixed, err := Mix(s, Silence(100*time.Millisecond, testRate))
		require.NoError(t, err)
		assert.Equal(t, s.Channel(0), mixed.Channel(0))
	})

	t.Run("zero pads to longest", func(t *testing.T) {
		tone := Tone(440, 100*time.Millisecond, testRate)
		mixed, err := Mix(tone, Silence(200*time.Millisecond, testRate))
		require.NoError(t, err)

		assert.Equal(t, 200*time.Millisecond, mixed.Duration())
		n := tone.Frames()
		assert.Equal(t, tone.Channel(0), mixed.Channel(0)[:n])
		for _, v := range mixed.Channel(0)[n:] {
			require.Zero(t, v)
		}
	})

	t.Run("commutative", func(t *testing.T) {
		a := Tone(440, 50*time.Millisecond, testRate)
		b := Tone(660, 30*time.Millisecond, testRate)
		ab, err := Mix(a, b)
		require.NoError(t, err)
		ba, err := Mix(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab.Channel(0), ba.Channel(0))
	})

	t.Run("associative on equal lengths", func(t *testing.T) {
		a := Tone(440, 20*time.Millisecond, testRate)
		b := Tone(550, 20*time.Millisecond, testRate)
		c := Tone(660, 20*time.Millisecond, testRate)

		left, err := Mix(a, b)
		require.NoError(t, err)
		left, err = Mix(left, c)
		require.NoError(t, err)

		right, err := Mix(b, c)
		require.NoError(t, err)
		right, err = Mix(a, right)
		require.NoError(t, err)

		for i := range left.Channel(0) {
			require.InDelta(t, left.Channel(0)[i], right.Channel(0)[i], 1e-12)
		}
	})

	t.Run("stereo broadcast", func(t *testing.T) {
		mono := Tone(440, 10*time.Millisecond, testRate)
		stereo := StereoSilence(10*time.Millisecond, testRate)
		mixed, err := Mix(mono, stereo)
		require.NoError(t, err)
		assert.Equal(t, 2, mixed.Channels())
		assert.Equal(t, mono.Channel(0), mixed.Channel(1))
	})

	t.Run("rate mismatch", func(t *testing.T) {
		_, err := Mix(Tone(440, time.Millisecond, 44100), Tone(440, time.Millisecond, 48000))
		assert.ErrorIs(t, err, ErrRateMismatch)
	})

	t.Run("empty argument list", func(t *testing.T) {
		_, err := Mix()
		assert.ErrorIs(t, err, ErrShape)
	})
}

func TestMult(t *testing.T) {
	t.Run("one pads to longest", func(t *testing.T) {
		half, err := FromMono([]float64{0.5, 0.5}, testRate)
		require.NoError(t, err)
		full, err := FromMono([]float64{0.8, 0.8, 0.8, 0.8}, testRate)
		require.NoError(t, err)

		product, err := Mult(half, full)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.4, 0.4, 0.8, 0.8}, product.Channel(0))
	})

	t.Run("commutative", func(t *testing.T) {
		a, _ := FromMono([]float64{0.5, -0.5, 1}, testRate)
		b, _ := FromMono([]float64{0.2, 0.4}, testRate)
		ab, err := Mult(a, b)
		require.NoError(t, err)
		ba, err := Mult(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab.Channel(0), ba.Channel(0))
	})
}

func TestAttenuate(t *testing.T) {
	s := Tone(1000, 100*time.Millisecond, testRate)

	t.Run("unit RMS at zero dB", func(t *testing.T) {
		out := Attenuate(s, 0)
		assert.InDelta(t, 1.0, rmsOf(out.Channel(0)), 1e-6)
	})

	t.Run("ratio between levels", func(t *testing.T) {
		ref := Attenuate(s, 0)
		quiet := Attenuate(s, 20)
		want := math.Pow(10, -20.0/20)
		assert.InDelta(t, want, rmsOf(quiet.Channel(0))/rmsOf(ref.Channel(0)), 1e-9)
	})

	t.Run("silence unchanged", func(t *testing.T) {
		z := Silence(10*time.Millisecond, testRate)
		assert.Equal(t, z, Attenuate(z, 10))
	})
}

func rmsOf(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

func TestRamp(t *testing.T) {
	const rampLen = 5 * time.Millisecond
	tone := Tone(500, 100*time.Millisecond, testRate)
	ramped, err := Ramp(tone, rampLen)
	require.NoError(t, err)
	rampFrames := FrameCount(rampLen, testRate)

	t.Run("edges silenced", func(t *testing.T) {
		assert.LessOrEqual(t, math.Abs(ramped.Channel(0)[0]), 1e-3)
		last := ramped.Frames() - 1
		assert.LessOrEqual(t, math.Abs(ramped.Channel(0)[last]), 1e-3)
	})

	t.Run("full amplitude after the rise", func(t *testing.T) {
		assert.Equal(t, tone.Channel(0)[rampFrames], ramped.Channel(0)[rampFrames])
	})

	t.Run("sustain untouched", func(t *testing.T) {
		for k := rampFrames; k < ramped.Frames()-rampFrames; k++ {
			require.Equal(t, tone.Channel(0)[k], ramped.Channel(0)[k], "k=%d", k)
		}
	})

	t.Run("envelope shape", func(t *testing.T) {
		for _, k := range []int{1, rampFrames / 2, rampFrames - 1} {
			env := 0.5 - 0.5*math.Cos(math.Pi*float64(k)/float64(rampFrames))
			require.InDelta(t, tone.Channel(0)[k]*env, ramped.Channel(0)[k], 1e-12, "k=%d", k)
		}
	})

	t.Run("too short", func(t *testing.T) {
		short := Tone(500, 8*time.Millisecond, testRate)
		_, err := Ramp(short, rampLen)
		assert.ErrorIs(t, err, ErrDurationTooShort)
	})
}

func TestRampOneSided(t *testing.T) {
	tone := Tone(500, 50*time.Millisecond, testRate)

	on, err := RampOn(tone, 5*time.Millisecond)
	require.NoError(t, err)
	assert.LessOrEqual(t, math.Abs(on.Channel(0)[0]), 1e-3)
	assert.Equal(t, tone.Channel(0)[on.Frames()-1], on.Channel(0)[on.Frames()-1])

	off, err := RampOff(tone, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, tone.Channel(0)[0], off.Channel(0)[0])
	assert.LessOrEqual(t, math.Abs(off.Channel(0)[off.Frames()-1]), 1e-3)
}

func TestFadeTo(t *testing.T) {
	const overlap = 50 * time.Millisecond
	a := Tone(440, time.Second, testRate)
	b := Tone(660, time.Second, testRate)

	faded, err := FadeTo(a, b, overlap)
	require.NoError(t, err)

	t.Run("duration subtracts overlap", func(t *testing.T) {
		assert.Equal(t, 2*time.Second-overlap, faded.Duration())
	})

	t.Run("head is a alone", func(t *testing.T) {
		assert.Equal(t, a.Channel(0)[0], faded.Channel(0)[0])
		mid := FrameCount(500*time.Millisecond, testRate)
		assert.Equal(t, a.Channel(0)[mid], faded.Channel(0)[mid])
	})

	t.Run("tail is b alone", func(t *testing.T) {
		// Past the crossfade the output is b shifted by dur(a)-overlap.
		shiftFrames := FrameCount(time.Second-overlap, testRate)
		k := faded.Frames() - 100
		assert.InDelta(t, b.Channel(0)[k-shiftFrames], faded.Channel(0)[k], 1e-12)
	})
}
