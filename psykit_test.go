package psykit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/psylab/psykit/engine"
	"github.com/psylab/psykit/sound"
)

// The device-independent surface: every operation on a torn-down sound
// system is a no-op reporting ErrNotReady, never a crash.
func TestFacadeBeforeSetup(t *testing.T) {
	s := sound.Tone(440, time.Millisecond, 44100)

	_, err := Play(s, 0, 0)
	assert.ErrorIs(t, err, engine.ErrNotReady)

	_, err = PlayFile("x.wav", 0, 0, nil)
	assert.ErrorIs(t, err, engine.ErrNotReady)

	assert.ErrorIs(t, PauseSounds(-1, false), engine.ErrNotReady)
	assert.ErrorIs(t, ResumeSounds(-1, false), engine.ErrNotReady)
	assert.ErrorIs(t, StopSounds(-1), engine.ErrNotReady)
	assert.ErrorIs(t, CloseSound(), engine.ErrNotReady)
	assert.ErrorIs(t, LastError(), engine.ErrNotReady)

	assert.Zero(t, Samplerate())
	assert.Zero(t, Now())
	assert.Zero(t, CurrentSoundLatency())
	assert.Empty(t, LastWarning())
}

func TestSoundKeyStableForSameBuffer(t *testing.T) {
	s := sound.Tone(440, time.Millisecond, 44100)
	assert.Equal(t, soundKey(s), soundKey(s))

	other := sound.Tone(440, time.Millisecond, 44100)
	assert.NotEqual(t, soundKey(s), soundKey(other),
		"distinct buffers must not collide")
}
