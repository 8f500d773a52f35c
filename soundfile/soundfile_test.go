package soundfile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psylab/psykit/sound"
)

const testRate = 44100

func TestWAVRoundTrip(t *testing.T) {
	tone := sound.Tone(440, 100*time.Millisecond, testRate)
	scaled := sound.Attenuate(tone, 20)

	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, Save(path, scaled))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, testRate, loaded.Rate())
	assert.Equal(t, 2, loaded.Channels(), "saved files are canonical stereo")
	assert.Equal(t, scaled.Frames(), loaded.Frames())

	// Within 16-bit quantization of the original mono signal on both
	// channels.
	for _, k := range []int{0, 100, 1000, loaded.Frames() - 1} {
		want := scaled.Channel(0)[k]
		require.InDelta(t, want, loaded.Channel(0)[k], 1.5/32768, "left k=%d", k)
		require.InDelta(t, want, loaded.Channel(1)[k], 1.5/32768, "right k=%d", k)
	}
}

func TestWAVRoundTripStereo(t *testing.T) {
	l := sound.Tone(440, 10*time.Millisecond, testRate)
	r := sound.Tone(880, 10*time.Millisecond, testRate)
	stereo, err := sound.LeftRight(l, r)
	require.NoError(t, err)
	quiet := sound.Attenuate(stereo, 25)

	path := filepath.Join(t.TempDir(), "stereo.wav")
	require.NoError(t, Save(path, quiet))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, quiet.Frames(), loaded.Frames())
	for _, k := range []int{1, 50, 200} {
		require.InDelta(t, quiet.Channel(0)[k], loaded.Channel(0)[k], 1.5/32768)
		require.InDelta(t, quiet.Channel(1)[k], loaded.Channel(1)[k], 1.5/32768)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	_, err := Load("stimulus.xyz")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.wav"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("wav")
	assert.False(t, ok, "fresh registry is empty")

	r.Register("WAV", WAVDecoder{})
	_, ok = r.Get("wav")
	assert.True(t, ok, "extension lookup is case-insensitive")
}

func TestDefaultFormatsRegistered(t *testing.T) {
	for _, ext := range []string{"wav", "mp3", "ogg"} {
		_, ok := defaultRegistry.Get(ext)
		assert.True(t, ok, "%s decoder missing", ext)
	}
}
