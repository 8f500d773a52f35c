package psykit

import (
	"fmt"
	"sync"
	"time"

	"github.com/psylab/psykit/engine"
	"github.com/psylab/psykit/sound"
)

// Version identifies the toolkit in recorded data files.
const Version = "0.9.0"

// SoundConfig mirrors engine.Config for the facade.
type SoundConfig = engine.Config

// The sound system is a process-wide singleton: one engine, one
// canonicalization cache, guarded from the control thread.
var (
	soundMu sync.Mutex
	eng     *engine.Engine
	cache   = sound.NewCache(sound.DefaultCacheCapacity)
)

// SetupSound opens the audio output. Calling it while a previous setup is
// live closes and reopens the engine; either way the canonicalization
// cache is flushed, since a new output rate invalidates every cached
// buffer.
func SetupSound(cfg SoundConfig) error {
	soundMu.Lock()
	defer soundMu.Unlock()

	if eng != nil {
		if err := eng.Close(); err != nil {
			return err
		}
		eng = nil
	}
	cache.Flush()

	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	eng = e
	return nil
}

// CloseSound stops playback and releases the device.
func CloseSound() error {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return engine.ErrNotReady
	}
	err := eng.Close()
	eng = nil
	cache.Flush()
	return err
}

// Samplerate returns the engine output rate, or 0 before setup.
func Samplerate() int {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return 0
	}
	return eng.SampleRate()
}

// Now returns the engine's monotonic stream clock.
func Now() time.Duration {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return 0
	}
	return eng.Now()
}

// Play canonicalizes s through the cache and enqueues it. when == 0 plays
// as soon as possible; when > 0 schedules on the engine clock. channel ==
// 0 auto-assigns. Returns the channel played on.
func Play(s *sound.Sound, when time.Duration, channel int) (int, error) {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return 0, engine.ErrNotReady
	}

	pcm, err := cache.Canonical(soundKey(s), eng.SampleRate(), func() (*sound.Sound, error) {
		return s, nil
	})
	if err != nil {
		return 0, err
	}
	return eng.Play(pcm, when, channel)
}

// PlayFile loads, canonicalizes and plays an audio file, keyed in the
// cache by its path.
func PlayFile(path string, when time.Duration, channel int, load func(string) (*sound.Sound, error)) (int, error) {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return 0, engine.ErrNotReady
	}

	pcm, err := cache.Canonical(path, eng.SampleRate(), func() (*sound.Sound, error) {
		return load(path)
	})
	if err != nil {
		return 0, err
	}
	return eng.Play(pcm, when, channel)
}

// soundKey derives the cache identity of an in-memory sound from its
// backing buffer.
func soundKey(s *sound.Sound) string {
	if s.Frames() == 0 {
		return fmt.Sprintf("sound:empty:%d:%d", s.Channels(), s.Rate())
	}
	return fmt.Sprintf("sound:%p:%d:%d", &s.Channel(0)[0], s.Frames(), s.Rate())
}

// PauseSounds suspends playback on a channel, or on every queue when
// channel < 0.
func PauseSounds(channel int, isStream bool) error {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return engine.ErrNotReady
	}
	return eng.Pause(channel, isStream)
}

// ResumeSounds reverses PauseSounds.
func ResumeSounds(channel int, isStream bool) error {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return engine.ErrNotReady
	}
	return eng.Resume(channel, isStream)
}

// StopSounds discards queued sounds on a channel, or everywhere when
// channel < 0.
func StopSounds(channel int) error {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return engine.ErrNotReady
	}
	return eng.Stop(channel)
}

// CurrentSoundLatency estimates the current play-to-audible delay.
func CurrentSoundLatency() time.Duration {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return 0
	}
	return eng.CurrentLatency()
}

// LastWarning returns and clears the engine's pending warning.
func LastWarning() string {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return ""
	}
	return eng.LastWarning()
}

// LastError returns the engine's most recent structured failure.
func LastError() error {
	soundMu.Lock()
	defer soundMu.Unlock()
	if eng == nil {
		return engine.ErrNotReady
	}
	return eng.LastError()
}
