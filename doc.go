// Package psykit is an experiment-control toolkit for psychoacoustic and
// behavioral research: a realtime audio engine that mixes and schedules
// short PCM sounds with sub-10 ms latency, the synthesis primitives that
// feed it, and a trial scheduler that sequences timed events against the
// engine and an input source.
//
// # Quick start
//
// Set up the sound system, synthesize a stimulus and play it:
//
//	if err := psykit.SetupSound(psykit.SoundConfig{Rate: 44100}); err != nil {
//	    log.Fatal(err)
//	}
//	defer psykit.CloseSound()
//
//	tone := sound.Tone(1000, time.Second, psykit.Samplerate())
//	stim, _ := sound.Ramp(tone, sound.DefaultRampLen)
//	if _, err := psykit.Play(stim, 0, 0); err != nil {
//	    log.Fatal(err)
//	}
//
// Play canonicalizes through a bounded LRU cache, so repeating a stimulus
// does not repeat the resampling and 16-bit conversion. Pass a nonzero
// time (on the engine clock, see Now) for scheduled presentation, or a
// 1-based channel to pin the sound to a specific queue.
//
// # Packages
//
//   - sound: the immutable Sound value model, DSP primitives (tones,
//     noise, harmonic complexes, Butterworth filters, ramps, mixing) and
//     canonicalization into the engine format.
//   - engine: the PortAudio-backed mixer with per-channel timed queues.
//   - trial: the moment/trial scheduler and the trial-block builders.
//   - record: the append-only CSV event recorder.
//   - soundfile: WAV/MP3/Ogg Vorbis loading and WAV saving.
//   - input: keyboard/mouse event sources (SDL2 and scripted).
//
// # Warnings and errors
//
// Operations that can fail return errors wrapping the package sentinel
// values. Conditions that never abort playback (late presentation,
// clipping, aliasing on downsample) surface as one-shot warning strings:
// LastWarning here, sound.LastWarning for the DSP layer.
package psykit
