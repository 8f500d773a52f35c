// Command psykit-play synthesizes or loads a sound and plays it through
// the realtime engine. Useful for checking the audio path and latency on a
// new machine before running an experiment.
//
// Usage:
//
//	psykit-play -freq 1000 -dur 1s -level 20
//	psykit-play -file stimulus.wav
package main

import (
	"flag"
	"log"
	"time"

	"github.com/psylab/psykit"
	"github.com/psylab/psykit/sound"
	"github.com/psylab/psykit/soundfile"
)

func main() {
	var (
		file     = flag.String("file", "", "audio file to play (wav, mp3, ogg); empty synthesizes a tone")
		freq     = flag.Float64("freq", 1000, "tone frequency in Hz")
		dur      = flag.Duration("dur", time.Second, "tone duration")
		level    = flag.Float64("level", 20, "attenuation in dB below unit RMS")
		rate     = flag.Int("rate", 44100, "output sample rate in Hz")
		channels = flag.Int("channels", 8, "number of playback channels")
	)
	flag.Parse()

	if err := psykit.SetupSound(psykit.SoundConfig{
		Rate:        *rate,
		NumChannels: *channels,
	}); err != nil {
		log.Fatalf("sound setup: %v", err)
	}
	defer func() {
		if err := psykit.CloseSound(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	s, err := stimulus(*file, *freq, *dur, *rate, *level)
	if err != nil {
		log.Fatalf("stimulus: %v", err)
	}

	channel, err := psykit.Play(s, 0, 0)
	if err != nil {
		log.Fatalf("play: %v", err)
	}
	log.Printf("playing %v on channel %d, latency %v",
		s.Duration(), channel, psykit.CurrentSoundLatency())
	if w := sound.LastWarning(); w != "" {
		log.Printf("warning: %s", w)
	}

	time.Sleep(s.Duration() + psykit.CurrentSoundLatency())
	if w := psykit.LastWarning(); w != "" {
		log.Printf("warning: %s", w)
	}
}

// stimulus loads the named file, or synthesizes a ramped, attenuated tone.
func stimulus(file string, freq float64, dur time.Duration, rate int, level float64) (*sound.Sound, error) {
	if file != "" {
		return soundfile.Load(file)
	}
	tone := sound.Tone(sound.Freq(freq), dur, rate)
	ramped, err := sound.Ramp(tone, sound.DefaultRampLen)
	if err != nil {
		return nil, err
	}
	return sound.Attenuate(ramped, level), nil
}
