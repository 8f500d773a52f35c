// Package soundfile loads and saves audio containers for the toolkit:
// WAV, MP3 and Ogg Vorbis readers behind a pull Source interface, plus a
// 16-bit WAV writer for canonicalized sounds. Formats register by file
// extension, so experiment scripts just name a path.
package soundfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/psylab/psykit/sound"
)

// ErrUnknownFormat indicates a file extension with no registered decoder.
var ErrUnknownFormat = errors.New("unknown audio format")

// Source is a pull-based PCM stream decoded from a container.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int

	// Channels is the interleave width.
	Channels() int

	// ReadSamples fills dst with interleaved samples in [-1, 1] and
	// returns the count written; 0 with io.EOF ends the stream.
	ReadSamples(dst []float64) (int, error)

	Close() error
}

// Decoder constructs a Source from a container reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps file extensions (without dot, lower case) to decoders.
type Registry struct {
	mu     sync.Mutex
	codecs map[string]Decoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// Register installs a decoder for an extension.
func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[strings.ToLower(ext)] = d
}

// Get looks an extension up.
func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.codecs[strings.ToLower(ext)]
	return d, ok
}

// defaultRegistry serves Load; every built-in format registers here.
var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register("wav", WAVDecoder{})
	r.Register("mp3", MP3Decoder{})
	r.Register("ogg", VorbisDecoder{})
	return r
}()

// Load reads an audio file into a Sound, picking the decoder from the
// file extension.
func Load(path string) (*sound.Sound, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := defaultRegistry.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer src.Close()

	return drain(src)
}

// drain pulls a source to EOF and deinterleaves it into a Sound. Sources
// with more than two channels keep only the first two.
func drain(src Source) (*sound.Sound, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, fmt.Errorf("source reports %d channels", channels)
	}

	var interleaved []float64
	buf := make([]float64, 8192)
	for {
		n, err := src.ReadSamples(buf)
		interleaved = append(interleaved, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}

	frames := len(interleaved) / channels
	if channels == 1 {
		return sound.FromMono(interleaved[:frames], src.SampleRate())
	}
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range frames {
		left[i] = interleaved[i*channels]
		right[i] = interleaved[i*channels+1]
	}
	return sound.FromStereo(left, right, src.SampleRate())
}
