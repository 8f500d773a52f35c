package soundfile

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/psylab/psykit/sound"
)

// wavChunkFrames is the pull granularity of the WAV source.
const wavChunkFrames = 4096

// WAVDecoder decodes RIFF/WAVE PCM.
type WAVDecoder struct{}

type wavSource struct {
	dec      *wav.Decoder
	rate     int
	channels int
	scale    float64
	buf      *audio.IntBuffer
}

// Decode validates the container and reads its format chunk. The reader
// must also seek; Load always hands in an *os.File.
func (WAVDecoder) Decode(r io.Reader) (Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, fmt.Errorf("wav decoding requires a seekable reader")
	}
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	format := dec.Format()
	bitDepth := int(dec.BitDepth)
	return &wavSource{
		dec:      dec,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		scale:    1.0 / float64(int(1)<<(bitDepth-1)),
		buf: &audio.IntBuffer{
			Data:   make([]int, wavChunkFrames*format.NumChannels),
			Format: format,
		},
	}, nil
}

func (s *wavSource) SampleRate() int { return s.rate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float64) (int, error) {
	want := min(len(dst), cap(s.buf.Data))
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("wav read: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := range n {
		dst[i] = float64(s.buf.Data[i]) * s.scale
	}
	return n, nil
}

// Save writes a sound as 16-bit stereo PCM WAV at its own sample rate,
// canonicalizing first so clipping and stereo expansion match what the
// engine would play.
func Save(path string, s *sound.Sound) error {
	pcm, err := sound.Canonicalize(s, s.Rate())
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, pcm.Rate, 16, 2, 1)
	data := make([]int, 2*pcm.Frames)
	for i := range pcm.Frames {
		data[2*i] = int(pcm.Data[i])
		data[2*i+1] = int(pcm.Data[pcm.Frames+i])
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 2, SampleRate: pcm.Rate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return f.Close()
}
