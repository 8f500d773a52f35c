package soundfile

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// VorbisDecoder decodes Ogg Vorbis streams.
type VorbisDecoder struct{}

type vorbisSource struct {
	r   *oggvorbis.Reader
	buf []float32
}

func (VorbisDecoder) Decode(r io.Reader) (Source, error) {
	vr, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis decode: %w", err)
	}
	return &vorbisSource{r: vr}, nil
}

func (s *vorbisSource) SampleRate() int { return s.r.SampleRate() }
func (s *vorbisSource) Channels() int   { return s.r.Channels() }
func (s *vorbisSource) Close() error    { return nil }

func (s *vorbisSource) ReadSamples(dst []float64) (int, error) {
	if cap(s.buf) < len(dst) {
		s.buf = make([]float32, len(dst))
	}
	s.buf = s.buf[:len(dst)]

	n, err := s.r.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	for i := range n {
		dst[i] = float64(s.buf[i])
	}
	return n, nil
}
