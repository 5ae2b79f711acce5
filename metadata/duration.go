package metadata

import (
	"context"
	"fmt"

	"github.com/yhkl-dev/rainplayer/decoder"
	"github.com/yhkl-dev/rainplayer/domain"
)

// Prober measures a track's duration in seconds
type Prober interface {
	Probe(ctx context.Context, track domain.Track) (float64, error)
}

// DecoderProber reads the stream length from beep's decoders
type DecoderProber struct{}

func NewDecoderProber() *DecoderProber {
	return &DecoderProber{}
}

func (p *DecoderProber) Probe(ctx context.Context, track domain.Track) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !decoder.Supported(track.File.Path) {
		return 0, fmt.Errorf("probe %s: %w", track.File.Name, decoder.ErrUnsupportedFormat)
	}

	rc, err := track.Source.Open()
	if err != nil {
		return 0, err
	}
	s, f, err := decoder.Decode(rc, track.File.Path)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	d := decoder.Length(s, f)
	if d <= 0 {
		return 0, fmt.Errorf("probe %s: unknown length", track.File.Name)
	}
	return d.Seconds(), nil
}
