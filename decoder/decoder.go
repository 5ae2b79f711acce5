// Package decoder opens audio streams with beep's format decoders.
package decoder

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// ErrUnsupportedFormat is returned for files beep cannot decode
var ErrUnsupportedFormat = errors.New("unsupported audio format")

const (
	extMP3  = ".mp3"
	extWAV  = ".wav"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extOGA  = ".oga"
)

// Supported reports whether path has an extension beep can decode
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extWAV, extFLAC, extOGG, extOGA:
		return true
	}
	return false
}

// Decode picks a decoder from path's extension. The returned streamer owns rc.
func Decode(rc io.ReadCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		s   beep.StreamSeekCloser
		f   beep.Format
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3:
		s, f, err = mp3.Decode(rc)
	case extWAV:
		s, f, err = wav.Decode(rc)
	case extFLAC:
		s, f, err = flac.Decode(rc)
	case extOGG, extOGA:
		s, f, err = vorbis.Decode(rc)
	default:
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	if err != nil {
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return s, f, nil
}

// Length returns the stream duration, or 0 when the decoder cannot tell
func Length(s beep.StreamSeekCloser, f beep.Format) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return f.SampleRate.D(s.Len())
}
