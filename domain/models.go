package domain

import (
	"math"
	"path/filepath"
	"strings"
)

// UnknownArtist is shown until a track's tags provide an artist
const UnknownArtist = "Unknown Artist"

// File is one entry of a file selection
type File struct {
	Name      string // base name including extension
	Path      string
	MediaType string // e.g. "audio/mpeg"
	Size      int64
}

// IsAudio reports whether the file's media type indicates audio
func (f File) IsAudio() bool {
	return strings.HasPrefix(strings.ToLower(f.MediaType), "audio/")
}

// DisplayName returns the file name with its extension stripped
func (f File) DisplayName() string {
	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Track represents one playable entry of the playlist
type Track struct {
	Source   *SourceHandle
	Title    string
	Artist   string
	AlbumArt string  // data URI, empty when the file has no embedded picture
	Duration float64 // in seconds, NaN until probed
	File     File
}

// NewTrack builds a track carrying the default display metadata for file
func NewTrack(file File) Track {
	return Track{
		Source:   NewSourceHandle(file.Path),
		Title:    file.DisplayName(),
		Artist:   UnknownArtist,
		Duration: math.NaN(),
		File:     file,
	}
}

// HasDuration reports whether the track's duration has been probed
func (t Track) HasDuration() bool {
	return !math.IsNaN(t.Duration) && t.Duration > 0
}

// Metadata is the display information supplied by tag extraction
type Metadata struct {
	Title    string
	Artist   string
	AlbumArt string
}

// PlaybackState is the playback controller's state
type PlaybackState int

const (
	StateEmpty PlaybackState = iota
	StatePaused
	StatePlaying
)

func (s PlaybackState) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "empty"
	}
}
