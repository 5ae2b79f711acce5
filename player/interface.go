package player

import (
	"errors"

	"github.com/yhkl-dev/rainplayer/domain"
)

// ErrNotLoaded is returned by commands that need a loaded source
var ErrNotLoaded = errors.New("no source loaded")

// Player defines the interface for audio playback operations.
// This abstraction allows the controller to work with different backends (beep, MPV).
type Player interface {
	// Load points the player at src, stopping whatever was playing.
	// Playback does not start until Play is called. The returned id stamps
	// every event of this playback.
	Load(src *domain.SourceHandle) (PlaybackID, error)

	// Play starts or resumes playback of the loaded source
	Play() error

	// Pause pauses playback
	Pause() error

	// Seek moves playback to the given position in seconds
	Seek(seconds float64) error

	// SetVolume sets the output volume, 0.0 to 1.0
	SetVolume(fraction float64) error

	// Position returns the current playback position in seconds
	Position() float64

	// Duration returns the total duration in seconds, NaN while unknown
	Duration() float64

	// Events returns a channel for receiving player events
	Events() <-chan Event

	// Close stops playback and releases the backend
	Close() error
}

// PlaybackID tells apart successive loads, including loads of the same source
type PlaybackID uint64

// EventKind identifies a player notification
type EventKind int

const (
	// EventTimeUpdate is sent periodically while playing
	EventTimeUpdate EventKind = iota
	// EventDurationKnown is sent once the loaded source's duration is resolved
	EventDurationKnown
	// EventEnded is sent when playback reaches the end of the source
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventTimeUpdate:
		return "timeupdate"
	case EventDurationKnown:
		return "durationknown"
	case EventEnded:
		return "ended"
	}
	return "unknown"
}

// Event is a notification from the player about the source it was emitted for
type Event struct {
	Kind     EventKind
	Playback PlaybackID
	Source   *domain.SourceHandle
	Position float64
	Duration float64
}
