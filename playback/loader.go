// Package playback binds the playlist to a player backend.
//
// Everything in this package runs on the UI goroutine. Work arriving from
// other goroutines (player events, metadata) is handed over through a
// Dispatcher first.
package playback

import (
	"errors"
	"log"
	"math"

	"github.com/yhkl-dev/rainplayer/domain"
	"github.com/yhkl-dev/rainplayer/player"
	"github.com/yhkl-dev/rainplayer/playlist"
)

// Display is the "now playing" surface
type Display interface {
	// ShowTrack shows title, artist and art of the track at index.
	// index is -1 with a zero Track when nothing is loaded.
	ShowTrack(index int, track domain.Track)
	ShowState(state domain.PlaybackState)
	ShowTime(position float64)
	ShowProgress(fraction float64)
	// ShowDuration shows the total time, NaN while unknown
	ShowDuration(seconds float64)
	ShowVolume(fraction float64)
}

// Dispatcher runs fn on the UI goroutine
type Dispatcher func(fn func())

// Loader points the player at a playlist entry and refreshes the display
type Loader struct {
	store   *playlist.Store
	player  player.Player
	display Display

	loaded   *domain.SourceHandle
	playback player.PlaybackID
}

// NewLoader creates a loader
func NewLoader(store *playlist.Store, plr player.Player, display Display) *Loader {
	return &Loader{store: store, player: plr, display: display}
}

// Load makes index current and hands its source to the player without
// starting playback. Out of range indexes are ignored and return false.
func (l *Loader) Load(index int) bool {
	track, ok := l.store.Get(index)
	if !ok {
		return false
	}

	l.store.SetCurrent(index)
	id, err := l.player.Load(track.Source)
	if err != nil {
		log.Printf("Error loading %s: %v", track.File.Path, err)
		l.loaded = nil
		l.playback = 0
		// keep the previous source from playing under the new title
		l.pause()
	} else {
		l.loaded = track.Source
		l.playback = id
	}

	l.display.ShowTrack(index, track)
	l.display.ShowTime(0)
	l.display.ShowProgress(0)
	l.display.ShowDuration(track.Duration)
	return true
}

// Refresh re-displays the current track, e.g. after its metadata arrived
func (l *Loader) Refresh() {
	index := l.store.Current()
	track, ok := l.store.Get(index)
	if !ok {
		return
	}
	l.display.ShowTrack(index, track)
	if track.HasDuration() {
		l.display.ShowDuration(track.Duration)
	}
}

// Loaded returns the source the player currently holds, nil if none
func (l *Loader) Loaded() *domain.SourceHandle {
	return l.loaded
}

// Current reports whether ev belongs to the latest successful Load
func (l *Loader) Current(ev player.Event) bool {
	return l.loaded != nil && ev.Playback == l.playback && ev.Source.Same(l.loaded)
}

// Unload forgets the loaded source and clears the display
func (l *Loader) Unload() {
	if l.loaded != nil {
		l.pause()
	}
	l.loaded = nil
	l.playback = 0
	l.display.ShowTrack(-1, domain.Track{})
	l.display.ShowTime(0)
	l.display.ShowProgress(0)
	l.display.ShowDuration(math.NaN())
}

func (l *Loader) pause() {
	if err := l.player.Pause(); err != nil && !errors.Is(err, player.ErrNotLoaded) {
		log.Printf("Error pausing playback: %v", err)
	}
}
