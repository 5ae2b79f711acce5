// Package playlist holds the ordered track list and the current index.
package playlist

import (
	"log"
	"sync"

	"go.uber.org/multierr"

	"github.com/yhkl-dev/rainplayer/domain"
)

// Observer is notified after the store changes. Callbacks run without the
// store lock held, so they may call back into the store.
type Observer interface {
	OnReplaced(tracks []domain.Track)
	OnTrackUpdated(index int, track domain.Track)
	OnCurrentChanged(index int)
}

// Enricher receives freshly built tracks for background metadata extraction
type Enricher interface {
	Enrich(tracks []domain.Track)
}

// Store owns the playlist. Tracks keep selection order; current is -1
// exactly when the store is empty.
type Store struct {
	mu        sync.RWMutex
	tracks    []domain.Track
	current   int
	observers []Observer
	enricher  Enricher
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{current: -1}
}

// Subscribe registers an observer
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// SetEnricher sets where new tracks are sent for metadata extraction
func (s *Store) SetEnricher(e Enricher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enricher = e
}

// ReplaceAll discards the current playlist, releasing its source handles,
// and builds a new one from the audio files among files.
func (s *Store) ReplaceAll(files []domain.File) []domain.Track {
	tracks := make([]domain.Track, 0, len(files))
	for _, f := range files {
		if !f.IsAudio() {
			continue
		}
		tracks = append(tracks, domain.NewTrack(f))
	}

	s.mu.Lock()
	old := s.tracks
	s.tracks = tracks
	s.current = -1
	if len(tracks) > 0 {
		s.current = 0
	}
	current := s.current
	observers := s.snapshotObservers()
	enricher := s.enricher
	s.mu.Unlock()

	snapshot := copyTracks(tracks)
	for _, o := range observers {
		o.OnReplaced(copyTracks(snapshot))
	}
	for _, o := range observers {
		o.OnCurrentChanged(current)
	}

	// observers have moved playback off the old sources by now
	if err := release(old); err != nil {
		log.Printf("playlist: releasing sources: %v", err)
	}
	if enricher != nil {
		enricher.Enrich(snapshot)
	}
	return snapshot
}

// ApplyMetadata overwrites title, artist and album art of the track owning h.
// It returns false, changing nothing, if h is not in the playlist.
func (s *Store) ApplyMetadata(h *domain.SourceHandle, md domain.Metadata) bool {
	s.mu.Lock()
	i := s.indexOfLocked(h)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tracks[i].Title = md.Title
	s.tracks[i].Artist = md.Artist
	s.tracks[i].AlbumArt = md.AlbumArt
	track := s.tracks[i]
	observers := s.snapshotObservers()
	s.mu.Unlock()

	for _, o := range observers {
		o.OnTrackUpdated(i, track)
	}
	return true
}

// ApplyDuration records the probed duration of the track owning h
func (s *Store) ApplyDuration(h *domain.SourceHandle, seconds float64) bool {
	s.mu.Lock()
	i := s.indexOfLocked(h)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tracks[i].Duration = seconds
	track := s.tracks[i]
	observers := s.snapshotObservers()
	s.mu.Unlock()

	for _, o := range observers {
		o.OnTrackUpdated(i, track)
	}
	return true
}

// Get returns the track at index
func (s *Store) Get(index int) (domain.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.tracks) {
		return domain.Track{}, false
	}
	return s.tracks[index], true
}

// Len returns the number of tracks
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Current returns the current index, -1 when empty
func (s *Store) Current() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// CurrentTrack returns the track at the current index
func (s *Store) CurrentTrack() (domain.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current < 0 || s.current >= len(s.tracks) {
		return domain.Track{}, false
	}
	return s.tracks[s.current], true
}

// SetCurrent moves the current index. Out of range indexes are rejected.
func (s *Store) SetCurrent(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.tracks) {
		s.mu.Unlock()
		return false
	}
	changed := s.current != index
	s.current = index
	observers := s.snapshotObservers()
	s.mu.Unlock()

	if changed {
		for _, o := range observers {
			o.OnCurrentChanged(index)
		}
	}
	return true
}

// IndexOf returns the index of the track owning h, or -1
func (s *Store) IndexOf(h *domain.SourceHandle) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(h)
}

// Tracks returns a copy of the playlist
func (s *Store) Tracks() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTracks(s.tracks)
}

// Close releases every source handle and empties the store
func (s *Store) Close() error {
	s.mu.Lock()
	old := s.tracks
	s.tracks = nil
	s.current = -1
	s.mu.Unlock()
	return release(old)
}

func (s *Store) indexOfLocked(h *domain.SourceHandle) int {
	for i := range s.tracks {
		if s.tracks[i].Source.Same(h) {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotObservers() []Observer {
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}

func release(tracks []domain.Track) error {
	var err error
	for _, t := range tracks {
		if t.Source != nil {
			err = multierr.Append(err, t.Source.Release())
		}
	}
	return err
}

func copyTracks(tracks []domain.Track) []domain.Track {
	out := make([]domain.Track, len(tracks))
	copy(out, tracks)
	return out
}
