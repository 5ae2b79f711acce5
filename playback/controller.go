package playback

import (
	"context"
	"log"
	"math"

	"github.com/yhkl-dev/rainplayer/domain"
	"github.com/yhkl-dev/rainplayer/player"
	"github.com/yhkl-dev/rainplayer/playlist"
)

// Controller drives the player from user commands and player events.
// It is not safe for concurrent use; call it from the UI goroutine.
type Controller struct {
	store   *playlist.Store
	player  player.Player
	display Display
	loader  *Loader

	state    domain.PlaybackState
	duration float64
	volume   float64
}

// NewController creates a controller in the Empty state and applies the initial volume
func NewController(store *playlist.Store, plr player.Player, display Display, volume float64) *Controller {
	c := &Controller{
		store:    store,
		player:   plr,
		display:  display,
		loader:   NewLoader(store, plr, display),
		state:    domain.StateEmpty,
		duration: math.NaN(),
	}
	c.SetVolume(volume)
	display.ShowState(c.state)
	return c
}

// State returns the playback state
func (c *Controller) State() domain.PlaybackState {
	return c.state
}

// Volume returns the volume fraction last applied
func (c *Controller) Volume() float64 {
	return c.volume
}

// Load loads the track at index paused. Out of range indexes change nothing.
func (c *Controller) Load(index int) bool {
	if !c.loader.Load(index) {
		return false
	}
	track, _ := c.store.Get(index)
	c.duration = track.Duration
	c.setState(domain.StatePaused)
	return true
}

// Play starts the loaded track
func (c *Controller) Play() {
	if c.state == domain.StateEmpty || c.loader.Loaded() == nil {
		return
	}
	if err := c.player.Play(); err != nil {
		log.Printf("Error starting playback: %v", err)
		return
	}
	c.setState(domain.StatePlaying)
}

// Pause pauses playback
func (c *Controller) Pause() {
	if c.state != domain.StatePlaying {
		return
	}
	if err := c.player.Pause(); err != nil {
		log.Printf("Error pausing playback: %v", err)
	}
	c.setState(domain.StatePaused)
}

// Toggle switches between playing and paused
func (c *Controller) Toggle() {
	if c.state == domain.StatePlaying {
		c.Pause()
		return
	}
	c.Play()
}

// PlayIndex loads index and starts it
func (c *Controller) PlayIndex(index int) {
	if c.Load(index) {
		c.Play()
	}
}

// Next moves to the following track, wrapping to the first
func (c *Controller) Next() {
	c.step(1)
}

// Previous moves to the preceding track, wrapping to the last
func (c *Controller) Previous() {
	c.step(-1)
}

func (c *Controller) step(delta int) {
	n := c.store.Len()
	if n == 0 {
		return
	}
	wasPlaying := c.state == domain.StatePlaying
	c.Load((c.store.Current() + delta + n) % n)
	if wasPlaying {
		c.Play()
	}
}

// Seek jumps to fraction of the track's duration
func (c *Controller) Seek(fraction float64) {
	if c.loader.Loaded() == nil || !validDuration(c.duration) {
		return
	}
	pos := clamp(fraction) * c.duration
	if err := c.player.Seek(pos); err != nil {
		log.Printf("Error seeking: %v", err)
		return
	}
	c.display.ShowTime(pos)
	c.display.ShowProgress(pos / c.duration)
}

// SetVolume sets the output volume, clamped to [0, 1]
func (c *Controller) SetVolume(fraction float64) {
	c.volume = clamp(fraction)
	if err := c.player.SetVolume(c.volume); err != nil {
		log.Printf("Error setting volume: %v", err)
	}
	c.display.ShowVolume(c.volume)
}

// HandleEvent applies a player event. Events from any playback other than
// the latest load are stale and dropped, even for the same source.
func (c *Controller) HandleEvent(ev player.Event) {
	if !c.loader.Current(ev) {
		return
	}

	switch ev.Kind {
	case player.EventTimeUpdate:
		if !validDuration(c.duration) && validDuration(ev.Duration) {
			c.setDuration(ev.Source, ev.Duration)
		}
		c.display.ShowTime(ev.Position)
		progress := 0.0
		if validDuration(c.duration) {
			progress = clamp(ev.Position / c.duration)
		}
		c.display.ShowProgress(progress)
	case player.EventDurationKnown:
		if validDuration(ev.Duration) {
			c.setDuration(ev.Source, ev.Duration)
		}
	case player.EventEnded:
		c.advance()
	}
}

// advance moves on to the next track after the current one ended
func (c *Controller) advance() {
	n := c.store.Len()
	if n == 0 {
		c.loader.Unload()
		c.setState(domain.StateEmpty)
		return
	}
	c.setState(domain.StatePaused)
	if c.Load((c.store.Current() + 1) % n) {
		c.Play()
	}
}

func (c *Controller) setDuration(src *domain.SourceHandle, seconds float64) {
	c.duration = seconds
	c.display.ShowDuration(seconds)
	if i := c.store.IndexOf(src); i >= 0 {
		if t, ok := c.store.Get(i); ok && !t.HasDuration() {
			c.store.ApplyDuration(src, seconds)
		}
	}
}

func (c *Controller) setState(s domain.PlaybackState) {
	if c.state == s {
		return
	}
	c.state = s
	c.display.ShowState(s)
}

// Run forwards player events to HandleEvent on the UI goroutine until ctx is done
func (c *Controller) Run(ctx context.Context, dispatch Dispatcher) {
	events := c.player.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			dispatch(func() {
				c.HandleEvent(ev)
			})
		case <-ctx.Done():
			return
		}
	}
}

// OnReplaced loads the first track of a new playlist, or empties the player
func (c *Controller) OnReplaced(tracks []domain.Track) {
	if len(tracks) == 0 {
		c.loader.Unload()
		c.duration = math.NaN()
		c.setState(domain.StateEmpty)
		return
	}
	c.Load(0)
}

// OnTrackUpdated refreshes the display when the current track changed
func (c *Controller) OnTrackUpdated(index int, track domain.Track) {
	if index != c.store.Current() {
		return
	}
	if !validDuration(c.duration) && track.HasDuration() {
		c.duration = track.Duration
	}
	c.loader.Refresh()
}

func (c *Controller) OnCurrentChanged(int) {}

func validDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

func clamp(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}
