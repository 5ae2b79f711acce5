package player

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/wildeyedskies/go-mpv/mpv"

	"github.com/yhkl-dev/rainplayer/domain"
	"github.com/yhkl-dev/rainplayer/mpvplayer"
)

// MPVPlayer implements the Player interface using MPV media player
type MPVPlayer struct {
	instance *mpvplayer.Mpvplayer

	mu      sync.Mutex
	src      *domain.SourceHandle
	playback PlaybackID
	loading  bool // loadfile issued, FILE_LOADED not yet seen
	paused   bool

	events chan Event
	cancel context.CancelFunc
}

// NewMPVPlayer creates a new MPVPlayer instance
func NewMPVPlayer(ctx context.Context, tick time.Duration) (*MPVPlayer, error) {
	mpvInstance, err := mpvplayer.CreateMPVInstance()
	if err != nil {
		return nil, fmt.Errorf("failed to create MPV instance: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &MPVPlayer{
		instance: mpvplayer.New(ctx, mpvInstance),
		paused:   true,
		events:   make(chan Event, 64),
		cancel:   cancel,
	}
	go p.eventLoop(ctx)
	go p.tickLoop(ctx, tick)
	return p, nil
}

func (p *MPVPlayer) Load(src *domain.SourceHandle) (PlaybackID, error) {
	if src.Released() {
		return 0, fmt.Errorf("load %s: %w", src.Path(), domain.ErrReleased)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.instance.LoadPaused(src.Path()); err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", src.Path(), err)
	}
	p.playback++
	p.src = src
	p.loading = true
	p.paused = true
	return p.playback, nil
}

func (p *MPVPlayer) Play() error {
	return p.setPaused(false)
}

func (p *MPVPlayer) Pause() error {
	return p.setPaused(true)
}

func (p *MPVPlayer) setPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src == nil {
		return ErrNotLoaded
	}
	if err := p.instance.SetPause(paused); err != nil {
		return err
	}
	p.paused = paused
	return nil
}

func (p *MPVPlayer) Seek(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src == nil || p.loading {
		return ErrNotLoaded
	}
	return p.instance.SeekAbsolute(seconds)
}

func (p *MPVPlayer) SetVolume(fraction float64) error {
	return p.instance.SetVolume(math.Max(0, math.Min(1, fraction)) * 100)
}

func (p *MPVPlayer) Position() float64 {
	pos, err := p.instance.GetProgress()
	if err != nil {
		return 0
	}
	return pos
}

func (p *MPVPlayer) Duration() float64 {
	d, err := p.instance.GetDuration()
	if err != nil || d <= 0 {
		return math.NaN()
	}
	return d
}

func (p *MPVPlayer) Events() <-chan Event {
	return p.events
}

// Close performs cleanup operations
func (p *MPVPlayer) Close() error {
	p.cancel()
	if p.instance != nil && p.instance.Mpv != nil {
		if err := p.instance.Stop(); err != nil {
			log.Printf("mpv stop: %v", err)
		}
		p.instance.Command([]string{"quit"})
		p.instance.TerminateDestroy()
	}
	return nil
}

func (p *MPVPlayer) eventLoop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("mpv event loop panic recovered: %v", r)
		}
	}()

	for {
		select {
		case e, ok := <-p.instance.EventChannel:
			if !ok {
				return
			}
			p.handle(ctx, e)
		case <-ctx.Done():
			return
		}
	}
}

func (p *MPVPlayer) handle(ctx context.Context, e *mpv.Event) {
	p.mu.Lock()
	src, id := p.src, p.playback
	switch e.Event_Id {
	case mpv.EVENT_FILE_LOADED:
		p.loading = false
		p.mu.Unlock()
		if d := p.Duration(); !math.IsNaN(d) {
			p.send(ctx, Event{Kind: EventDurationKnown, Playback: id, Source: src, Duration: d})
		}
		return
	case mpv.EVENT_END_FILE:
		// the previous file ends when loadfile replaces it
		stale := p.loading || src == nil
		p.mu.Unlock()
		if !stale {
			p.send(ctx, Event{Kind: EventEnded, Playback: id, Source: src})
		}
		return
	}
	p.mu.Unlock()
}

func (p *MPVPlayer) send(ctx context.Context, ev Event) {
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}

func (p *MPVPlayer) tickLoop(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			src, id, idle := p.src, p.playback, p.loading || p.paused
			p.mu.Unlock()
			if src == nil || idle {
				continue
			}
			pos, err := p.instance.GetProgress()
			if err != nil {
				continue
			}
			select {
			case p.events <- Event{Kind: EventTimeUpdate, Playback: id, Source: src, Position: pos, Duration: p.Duration()}:
			default:
			}
		case <-ctx.Done():
			return
		}
	}
}
