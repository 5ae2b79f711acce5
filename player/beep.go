package player

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"github.com/yhkl-dev/rainplayer/decoder"
	"github.com/yhkl-dev/rainplayer/domain"
)

// beepTrack bundles the resources of the loaded source
type beepTrack struct {
	id       PlaybackID
	src      *domain.SourceHandle
	streamer beep.StreamSeekCloser
	format   beep.Format
}

func (t *beepTrack) Close() {
	if t.streamer != nil {
		t.streamer.Close()
	}
}

// BeepPlayer implements the Player interface with beep and the system speaker
type BeepPlayer struct {
	mu sync.Mutex

	initialized bool
	sampleRate  beep.SampleRate
	current     *beepTrack
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	volumeLevel float64
	playbacks   PlaybackID

	events chan Event
	done   <-chan struct{}
	cancel context.CancelFunc
}

// NewBeepPlayer creates a player that reports time updates every tick
func NewBeepPlayer(ctx context.Context, tick time.Duration) *BeepPlayer {
	ctx, cancel := context.WithCancel(ctx)
	p := &BeepPlayer{
		sampleRate:  beep.SampleRate(44100),
		volumeLevel: 1.0,
		events:      make(chan Event, 64),
		done:        ctx.Done(),
		cancel:      cancel,
	}
	go p.tickLoop(ctx, tick)
	return p
}

// initSpeaker initializes the speaker if not already done.
// Must be called with the lock held.
func (p *BeepPlayer) initSpeaker() error {
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to init speaker: %w", err)
	}
	p.initialized = true
	return nil
}

func (p *BeepPlayer) Load(src *domain.SourceHandle) (PlaybackID, error) {
	rc, err := src.Open()
	if err != nil {
		return 0, err
	}
	streamer, format, err := decoder.Decode(rc, src.Path())
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.initSpeaker(); err != nil {
		streamer.Close()
		return 0, err
	}
	p.stopLocked()

	p.playbacks++
	id := p.playbacks
	track := &beepTrack{id: id, src: src, streamer: streamer, format: format}
	var s beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		s = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}
	p.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.applyVolumeLocked()
	p.current = track

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		// runs on the speaker goroutine; hand off so Load can be called from the handler
		go p.send(Event{Kind: EventEnded, Playback: id, Source: src})
	})))

	if d := decoder.Length(streamer, format); d > 0 {
		p.trySend(Event{Kind: EventDurationKnown, Playback: id, Source: src, Duration: d.Seconds()})
	}
	return id, nil
}

func (p *BeepPlayer) Play() error {
	return p.setPaused(false)
}

func (p *BeepPlayer) Pause() error {
	return p.setPaused(true)
}

func (p *BeepPlayer) setPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return ErrNotLoaded
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

func (p *BeepPlayer) Seek(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return ErrNotLoaded
	}
	t := p.current
	n := t.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if n < 0 {
		n = 0
	}
	if l := t.streamer.Len(); l > 0 && n >= l {
		n = l - 1
	}

	speaker.Lock()
	defer speaker.Unlock()
	if err := t.streamer.Seek(n); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

func (p *BeepPlayer) SetVolume(fraction float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volumeLevel = math.Max(0, math.Min(1, fraction))
	p.applyVolumeLocked()
	return nil
}

// applyVolumeLocked maps the linear level onto beep's logarithmic volume
func (p *BeepPlayer) applyVolumeLocked() {
	if p.volume == nil {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	if p.volumeLevel <= 0 {
		p.volume.Silent = true
		return
	}
	p.volume.Silent = false
	p.volume.Volume = math.Log2(p.volumeLevel)
}

func (p *BeepPlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *BeepPlayer) positionLocked() float64 {
	if p.current == nil {
		return 0
	}
	speaker.Lock()
	pos := p.current.streamer.Position()
	speaker.Unlock()
	return p.current.format.SampleRate.D(pos).Seconds()
}

func (p *BeepPlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.durationLocked()
}

func (p *BeepPlayer) durationLocked() float64 {
	if p.current == nil {
		return math.NaN()
	}
	d := decoder.Length(p.current.streamer, p.current.format)
	if d <= 0 {
		return math.NaN()
	}
	return d.Seconds()
}

func (p *BeepPlayer) Events() <-chan Event {
	return p.events
}

func (p *BeepPlayer) Close() error {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// stopLocked stops playback (must be called with lock held)
func (p *BeepPlayer) stopLocked() {
	if p.initialized {
		speaker.Clear()
	}
	if p.current != nil {
		p.current.Close()
	}
	p.current = nil
	p.ctrl = nil
	p.volume = nil
}

func (p *BeepPlayer) tickLoop(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			if p.ctrl == nil || p.current == nil {
				p.mu.Unlock()
				continue
			}
			speaker.Lock()
			paused := p.ctrl.Paused
			speaker.Unlock()
			if paused {
				p.mu.Unlock()
				continue
			}
			ev := Event{
				Kind:     EventTimeUpdate,
				Playback: p.current.id,
				Source:   p.current.src,
				Position: p.positionLocked(),
				Duration: p.durationLocked(),
			}
			p.mu.Unlock()
			p.trySend(ev)
		case <-ctx.Done():
			return
		}
	}
}

// trySend drops the event when nobody keeps up; time updates are periodic anyway
func (p *BeepPlayer) trySend(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}

// send blocks until the event is taken or the player is closed
func (p *BeepPlayer) send(ev Event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}
