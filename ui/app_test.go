package ui

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhkl-dev/rainplayer/config"
	"github.com/yhkl-dev/rainplayer/domain"
	"github.com/yhkl-dev/rainplayer/library"
	"github.com/yhkl-dev/rainplayer/player"
	"github.com/yhkl-dev/rainplayer/playlist"
)

type stubPlayer struct {
	volume float64
	events chan player.Event
}

func (p *stubPlayer) Load(*domain.SourceHandle) (player.PlaybackID, error) { return 1, nil }
func (p *stubPlayer) Play() error { return nil }
func (p *stubPlayer) Pause() error { return nil }
func (p *stubPlayer) Seek(float64) error { return nil }
func (p *stubPlayer) SetVolume(f float64) error {
	p.volume = f
	return nil
}

func (p *stubPlayer) Position() float64 { return 0 }
func (p *stubPlayer) Duration() float64 { return math.NaN() }
func (p *stubPlayer) Events() <-chan player.Event { return p.events }
func (p *stubPlayer) Close() error { return nil }

func newTestApp(t *testing.T) (*App, *playlist.Store, *stubPlayer) {
	t.Helper()
	store := playlist.NewStore()
	plr := &stubPlayer{events: make(chan player.Event)}
	a := NewApp(context.Background(), config.DefaultConfig(), library.NewLocalLibrary(true), store, plr)
	return a, store, plr
}

func TestAppShowsLoadedTrack(t *testing.T) {
	a, store, plr := newTestApp(t)
	assert.InDelta(t, 0.8, plr.volume, 1e-9)
	assert.Contains(t, a.nowPlaying.GetText(true), "No tracks loaded")

	store.ReplaceAll([]domain.File{
		{Name: "intro.mp3", Path: "/music/intro.mp3", MediaType: "audio/mpeg"},
		{Name: "outro.mp3", Path: "/music/outro.mp3", MediaType: "audio/mpeg"},
	})

	text := a.nowPlaying.GetText(true)
	assert.Contains(t, text, "track 1/2")
	assert.Contains(t, text, "intro")
	assert.Contains(t, text, "PAUSED")
	assert.Equal(t, 0, a.playlistView.Active())
	assert.Equal(t, "0:00 / 0:00", a.timeText.GetText(true))

	a.controller.Next()
	assert.Contains(t, a.nowPlaying.GetText(true), "outro")
	assert.Equal(t, 1, a.playlistView.Active())

	a.controller.Toggle()
	assert.Contains(t, a.nowPlaying.GetText(true), "PLAYING")
	assert.True(t, a.playing.Load())
}

func TestAppVolumeDisplay(t *testing.T) {
	a, _, plr := newTestApp(t)

	a.controller.SetVolume(0.5)
	assert.InDelta(t, 0.5, plr.volume, 1e-9)
	assert.Contains(t, a.volumeBar.GetText(true), "50%")
}

func TestAppApplyConfig(t *testing.T) {
	a, _, _ := newTestApp(t)

	cfg := config.DefaultConfig()
	cfg.UI.Rain = false
	cfg.UI.VisualizerBars = 4
	cfg.UI.RainInterval = 80
	a.ApplyConfig(cfg)

	assert.False(t, a.rainEnabled.Load())
	assert.Len(t, a.visualizer.Heights(), 4)
	assert.Equal(t, cfg.UI.GetRainInterval(), <-a.rainInterval)
}

func TestAppConfigReloadWhileAnimating(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := playlist.NewStore()
	plr := &stubPlayer{events: make(chan player.Event)}
	a := NewApp(ctx, config.DefaultConfig(), library.NewLocalLibrary(true), store, plr)

	done := make(chan struct{})
	go func() {
		a.animate(a.cfg.UI.GetRainInterval())
		close(done)
	}()

	cfg := config.DefaultConfig()
	cfg.UI.RainInterval = 120
	a.ApplyConfig(cfg)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("animation did not stop")
	}
	assert.Same(t, cfg, a.cfg)
}

func TestBarFraction(t *testing.T) {
	tests := []struct {
		x, left, width int
		want           float64
		ok             bool
	}{
		{10, 10, 11, 0, true},
		{15, 10, 11, 0.5, true},
		{20, 10, 11, 1, true},
		{9, 10, 11, 0, false},
		{21, 10, 11, 0, false},
		{3, 3, 1, 0, true},
		{3, 3, 0, 0, false},
	}

	for _, tt := range tests {
		got, ok := barFraction(tt.x, tt.left, tt.width)
		assert.Equal(t, tt.ok, ok, "x=%d left=%d width=%d", tt.x, tt.left, tt.width)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

func TestParsePaths(t *testing.T) {
	assert.Nil(t, parsePaths("   "))
	assert.Equal(t, []string{"a.mp3", "b/*.flac"}, parsePaths(" a.mp3  b/*.flac "))

	dir := filepath.Join(t.TempDir(), "my music")
	require.NoError(t, os.Mkdir(dir, 0o755))
	assert.Equal(t, []string{dir}, parsePaths(dir))
}
