package ui

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yhkl-dev/rainplayer/config"
	"github.com/yhkl-dev/rainplayer/coverart"
	"github.com/yhkl-dev/rainplayer/domain"
	"github.com/yhkl-dev/rainplayer/library"
	"github.com/yhkl-dev/rainplayer/playback"
	"github.com/yhkl-dev/rainplayer/player"
	"github.com/yhkl-dev/rainplayer/playlist"
)

const (
	logoText        = "R A I N // P L A Y E R"
	volumeBarWidth  = 10
	volumeStep      = 0.05
	seekStep        = 0.05
	visualizerRows  = 3
	visualizerTick  = 100 * time.Millisecond
	glitchPlaying   = 300 * time.Millisecond
	glitchHold      = 150 * time.Millisecond
	glitchIntensity = 0.3
)

// App represents the TUI application
type App struct {
	tviewApp   *tview.Application
	cfg        *config.Config
	ctx        context.Context
	library    library.Library
	store      *playlist.Store
	controller *playback.Controller

	rootFlex       *tview.Flex
	mainFlex       *tview.Flex
	logo           *tview.TextView
	visualizerView *tview.TextView
	nowPlaying     *tview.TextView
	coverView      *tview.TextView
	timeText       *tview.TextView
	progressBar    *tview.TextView
	volumeBar      *tview.TextView
	statusBar      *tview.TextView
	openInput      *tview.InputField
	playlistView   *PlaylistView
	helpView       *HelpView
	rain           *Rain
	keys           *KeyBindingManager

	coverConverter *coverart.Converter
	coverURI       string
	glitch         *Glitch
	visualizer     *Visualizer

	// last values pushed through the Display interface
	index    int
	track    domain.Track
	state    domain.PlaybackState
	position float64
	duration float64
	progress float64
	volume   float64

	// read by the animation goroutine
	playing        atomic.Bool
	rainEnabled    atomic.Bool
	glitchInterval atomic.Int64
	rainInterval   chan time.Duration
}

// NewApp creates the TUI, wires a playback controller for plr and
// subscribes both to the store.
func NewApp(ctx context.Context, cfg *config.Config, lib library.Library, store *playlist.Store, plr player.Player) *App {
	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	a := &App{
		tviewApp:       tview.NewApplication(),
		cfg:            cfg,
		ctx:            ctx,
		library:        lib,
		store:          store,
		coverConverter: coverart.NewConverter(),
		glitch:         NewGlitch(logoText, rnd),
		visualizer:     NewVisualizer(cfg.UI.VisualizerBars, rnd),
		index:          -1,
		duration:       math.NaN(),
		rainInterval:   make(chan time.Duration, 1),
	}
	a.rainEnabled.Store(cfg.UI.Rain)
	a.glitchInterval.Store(int64(cfg.UI.GetGlitchInterval()))

	a.createHomepage()
	a.controller = playback.NewController(store, plr, a, cfg.Player.Volume)
	store.Subscribe(a.controller)
	store.Subscribe(a.playlistView)
	return a
}

// Run starts the application
func (a *App) Run() error {
	go a.controller.Run(a.ctx, a.Dispatch)
	go a.animate(a.cfg.UI.GetRainInterval())
	go func() {
		<-a.ctx.Done()
		a.Stop()
	}()

	log.Println("start rainplayer...")
	return a.tviewApp.Run()
}

// Stop stops the application
func (a *App) Stop() {
	if a.tviewApp != nil {
		a.tviewApp.Stop()
	}
}

// Dispatch runs fn on the UI goroutine and redraws
func (a *App) Dispatch(fn func()) {
	a.tviewApp.QueueUpdateDraw(fn)
}

// Open selects files from paths off the UI goroutine and replaces the
// playlist with them. An empty selection leaves the playlist alone.
func (a *App) Open(paths []string) {
	if len(paths) == 0 {
		return
	}
	a.setStatus(fmt.Sprintf("[darkgray]opening %s ...", tview.Escape(strings.Join(paths, " "))))

	go func() {
		files, err := a.library.Select(paths...)
		a.Dispatch(func() {
			if err != nil {
				log.Printf("Failed to open files: %v", err)
				a.setStatus("[red]" + tview.Escape(err.Error()))
				return
			}
			if len(files) == 0 {
				a.setStatus("[yellow]no files selected")
				return
			}
			tracks := a.store.ReplaceAll(files)
			a.setStatus(fmt.Sprintf("[darkgray]%d tracks loaded, %d skipped", len(tracks), len(files)-len(tracks)))
			a.tviewApp.SetFocus(a.playlistView.Primitive())
		})
	}()
}

// ApplyConfig applies a reloaded configuration. Call it on the UI goroutine.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.cfg = cfg
	a.playlistView.SetMaxWidth(cfg.UI.MaxColumnWidth)
	a.visualizer.Resize(cfg.UI.VisualizerBars)
	a.renderVisualizer()
	a.renderProgress()

	a.rainEnabled.Store(cfg.UI.Rain)
	if cfg.UI.Rain {
		a.mainFlex.ResizeItem(a.rain, 0, 1)
	} else {
		a.mainFlex.ResizeItem(a.rain, 0, 0)
	}
	a.glitchInterval.Store(int64(cfg.UI.GetGlitchInterval()))
	select {
	case a.rainInterval <- cfg.UI.GetRainInterval():
	default:
	}
}

// createHomepage sets up the UI layout
func (a *App) createHomepage() {
	a.logo = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.renderLogo(a.glitch.Text())

	a.visualizerView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.renderVisualizer()

	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	a.nowPlaying.SetBorder(true).
		SetTitle(" Now Playing ").
		SetBorderColor(tcell.ColorDarkGreen)

	a.coverView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(a.coverConverter.Placeholder())

	a.timeText = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)
	a.progressBar = tview.NewTextView().
		SetDynamicColors(true)
	a.volumeBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)

	a.openInput = tview.NewInputField().
		SetLabel("[#39ff14]Open: ").
		SetFieldWidth(0).
		SetPlaceholder("files, folders or globs, ENTER to load, ESC to cancel").
		SetFieldBackgroundColor(tcell.ColorBlack)

	a.playlistView = NewPlaylistView(a.cfg.UI.MaxColumnWidth, func(index int) {
		a.controller.PlayIndex(index)
	})
	a.helpView = NewHelpView(a)
	a.rain = NewRain()

	a.setupOpenInput()
	a.setupMouseHandlers()
	a.setupKeyBindings()
	a.setupInputHandlers()

	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.logo, 0, 1, false).
		AddItem(a.visualizerView, 0, 1, false)

	centerPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.coverView, 13, 0, false).
		AddItem(a.nowPlaying, 0, 1, false)

	rainWidth := 0
	if a.cfg.UI.Rain {
		rainWidth = 1
	}
	a.mainFlex = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.rain, 0, rainWidth, false).
		AddItem(centerPanel, 0, 2, false).
		AddItem(a.playlistView.Primitive(), 0, 3, true)

	controls := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.timeText, 14, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(a.progressBar, a.cfg.UI.ProgressBarWidth, 0, false).
		AddItem(nil, 3, 0, false).
		AddItem(tview.NewTextView().SetText("vol"), 4, 0, false).
		AddItem(a.volumeBar, volumeBarWidth+6, 0, false).
		AddItem(a.statusBar, 0, 1, false)

	a.rootFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, visualizerRows, 0, false).
		AddItem(a.mainFlex, 0, 1, true).
		AddItem(controls, 1, 0, false).
		AddItem(a.openInput, 1, 0, false)

	a.renderNowPlaying()
	a.renderProgress()

	a.tviewApp.SetRoot(a.rootFlex, true).
		SetFocus(a.playlistView.Primitive()).
		EnableMouse(true)
}

// setupOpenInput sets up the open input field handlers
func (a *App) setupOpenInput() {
	a.openInput.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			paths := parsePaths(a.openInput.GetText())
			a.openInput.SetText("")
			a.Open(paths)
		case tcell.KeyEscape:
			a.openInput.SetText("")
		}
		a.tviewApp.SetFocus(a.playlistView.Primitive())
	})
}

// setupMouseHandlers turns clicks on the progress and volume bars into seek and volume commands
func (a *App) setupMouseHandlers() {
	a.progressBar.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		if action != tview.MouseLeftClick {
			return action, event
		}
		x, _ := event.Position()
		left, _, _, _ := a.progressBar.GetInnerRect()
		if f, ok := barFraction(x, left, a.cfg.UI.ProgressBarWidth); ok {
			a.controller.Seek(f)
		}
		return tview.MouseConsumed, nil
	})

	a.volumeBar.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		if action != tview.MouseLeftClick {
			return action, event
		}
		x, _ := event.Position()
		left, _, _, _ := a.volumeBar.GetInnerRect()
		if f, ok := barFraction(x, left, volumeBarWidth); ok {
			a.controller.SetVolume(f)
		}
		return tview.MouseConsumed, nil
	})
}

// setupKeyBindings registers the player shortcuts
func (a *App) setupKeyBindings() {
	a.keys = NewKeyBindingManager()
	a.keys.RegisterKeyBinding(KeyAction{name: "toggle", handler: func() { a.controller.Toggle() }},
		nil, []rune{' '})
	a.keys.RegisterKeyBinding(KeyAction{name: "next", handler: func() { a.controller.Next() }},
		[]tcell.Key{tcell.KeyRight}, []rune{'n', 'N', 'l'})
	a.keys.RegisterKeyBinding(KeyAction{name: "previous", handler: func() { a.controller.Previous() }},
		[]tcell.Key{tcell.KeyLeft}, []rune{'p', 'P', 'h'})
	a.keys.RegisterKeyBinding(KeyAction{name: "seekForward", handler: func() { a.controller.Seek(a.progress + seekStep) }},
		nil, []rune{']'})
	a.keys.RegisterKeyBinding(KeyAction{name: "seekBack", handler: func() { a.controller.Seek(a.progress - seekStep) }},
		nil, []rune{'['})
	a.keys.RegisterKeyBinding(KeyAction{name: "volumeUp", handler: func() { a.controller.SetVolume(a.volume + volumeStep) }},
		nil, []rune{'+', '='})
	a.keys.RegisterKeyBinding(KeyAction{name: "volumeDown", handler: func() { a.controller.SetVolume(a.volume - volumeStep) }},
		nil, []rune{'-', '_'})
	a.keys.RegisterKeyBinding(KeyAction{name: "open", handler: func() { a.tviewApp.SetFocus(a.openInput) }},
		nil, []rune{'o', 'O'})
	a.keys.RegisterKeyBinding(KeyAction{name: "help", handler: a.helpView.Show},
		nil, []rune{'?'})
	a.keys.RegisterKeyBinding(KeyAction{name: "goEnd", handler: a.playlistView.SelectLast},
		nil, []rune{'G'})
	a.keys.RegisterSequence(KeyAction{name: "goStart", handler: a.playlistView.SelectFirst}, "gg")
	a.keys.RegisterKeyBinding(KeyAction{name: "exit", handler: a.Stop},
		[]tcell.Key{tcell.KeyEsc, tcell.KeyCtrlC}, []rune{'q', 'Q'})
}

// setupInputHandlers sets up keyboard input handlers
func (a *App) setupInputHandlers() {
	a.tviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Handle modal views first
		if a.helpView.IsActive() {
			if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
				a.helpView.Close()
				return nil
			}
			return event
		}
		if a.tviewApp.GetFocus() == a.openInput {
			if event.Key() == tcell.KeyCtrlC {
				a.Stop()
				return nil
			}
			return event
		}

		if a.keys.HandleKey(event) {
			return nil
		}
		return event
	})
}

// ShowTrack implements playback.Display
func (a *App) ShowTrack(index int, track domain.Track) {
	a.index = index
	a.track = track
	a.renderNowPlaying()
	a.loadCoverArt(track.AlbumArt)
}

// ShowState implements playback.Display
func (a *App) ShowState(state domain.PlaybackState) {
	a.state = state
	a.playing.Store(state == domain.StatePlaying)
	a.renderNowPlaying()
}

// ShowTime implements playback.Display
func (a *App) ShowTime(position float64) {
	a.position = position
	a.renderProgress()
}

// ShowProgress implements playback.Display
func (a *App) ShowProgress(fraction float64) {
	a.progress = fraction
	a.renderProgress()
}

// ShowDuration implements playback.Display
func (a *App) ShowDuration(seconds float64) {
	a.duration = seconds
	a.renderProgress()
}

// ShowVolume implements playback.Display
func (a *App) ShowVolume(fraction float64) {
	a.volume = fraction
	a.volumeBar.SetText(CreateVolumeBar(fraction, volumeBarWidth))
}

func (a *App) renderNowPlaying() {
	a.nowPlaying.SetText(FormatTrackInfo(a.index, a.track, a.state, a.store.Len()))
}

func (a *App) renderProgress() {
	a.timeText.SetText(CreateTimeText(a.position, a.duration))
	a.progressBar.SetText(CreateProgressBar(a.progress, a.cfg.UI.ProgressBarWidth))
}

func (a *App) renderVisualizer() {
	a.visualizerView.SetText(a.visualizer.Render(visualizerRows))
}

func (a *App) renderLogo(text string) {
	a.logo.SetText("\n[#39ff14::b]" + tview.Escape(text))
}

func (a *App) setStatus(text string) {
	a.statusBar.SetText(" " + text)
}

// loadCoverArt converts album art off the UI goroutine
func (a *App) loadCoverArt(uri string) {
	if uri == a.coverURI {
		return
	}
	a.coverURI = uri
	if uri == "" {
		a.coverView.SetText(a.coverConverter.Placeholder())
		return
	}

	go func() {
		ascii, err := a.coverConverter.ConvertDataURI(uri)
		if err != nil {
			log.Printf("Failed to load cover art: %v", err)
		} else {
			ascii = "[#39ff14]" + tview.Escape(ascii)
		}
		a.Dispatch(func() {
			if a.coverURI == uri {
				a.coverView.SetText(ascii)
			}
		})
	}()
}

// animate drives the rain, visualizer and logo glitch until the context ends.
// Later interval changes arrive on a.rainInterval.
func (a *App) animate(rain time.Duration) {
	rainTicker := time.NewTicker(rain)
	defer rainTicker.Stop()
	barTicker := time.NewTicker(visualizerTick)
	defer barTicker.Stop()
	glitchTimer := time.NewTimer(a.glitchDelay())
	defer glitchTimer.Stop()

	for {
		select {
		case <-rainTicker.C:
			if a.rainEnabled.Load() {
				a.Dispatch(a.rain.Step)
			}
		case <-barTicker.C:
			if a.playing.Load() {
				a.Dispatch(func() {
					a.visualizer.Step()
					a.renderVisualizer()
				})
			}
		case <-glitchTimer.C:
			a.Dispatch(func() {
				a.renderLogo(a.glitch.Frame(glitchIntensity))
			})
			time.AfterFunc(glitchHold, func() {
				a.Dispatch(func() {
					a.renderLogo(a.glitch.Text())
				})
			})
			glitchTimer.Reset(a.glitchDelay())
		case d := <-a.rainInterval:
			rainTicker.Reset(d)
		case <-a.ctx.Done():
			return
		}
	}
}

// glitchDelay is the pause between logo glitches, shorter while playing
func (a *App) glitchDelay() time.Duration {
	if a.playing.Load() {
		return glitchPlaying
	}
	return time.Duration(a.glitchInterval.Load())
}

// barFraction maps a click at column x onto a bar of width cells starting at left
func barFraction(x, left, width int) (float64, bool) {
	if width <= 0 || x < left || x >= left+width {
		return 0, false
	}
	if width == 1 {
		return 0, true
	}
	return float64(x-left) / float64(width-1), true
}

// parsePaths splits the open input into paths. Input naming an existing
// path is taken whole so paths with spaces need no quoting.
func parsePaths(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if _, err := os.Stat(text); err == nil {
		return []string{text}
	}
	return strings.Fields(text)
}
