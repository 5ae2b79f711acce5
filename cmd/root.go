package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yhkl-dev/rainplayer/config"
	"github.com/yhkl-dev/rainplayer/library"
	"github.com/yhkl-dev/rainplayer/metadata"
	"github.com/yhkl-dev/rainplayer/player"
	"github.com/yhkl-dev/rainplayer/playlist"
	"github.com/yhkl-dev/rainplayer/ui"
)

var (
	cfgFile string
	backend string
	logFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rainplayer [files, folders or globs...]",
	Short: "A terminal music player for local files",
	Long: `rainplayer plays local audio files in the terminal.

Pass files, folders or glob patterns to build the playlist, or press 'o'
inside the player to open them. Tags and album art are read in the
background while the first track is loaded.`,
	SilenceUsage: true,
	RunE:         runPlayer,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/rainplayer/config.toml)")
	rootCmd.Flags().StringVar(&backend, "backend", "", "audio backend: beep or mpv")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("rainplayer needs an interactive terminal")
	}

	loader := config.NewLoader(cfgFile)
	if backend != "" {
		loader.Set("player.backend", backend)
	}
	if logFile != "" {
		loader.Set("log.file", logFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := playlist.NewStore()
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error releasing sources: %v", err)
		}
	}()

	plr, err := newPlayer(ctx, &cfg.Player)
	if err != nil {
		return err
	}
	defer plr.Close()

	app := ui.NewApp(ctx, cfg, library.NewLocalLibrary(cfg.Library.Recursive), store, plr)

	runner := metadata.NewRunner(ctx, metadata.NewTagExtractor(), metadata.NewDecoderProber(), cfg.Library.MetadataWorkers)
	runner.Bind(store, app.Dispatch)
	store.SetEnricher(runner)

	loader.Watch(func(c *config.Config) {
		app.Dispatch(func() {
			app.ApplyConfig(c)
		})
	})

	app.Open(args)
	if err := app.Run(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	log.Println("rainplayer exited")
	return nil
}

// newPlayer creates the configured audio backend
func newPlayer(ctx context.Context, cfg *config.PlayerConfig) (player.Player, error) {
	switch cfg.Backend {
	case config.BackendMPV:
		return player.NewMPVPlayer(ctx, cfg.GetTickInterval())
	case config.BackendBeep:
		return player.NewBeepPlayer(ctx, cfg.GetTickInterval()), nil
	}
	return nil, fmt.Errorf("unknown player backend: %q", cfg.Backend)
}

// setupLogging sends the standard logger to path, the terminal belongs to the UI.
// An empty path discards log output.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
