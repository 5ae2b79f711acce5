package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Loader reads the configuration through viper and keeps it for reloads
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader. An empty path searches config.toml in
// $HOME/.config/rainplayer and the working directory.
func NewLoader(path string) *Loader {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("$HOME/.config/rainplayer")
		v.AddConfigPath(".")
	}
	v.SetConfigType("toml")

	defaults := DefaultConfig()
	v.SetDefault("ui.progress_bar_width", defaults.UI.ProgressBarWidth)
	v.SetDefault("ui.max_column_width", defaults.UI.MaxColumnWidth)
	v.SetDefault("ui.rain", defaults.UI.Rain)
	v.SetDefault("ui.rain_interval", defaults.UI.RainInterval)
	v.SetDefault("ui.glitch_interval", defaults.UI.GlitchInterval)
	v.SetDefault("ui.visualizer_bars", defaults.UI.VisualizerBars)
	v.SetDefault("player.backend", defaults.Player.Backend)
	v.SetDefault("player.volume", defaults.Player.Volume)
	v.SetDefault("player.tick_interval", defaults.Player.TickInterval)
	v.SetDefault("library.recursive", defaults.Library.Recursive)
	v.SetDefault("library.metadata_workers", defaults.Library.MetadataWorkers)
	v.SetDefault("log.file", defaults.Log.File)

	return &Loader{v: v}
}

// Load reads the config file if present and returns the merged Config.
// A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return l.decode()
}

// Set overrides a single key, e.g. from a command line flag
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Watch calls fn with the reloaded config whenever the file changes.
// Invalid configs are logged and skipped.
func (l *Loader) Watch(fn func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			log.Printf("config reload %s: %v", e.Name, err)
			return
		}
		log.Printf("config reloaded from %s", e.Name)
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Load reads the configuration from path (or the default locations)
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Write serialises cfg as TOML to path, creating parent directories
func Write(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
