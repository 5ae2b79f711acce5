package config

import (
	"fmt"
	"time"
)

const (
	BackendBeep = "beep"
	BackendMPV  = "mpv"
)

// Config represents the complete application configuration
type Config struct {
	UI      UIConfig      `mapstructure:"ui" toml:"ui"`
	Player  PlayerConfig  `mapstructure:"player" toml:"player"`
	Library LibraryConfig `mapstructure:"library" toml:"library"`
	Log     LogConfig     `mapstructure:"log" toml:"log"`
}

// UIConfig contains user interface settings
type UIConfig struct {
	ProgressBarWidth int  `mapstructure:"progress_bar_width" toml:"progress_bar_width"`
	MaxColumnWidth   int  `mapstructure:"max_column_width" toml:"max_column_width"`
	Rain             bool `mapstructure:"rain" toml:"rain"`
	RainInterval     int  `mapstructure:"rain_interval" toml:"rain_interval"`         // in milliseconds
	GlitchInterval   int  `mapstructure:"glitch_interval" toml:"glitch_interval"`     // in milliseconds
	VisualizerBars   int  `mapstructure:"visualizer_bars" toml:"visualizer_bars"`
}

// PlayerConfig contains playback settings
type PlayerConfig struct {
	Backend      string  `mapstructure:"backend" toml:"backend"`
	Volume       float64 `mapstructure:"volume" toml:"volume"`               // 0.0 - 1.0
	TickInterval int     `mapstructure:"tick_interval" toml:"tick_interval"` // in milliseconds
}

// LibraryConfig contains file selection and tag reading settings
type LibraryConfig struct {
	Recursive       bool `mapstructure:"recursive" toml:"recursive"`
	MetadataWorkers int  `mapstructure:"metadata_workers" toml:"metadata_workers"`
}

// LogConfig contains log output settings
type LogConfig struct {
	File string `mapstructure:"file" toml:"file"`
}

// GetRainInterval returns the rain redraw interval as a time.Duration
func (u *UIConfig) GetRainInterval() time.Duration {
	return time.Duration(u.RainInterval) * time.Millisecond
}

// GetGlitchInterval returns the glitch interval as a time.Duration
func (u *UIConfig) GetGlitchInterval() time.Duration {
	return time.Duration(u.GlitchInterval) * time.Millisecond
}

// GetTickInterval returns the time-update interval as a time.Duration
func (p *PlayerConfig) GetTickInterval() time.Duration {
	return time.Duration(p.TickInterval) * time.Millisecond
}

// Validate checks that all configuration values are within range
func (c *Config) Validate() error {
	switch c.Player.Backend {
	case BackendBeep, BackendMPV:
	default:
		return fmt.Errorf("unknown player backend: %q", c.Player.Backend)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return fmt.Errorf("player.volume must be within [0, 1], got %v", c.Player.Volume)
	}
	if c.Player.TickInterval <= 0 {
		return fmt.Errorf("player.tick_interval must be positive")
	}
	if c.UI.RainInterval <= 0 || c.UI.GlitchInterval <= 0 {
		return fmt.Errorf("ui intervals must be positive")
	}
	if c.UI.ProgressBarWidth <= 0 {
		return fmt.Errorf("ui.progress_bar_width must be positive")
	}
	if c.Library.MetadataWorkers < 1 {
		return fmt.Errorf("library.metadata_workers must be at least 1")
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			ProgressBarWidth: 30,
			MaxColumnWidth:   40,
			Rain:             true,
			RainInterval:     50,
			GlitchInterval:   3000,
			VisualizerBars:   12,
		},
		Player: PlayerConfig{
			Backend:      BackendBeep,
			Volume:       0.8,
			TickInterval: 250,
		},
		Library: LibraryConfig{
			Recursive:       true,
			MetadataWorkers: 4,
		},
		Log: LogConfig{
			File: "rainplayer.log",
		},
	}
}
