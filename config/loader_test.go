package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[player]
backend = "mpv"
volume = 0.5

[ui]
rain = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMPV, cfg.Player.Backend)
	assert.InDelta(t, 0.5, cfg.Player.Volume, 1e-9)
	assert.False(t, cfg.UI.Rain)
	// untouched keys keep defaults
	assert.Equal(t, 50, cfg.UI.RainInterval)
	assert.Equal(t, 4, cfg.Library.MetadataWorkers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[player]\nvolume = 1.5\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Player.Backend = BackendMPV
	cfg.Library.MetadataWorkers = 2

	require.NoError(t, Write(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	testData := []struct {
		Name   string
		Mutate func(*Config)
		OK     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"backend", func(c *Config) { c.Player.Backend = "vlc" }, false},
		{"negative volume", func(c *Config) { c.Player.Volume = -0.1 }, false},
		{"zero tick", func(c *Config) { c.Player.TickInterval = 0 }, false},
		{"zero workers", func(c *Config) { c.Library.MetadataWorkers = 0 }, false},
		{"zero rain", func(c *Config) { c.UI.RainInterval = 0 }, false},
	}

	for _, td := range testData {
		cfg := DefaultConfig()
		td.Mutate(cfg)
		err := cfg.Validate()
		if td.OK {
			assert.NoError(t, err, td.Name)
		} else {
			assert.Error(t, err, td.Name)
		}
	}
}
