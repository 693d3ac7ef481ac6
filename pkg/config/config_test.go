package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
modules:
  - type: clock
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lemonbar", cfg.Bar.Command)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.MaxIdle)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Control.Enabled)
	assert.Equal(t, 8372, cfg.Control.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "lemonbar:events", cfg.Redis.Channel)
}

func TestLoadParsesModules(t *testing.T) {
	path := writeConfig(t, `
bar:
  command: lemonbar
  args: ["-b", "-g", "x25"]
modules:
  - type: const
    value: "%{l}"
  - type: clock
    name: clock
    interval: 30s
  - type: volume
    device: Master
    increments: 10
  - type: bspwm
    monitor: DVI-D-0
  - type: launcher
    label: off
    command: ["shutdown", "-h", "now"]
  - type: const
    value: x
    schedule: "0 * * * *"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Modules, 6)
	assert.Equal(t, []string{"-b", "-g", "x25"}, cfg.Bar.Args)
	assert.Equal(t, 30*time.Second, cfg.Modules[1].Interval)
	assert.Equal(t, "Master", cfg.Modules[2].Device)
	assert.Equal(t, 10, cfg.Modules[2].Increments)
	assert.Equal(t, "DVI-D-0", cfg.Modules[3].Monitor)
	assert.Equal(t, []string{"shutdown", "-h", "now"}, cfg.Modules[4].Command)
	assert.Equal(t, "0 * * * *", cfg.Modules[5].Schedule)
}

func TestLoadRejectsEmptyModuleList(t *testing.T) {
	path := writeConfig(t, `
bar:
  command: lemonbar
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "no modules")
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
