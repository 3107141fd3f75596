package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luhtfiimanal/go-linux-joystick/input"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParse_Overlay(t *testing.T) {
	cfg, err := Parse(`
device = " /dev/ttyUSB1 "
baud_rate = 9600
log_level = "debug"

[axis]
fuzz = 0
max = 2048
`)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB1", cfg.Device)
	require.Equal(t, 9600, cfg.BaudRate)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, input.AbsInfo{Min: -1000, Max: 2048, Fuzz: 0}, cfg.Axis)
	require.Equal(t, Default().Capacity, cfg.Capacity)
}

func TestParse_Invalid(t *testing.T) {
	cases := []string{
		`capacity = 0`,
		`baud_rate = -1`,
		`device = ""`,
		"[axis]\nmin = 10\nmax = 10",
		"[axis]\nfuzz = -1",
		`unknown = 1`,
		`device = `,
		`log_level = "loud"`,
		`log_level = ""`,
	}
	for _, data := range cases {
		_, err := Parse(data)
		require.Error(t, err, data)
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Default()
	for _, level := range []string{"trace", "debug", "info", "warn", "warning", "error", "off", "DEBUG"} {
		cfg.LogLevel = level
		require.NoError(t, cfg.Validate(), level)
	}
	cfg.LogLevel = "verbose"
	require.ErrorContains(t, cfg.Validate(), `unknown log_level "verbose"`)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "joyd.toml")
	require.NoError(t, os.WriteFile(path, []byte("capacity = 256\nlog_json = true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 256, cfg.Capacity)
	require.True(t, cfg.LogJSON)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
