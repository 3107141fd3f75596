// Package config loads the joyd bridge configuration from a TOML file.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/luhtfiimanal/go-linux-joystick/input"
	"github.com/luhtfiimanal/go-linux-joystick/internal/logging"
	"github.com/luhtfiimanal/go-linux-joystick/ldisc"
)

// Config is the resolved bridge configuration.
type Config struct {
	Device     string
	BaudRate   int
	Capacity   int
	DeviceName string
	Axis       input.AbsInfo
	LogLevel   string
	LogJSON    bool
}

// Default returns the settings used when no file or flag overrides them.
func Default() Config {
	return Config{
		Device:     "/dev/ttyACM0",
		BaudRate:   115200,
		Capacity:   ldisc.DefaultCapacity,
		DeviceName: "micro:bit joystick",
		Axis:       input.DefaultAbsInfo(),
		LogLevel:   "info",
	}
}

type fileConfig struct {
	Device     string   `toml:"device"`
	BaudRate   int      `toml:"baud_rate"`
	Capacity   int      `toml:"capacity"`
	DeviceName string   `toml:"device_name"`
	LogLevel   string   `toml:"log_level"`
	LogJSON    bool     `toml:"log_json"`
	Axis       axisFile `toml:"axis"`
}

type axisFile struct {
	Min  int32 `toml:"min"`
	Max  int32 `toml:"max"`
	Fuzz int32 `toml:"fuzz"`
	Flat int32 `toml:"flat"`
}

// Load overlays the keys set in the file at path onto Default.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return apply(Default(), raw, meta)
}

// Parse is Load for TOML held in memory.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return apply(Default(), raw, meta)
}

func apply(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("baud_rate") {
		cfg.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("capacity") {
		cfg.Capacity = raw.Capacity
	}
	if meta.IsDefined("device_name") {
		cfg.DeviceName = strings.TrimSpace(raw.DeviceName)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_json") {
		cfg.LogJSON = raw.LogJSON
	}
	if meta.IsDefined("axis", "min") {
		cfg.Axis.Min = raw.Axis.Min
	}
	if meta.IsDefined("axis", "max") {
		cfg.Axis.Max = raw.Axis.Max
	}
	if meta.IsDefined("axis", "fuzz") {
		cfg.Axis.Fuzz = raw.Axis.Fuzz
	}
	if meta.IsDefined("axis", "flat") {
		cfg.Axis.Flat = raw.Axis.Flat
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Device == "":
		return fmt.Errorf("device must be set")
	case c.BaudRate <= 0:
		return fmt.Errorf("baud_rate must be positive, got %d", c.BaudRate)
	case c.Capacity <= 0:
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	case c.Axis.Min >= c.Axis.Max:
		return fmt.Errorf("axis min %d must be below max %d", c.Axis.Min, c.Axis.Max)
	case c.Axis.Fuzz < 0 || c.Axis.Flat < 0:
		return fmt.Errorf("axis fuzz and flat must not be negative")
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
