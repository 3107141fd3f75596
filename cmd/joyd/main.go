//go:build linux

// joyd bridges the accelerometer telemetry of a micro:bit on a serial port to
// an in-process joystick device and logs every report it publishes.
//
// Configuration is read from an optional TOML file and overridden by flags:
//
//	joyd --config /etc/joyd.toml --device /dev/ttyACM0 --log-level debug
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	serial "github.com/luhtfiimanal/go-linux-joystick"
	"github.com/luhtfiimanal/go-linux-joystick/input"
	"github.com/luhtfiimanal/go-linux-joystick/internal/config"
	"github.com/luhtfiimanal/go-linux-joystick/internal/logging"
	"github.com/luhtfiimanal/go-linux-joystick/ldisc"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath    string
		statsInterval time.Duration
	)
	cfg := config.Default()

	flagSet := pflag.NewFlagSet("joyd", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a TOML config file")
	flagSet.StringVar(&cfg.Device, "device", cfg.Device, "serial device the micro:bit is attached to")
	flagSet.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "serial baud rate")
	flagSet.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "receive queue and maximum record size in bytes")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn, error or off")
	flagSet.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "write JSON log records instead of console output")
	flagSet.DurationVar(&statsInterval, "stats-interval", 30*time.Second, "how often to log receive statistics (0 disables)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = mergeFlags(flagSet, fileCfg, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New("joyd", logging.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	port, err := serial.Open(serial.Config{Device: cfg.Device, BaudRate: cfg.BaudRate})
	if err != nil {
		return err
	}

	dev := input.NewDevice(cfg.DeviceName, cfg.Axis)
	defer dev.Close()
	sink := input.NewLogSink(log, dev)
	session := ldisc.NewSession(ldisc.WithCapacity(cfg.Capacity), ldisc.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		port.Close()
	}()
	if statsInterval > 0 {
		go logStats(ctx, log, session, statsInterval)
	}

	log.Info().
		Str("device", cfg.Device).
		Int("baud", cfg.BaudRate).
		Str("joystick", dev.Name()).
		Msg("bridge started")

	// Receive errors are already logged by the session.
	err = port.Attach(session, sink, nil)
	st := session.Stats()
	log.Info().
		Uint64("records", st.Records).
		Uint64("dispatched", st.Dispatched).
		Msg("bridge stopped")
	return err
}

// mergeFlags returns fileCfg with every flag the user set explicitly taken
// from flagCfg.
func mergeFlags(fs *pflag.FlagSet, fileCfg, flagCfg config.Config) config.Config {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "device":
			fileCfg.Device = flagCfg.Device
		case "baud":
			fileCfg.BaudRate = flagCfg.BaudRate
		case "capacity":
			fileCfg.Capacity = flagCfg.Capacity
		case "log-level":
			fileCfg.LogLevel = flagCfg.LogLevel
		case "log-json":
			fileCfg.LogJSON = flagCfg.LogJSON
		}
	})
	return fileCfg
}

func logStats(ctx context.Context, log zerolog.Logger, s *ldisc.Session, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := s.Stats()
			ev := log.Info().
				Uint64("records", st.Records).
				Uint64("dispatched", st.Dispatched)
			for k := ldisc.KindQueueOverflow; k < ldisc.KindOther+1; k++ {
				if n := st.ErrorCount(k); n > 0 {
					ev = ev.Uint64(k.String(), n)
				}
			}
			ev.Msg("receive stats")
		}
	}
}
