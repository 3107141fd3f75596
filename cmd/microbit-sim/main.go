//go:build linux

// microbit-sim writes accelerometer records to a serial device the way the
// micro:bit firmware does, for driving joyd without hardware. Writes are
// optionally split at random offsets to exercise record reassembly.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	serial "github.com/luhtfiimanal/go-linux-joystick"
	"github.com/luhtfiimanal/go-linux-joystick/internal/logging"
	"github.com/luhtfiimanal/go-linux-joystick/telemetry"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		device   string
		baud     int
		rate     float64
		count    int
		split    bool
		logLevel string
	)
	flagSet := pflag.NewFlagSet("microbit-sim", pflag.ContinueOnError)
	flagSet.StringVar(&device, "device", "", "serial device to write records to (required)")
	flagSet.IntVar(&baud, "baud", 115200, "serial baud rate")
	flagSet.Float64Var(&rate, "rate", 50, "records per second")
	flagSet.IntVar(&count, "count", 0, "stop after this many records (0 runs until interrupted)")
	flagSet.BoolVar(&split, "split", false, "split each record across two writes at a random offset")
	flagSet.StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn, error or off")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if device == "" {
		return fmt.Errorf("--device is required")
	}
	if rate <= 0 {
		return fmt.Errorf("--rate must be positive")
	}

	log := logging.New("microbit-sim", logging.Config{Level: logLevel})

	port, err := serial.Open(serial.Config{Device: device, BaudRate: baud})
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	buf := make([]byte, 0, 64)
	for n := 0; count == 0 || n < count; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		s := sampleAt(n)
		buf = s.AppendRecord(buf[:0])
		if err := write(port, buf, split); err != nil {
			return fmt.Errorf("write record %d: %w", n, err)
		}
		log.Debug().Stringer("sample", s).Msg("record written")
	}
	log.Info().Int("records", count).Msg("done")
	return nil
}

// sampleAt tilts the board in a slow circle and presses A and B in turn.
func sampleAt(n int) telemetry.Sample {
	phase := float64(n) / 50 * math.Pi
	s := telemetry.Sample{
		X: int32(900 * math.Cos(phase)),
		Y: int32(900 * math.Sin(phase)),
		Z: -1000 + int32(rand.IntN(40)) - 20,
	}
	switch (n / 100) % 4 {
	case 1:
		s.A = 1
	case 3:
		s.B = 1
	}
	return s
}

func write(port *serial.Port, rec []byte, split bool) error {
	if split && len(rec) > 1 {
		at := 1 + rand.IntN(len(rec)-1)
		if _, err := port.Write(rec[:at]); err != nil {
			return err
		}
		rec = rec[at:]
	}
	_, err := port.Write(rec)
	return err
}
