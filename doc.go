// Package serial bridges the accelerometer telemetry of a micro:bit, read
// from a Linux serial port, to a joystick-style input device.
//
// The micro:bit prints one record per sample:
//
//	X:-312,Y:88,Z:-1004,A:1,B:0\n
//
// This package owns the port: raw termios setup, a poll loop with a
// self-pipe for killability, and delivery of every chunk read to a
// Discipline. The ldisc package provides the Discipline that reassembles
// records, parses them with the telemetry package and reports X, Y, A and B
// to an input.Sink.
//
// Features:
//   - Raw syscall-based serial I/O on Linux, no buffering delays
//   - Bounded, allocation-free record reassembly
//   - Killable read loop via self-pipe
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	port, err := serial.Open(serial.Config{
//	    Device:   "/dev/ttyACM0",
//	    BaudRate: 115200,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	dev := input.NewDevice("micro:bit joystick", input.DefaultAbsInfo())
//	go port.Attach(ldisc.NewSession(), dev, func(err error) {
//	    log.Println("dropped record:", err)
//	})
//
//	// dev.Snapshot() now follows the board's tilt and buttons.
//	// To stop, call port.Close() from another goroutine.
package serial
