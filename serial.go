package serial

import (
	"fmt"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/luhtfiimanal/go-linux-joystick/input"
)

// Discipline consumes the raw byte stream of a port, the way a tty line
// discipline does. A Port calls it from a single goroutine: Open once, then
// Receive for every chunk read, then Flush and Close when the loop ends.
type Discipline interface {
	Open(sink input.Sink) error
	Receive(chunk []byte) error
	Flush()
	Close() error
}

// Drainer is implemented by a Discipline that can hold complete records back
// for a later Receive. Attach calls Receive(nil) while Pending reports true.
type Drainer interface {
	Pending() bool
}

// Capacitor is implemented by a Discipline that can only queue a bounded
// number of bytes. Attach never reads more than Capacity bytes at once.
type Capacitor interface {
	Capacity() int
}

// Port provides low-latency, killable access to a Linux serial port.
// Close is safe to call from any goroutine.
type Port struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device   string
	BaudRate int
	// ChunkSize is the largest read handed to a Discipline. Default 4096,
	// lowered to the Discipline's Capacity when it reports one.
	ChunkSize int
}

// Open opens a serial port using the provided Config and returns a Port.
// The port is configured for raw, low-latency, non-buffered operation.
func Open(cfg Config) (*Port, error) {
	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	baud := baudToUnix(cfg.BaudRate)
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VMIN=1, VTIME=0: a read returns as soon as any byte is available
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	syscall.SetNonblock(fd, false)

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 4096
	}

	file := os.NewFile(uintptr(fd), cfg.Device)
	return &Port{
		fd:     fd,
		file:   file,
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// Write writes b to the serial port.
func (p *Port) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// WriteLine writes a line (with specified newline) to the serial port.
func (p *Port) WriteLine(line string, newline string) error {
	_, err := p.file.WriteString(line + newline)
	return err
}

// Attach runs d on the port until the port is closed or a read fails.
//
// Every chunk read is passed to d.Receive. If d is a Drainer, Receive(nil)
// follows for as long as complete records remain queued. Errors returned by
// Receive are recoverable and only reported to onReceiveError, which may be
// nil; the loop keeps reading. Attach returns nil when the port is closed and the read
// error otherwise. d is flushed and closed before Attach returns.
func (p *Port) Attach(d Discipline, sink input.Sink, onReceiveError func(error)) (err error) {
	if err := d.Open(sink); err != nil {
		return fmt.Errorf("open discipline: %w", err)
	}
	defer func() {
		d.Flush()
		if cerr := d.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close discipline: %w", cerr)
		}
	}()

	size := p.config.ChunkSize
	if c, ok := d.(Capacitor); ok && c.Capacity() > 0 && c.Capacity() < size {
		size = c.Capacity()
	}
	drainer, _ := d.(Drainer)
	deliver := func(chunk []byte) {
		if rerr := d.Receive(chunk); rerr != nil && onReceiveError != nil {
			onReceiveError(rerr)
		}
	}

	buf := make([]byte, size)
	for {
		n, err := p.readChunk(buf)
		if err != nil {
			return err
		}
		if n < 0 {
			return nil
		}
		deliver(buf[:n])
		for drainer != nil && drainer.Pending() {
			deliver(nil)
		}
	}
}

// readChunk blocks until data is available or the port is closed, in which
// case it returns -1.
func (p *Port) readChunk(buf []byte) (int, error) {
	for {
		pfd := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(pfd, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, err
		}
		select {
		case <-p.done:
			return -1, nil
		default:
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(p.pipeR, b[:])
			return -1, nil
		}
		if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			n, err := p.file.Read(buf)
			if err != nil {
				return 0, err
			}
			return n, nil
		}
	}
}

// Close closes the serial port and unblocks Attach.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		// Wake up poll using self-pipe
		if p.pipeW > 0 {
			unix.Write(p.pipeW, []byte{1})
		}
		if p.file != nil {
			err = p.file.Close()
		}
		if p.pipeR > 0 {
			unix.Close(p.pipeR)
		}
		if p.pipeW > 0 {
			unix.Close(p.pipeW)
		}
	})
	return err
}

func baudToUnix(baud int) uint32 {
	switch baud {
	case 1200:
		return unix.B1200
	case 2400:
		return unix.B2400
	case 4800:
		return unix.B4800
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	default:
		return unix.B115200 // fallback
	}
}
