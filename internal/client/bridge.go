package client

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"

	"github.com/coreman2200/funtimes-segmentlight/internal/protocol"
)

var ErrNotConnected = errors.New("not connected")

// Port is the part of a serial port the bridge needs. Writes go straight to
// the device; tarm's Flush discards pending output, so it is never called.
type Port interface {
	io.WriteCloser
}

// Opener opens a named port at a baud rate.
type Opener func(name string, baud int) (Port, error)

// OpenSerial opens a real port through tarm/serial.
func OpenSerial(name string, baud int) (Port, error) {
	p, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Bridge owns at most one open port and writes command lines to it.
// Writes are synchronous; a failed write is returned and nothing is retried.
type Bridge struct {
	mu     sync.Mutex
	open   Opener
	port   Port
	name   string
	baud   int
	settle time.Duration
	sleep  func(time.Duration)
	log    zerolog.Logger
}

type BridgeOption func(*Bridge)

// WithOpener replaces the serial opener, mainly for tests.
func WithOpener(o Opener) BridgeOption { return func(b *Bridge) { b.open = o } }

// WithSettle sets how long Open waits for the board to come out of reset.
func WithSettle(d time.Duration) BridgeOption { return func(b *Bridge) { b.settle = d } }

func WithSleep(f func(time.Duration)) BridgeOption { return func(b *Bridge) { b.sleep = f } }

func WithLogger(l zerolog.Logger) BridgeOption { return func(b *Bridge) { b.log = l } }

func NewBridge(opts ...BridgeOption) *Bridge {
	b := &Bridge{
		open:   OpenSerial,
		settle: 2 * time.Second,
		sleep:  time.Sleep,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Open closes any current port, opens name and waits for the settle delay.
func (b *Bridge) Open(name string, baud int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()

	p, err := b.open(name, baud)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if b.settle > 0 {
		b.sleep(b.settle)
	}
	b.port, b.name, b.baud = p, name, baud
	b.log.Info().Str("port", name).Int("baud", baud).Msg("connected")
	return nil
}

func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeLocked()
}

func (b *Bridge) closeLocked() error {
	if b.port == nil {
		return nil
	}
	err := b.port.Close()
	b.log.Info().Str("port", b.name).Msg("disconnected")
	b.port, b.name, b.baud = nil, "", 0
	return err
}

func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port != nil
}

// Name returns the open port name, or "".
func (b *Bridge) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// SendLine writes text, newline-terminated.
func (b *Bridge) SendLine(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.port == nil {
		return ErrNotConnected
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := b.port.Write([]byte(text)); err != nil {
		return fmt.Errorf("write %s: %w", b.name, err)
	}
	b.log.Debug().Str("line", strings.TrimSpace(text)).Msg("sent")
	return nil
}

// Send formats cmd and writes it. It returns the line without its newline.
func (b *Bridge) Send(cmd protocol.Command) (string, error) {
	line, err := protocol.Format(cmd)
	if err != nil {
		return "", err
	}
	if err := b.SendLine(line); err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}
