// Package firmware is the controller side of the link: it owns the pixel
// buffer, parses incoming lines, applies valid commands and refreshes the strip.
// Malformed input is dropped without any reply on the serial line.
package firmware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-segmentlight/internal/led"
	"github.com/coreman2200/funtimes-segmentlight/internal/protocol"
	"github.com/coreman2200/funtimes-segmentlight/internal/selftest"
	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

// Stats counts what happened to incoming lines.
type Stats struct {
	Applied       uint64
	Dropped       uint64
	Empty         uint64
	Overlong      uint64
	RefreshErrors uint64
}

type Controller struct {
	mu  sync.Mutex
	buf *strip.Buffer
	drv led.Driver
	log zerolog.Logger

	lineMax int
	queue   int

	applied, dropped, empty, overlong, refreshErr atomic.Uint64
}

type Option func(*Controller)

// WithLineMax bounds the input line buffer.
func WithLineMax(n int) Option { return func(c *Controller) { c.lineMax = n } }

// WithQueueDepth bounds how many complete lines may wait for the handler.
func WithQueueDepth(n int) Option { return func(c *Controller) { c.queue = n } }

func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// New builds a controller over buf and drv. A nil buf starts all off.
func New(buf *strip.Buffer, drv led.Driver, opts ...Option) *Controller {
	if buf == nil {
		buf = strip.NewBuffer()
	}
	c := &Controller{
		buf:     buf,
		drv:     drv,
		log:     zerolog.Nop(),
		lineMax: 64,
		queue:   16,
	}
	for _, o := range opts {
		o(c)
	}
	if c.queue < 1 {
		c.queue = 1
	}
	return c
}

// HandleLine parses one line and, only if it is valid, applies it and
// refreshes the strip. It reports whether the buffer changed.
func (c *Controller) HandleLine(line string) bool {
	cmd, err := protocol.Parse(line)
	if err != nil {
		if errors.Is(err, protocol.ErrEmpty) {
			c.empty.Add(1)
			return false
		}
		c.dropped.Add(1)
		c.log.Debug().Err(err).Str("line", line).Msg("dropped command")
		return false
	}

	c.mu.Lock()
	err = protocol.Apply(c.buf, cmd)
	frame := c.buf.Bytes()
	c.mu.Unlock()
	if err != nil {
		c.dropped.Add(1)
		c.log.Debug().Err(err).Str("line", line).Msg("dropped command")
		return false
	}
	c.applied.Add(1)
	_ = c.push(frame)
	return true
}

// Refresh pushes the current buffer to the driver.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	frame := c.buf.Bytes()
	c.mu.Unlock()
	return c.push(frame)
}

func (c *Controller) push(frame []byte) error {
	if c.drv == nil {
		return nil
	}
	if err := c.drv.Write(frame); err != nil {
		c.refreshErr.Add(1)
		c.log.Warn().Err(err).Msg("strip refresh failed")
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Run reads lines from r on one goroutine and applies them on the caller's,
// strictly in arrival order. It returns nil when r is exhausted and every
// queued line is handled, or ctx.Err() on cancellation. A reader blocked in
// Read is released when its source is closed.
func (c *Controller) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string, c.queue)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		lr := NewLineReader(r, c.lineMax)
		for {
			line, err := lr.Next()
			if errors.Is(err, ErrLineTooLong) {
				c.overlong.Add(1)
				c.log.Debug().Int("max", c.lineMax).Msg("dropped overlong line")
				continue
			}
			if err != nil {
				if err != io.EOF {
					errc <- err
				}
				return
			}
			select {
			case lines <- string(line):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return fmt.Errorf("serial read: %w", err)
				default:
					return nil
				}
			}
			c.HandleLine(line)
		}
	}
}

// SelfTest plays plan on the strip, one frame per step, then clears it.
func (c *Controller) SelfTest(ctx context.Context, plan selftest.Plan, step time.Duration) error {
	r := selftest.NewRunner(plan)
	c.log.Info().Str("test", string(r.Kind())).Int("steps", r.Steps()).Msg("self test")
	for {
		c.mu.Lock()
		more := r.Step(c.buf)
		if !more {
			c.buf.Fill(strip.Off)
		}
		frame := c.buf.Bytes()
		c.mu.Unlock()

		if err := c.push(frame); err != nil {
			return err
		}
		if !more {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
	}
}

// Clear turns every pixel off and refreshes.
func (c *Controller) Clear() error {
	c.mu.Lock()
	c.buf.Fill(strip.Off)
	frame := c.buf.Bytes()
	c.mu.Unlock()
	return c.push(frame)
}

// Snapshot copies the buffer.
func (c *Controller) Snapshot() [strip.NumPixels]strip.RGB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Snapshot()
}

func (c *Controller) Stats() Stats {
	return Stats{
		Applied:       c.applied.Load(),
		Dropped:       c.dropped.Load(),
		Empty:         c.empty.Load(),
		Overlong:      c.overlong.Load(),
		RefreshErrors: c.refreshErr.Load(),
	}
}
