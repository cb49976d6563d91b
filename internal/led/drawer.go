package led

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// DefaultNRZFreq is the SPI clock used for nrzled when none is configured.
const DefaultNRZFreq = 2500 * physic.KiloHertz

// Drawer adapts a periph display.Drawer (nrzled strip, console screen) to Driver.
type Drawer struct {
	mu     sync.Mutex
	d      display.Drawer
	count  int
	port   io.Closer
	img    *image.NRGBA
	halted bool
}

// NewDrawer wraps d. port, if non-nil, is closed together with the drawer.
func NewDrawer(d display.Drawer, count int, port io.Closer) *Drawer {
	return &Drawer{
		d:     d,
		count: count,
		port:  port,
		img:   image.NewNRGBA(image.Rect(0, 0, count, 1)),
	}
}

// NewNRZ drives a WS2812-style chain on port through nrzled.
func NewNRZ(p spi.Port, count int, freq physic.Frequency, closer io.Closer) (*Drawer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freq <= 0 {
		freq = DefaultNRZFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return NewDrawer(d, count, closer), nil
}

// OpenNRZ initializes the host and opens the named SPI port ("" for the first one).
func OpenNRZ(dev string, count int, speedHz int) (*Drawer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	freq := physic.Frequency(speedHz) * physic.Hertz
	d, err := NewNRZ(p, count, freq, p)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return d, nil
}

// NewConsole prints frames to the terminal using ANSI colour blocks.
func NewConsole(count int) *Drawer {
	return NewDrawer(screen.New(count), count, nil)
}

func (d *Drawer) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrClosed
	}
	if err := checkFrame(rgb, d.count); err != nil {
		return err
	}
	for i := 0; i < d.count; i++ {
		d.img.SetNRGBA(i, 0, color.NRGBA{R: rgb[i*3+0], G: rgb[i*3+1], B: rgb[i*3+2], A: 255})
	}
	if err := d.d.Draw(d.d.Bounds(), d.img, image.Point{}); err != nil {
		return fmt.Errorf("draw %s: %w", d.d, err)
	}
	return nil
}

// Close turns the LEDs off and releases the port.
func (d *Drawer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	d.halted = true
	err := d.d.Halt()
	if d.port != nil {
		if cerr := d.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (d *Drawer) String() string { return d.d.String() }
