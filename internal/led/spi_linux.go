//go:build linux

package led

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"
)

const (
	spiIOCWriteMode        = 0x40016b01
	spiIOCWriteBitsPerWord = 0x40016b03
	spiIOCWriteMaxSpeedHz  = 0x40046b04
)

// SPI writes encoded frames straight to a spidev node.
type SPI struct {
	mu  sync.Mutex
	f   *os.File
	enc *Encoder
}

// NewSPI opens spidev (e.g. "/dev/spidev0.0"). speedHz in the 2.4–3.2 MHz range
// suits the 3x expansion; resetUs is the latch time (>= 280µs).
func NewSPI(spiDev string, count int, order Order, speedHz int, resetUs int) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if speedHz <= 0 {
		speedHz = 2400000
	}
	f, err := os.OpenFile(spiDev, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open spidev: %w", err)
	}
	mode := byte(0)
	bpw := byte(8)
	speed := uint32(speedHz)
	for _, op := range []struct {
		name string
		req  uintptr
		arg  unsafe.Pointer
	}{
		{"mode", spiIOCWriteMode, unsafe.Pointer(&mode)},
		{"bits-per-word", spiIOCWriteBitsPerWord, unsafe.Pointer(&bpw)},
		{"speed", spiIOCWriteMaxSpeedHz, unsafe.Pointer(&speed)},
	} {
		if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), op.req, uintptr(op.arg)); e != 0 {
			_ = f.Close()
			return nil, fmt.Errorf("SPI set %s: %v", op.name, e)
		}
	}
	return &SPI{f: f, enc: NewEncoder(count, order, resetUs)}, nil
}

func (s *SPI) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	buf, err := s.enc.Encode(rgb)
	if err != nil {
		return err
	}
	if _, err := s.f.Write(buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
