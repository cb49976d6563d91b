package led

import "errors"

var (
	ErrFrameSize = errors.New("frame size does not match pixel count")
	ErrClosed    = errors.New("driver closed")
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

func checkFrame(rgb []byte, count int) error {
	if len(rgb) != count*3 {
		return ErrFrameSize
	}
	return nil
}
