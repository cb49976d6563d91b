package strip

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	ErrSegment = errors.New("segment out of range")
	ErrPixel   = errors.New("pixel out of range")
)

// RGB is one pixel colour, 8 bits per channel.
type RGB struct {
	R, G, B uint8
}

var (
	Off   = RGB{}
	White = RGB{R: 255, G: 255, B: 255}
)

// NRGBA converts to an opaque image/color value.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex formats the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Buffer is the in-memory image of the strip. The zero value is all off.
// A Buffer is not safe for concurrent use; the controller owns it.
type Buffer struct {
	px [NumPixels]RGB
}

func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Len() int { return NumPixels }

// Pixel returns the colour at absolute index i.
func (b *Buffer) Pixel(i int) (RGB, error) {
	if i < 0 || i >= NumPixels {
		return RGB{}, fmt.Errorf("pixel %d: %w", i, ErrPixel)
	}
	return b.px[i], nil
}

// SetSegment paints every pixel of segment id.
func (b *Buffer) SetSegment(id int, c RGB) error {
	s, ok := SegmentByID(id)
	if !ok {
		return fmt.Errorf("segment %d: %w", id, ErrSegment)
	}
	for i := s.Start; i < s.End; i++ {
		b.px[i] = c
	}
	return nil
}

// SetPixel paints one pixel; idx is relative to the start of segment id.
func (b *Buffer) SetPixel(id, idx int, c RGB) error {
	s, ok := SegmentByID(id)
	if !ok {
		return fmt.Errorf("segment %d: %w", id, ErrSegment)
	}
	if idx < 0 || idx >= s.Len() {
		return fmt.Errorf("segment %d pixel %d: %w", id, idx, ErrPixel)
	}
	b.px[s.Start+idx] = c
	return nil
}

// Fill paints the whole strip.
func (b *Buffer) Fill(c RGB) {
	for i := range b.px {
		b.px[i] = c
	}
}

// Snapshot returns a copy of all pixels.
func (b *Buffer) Snapshot() [NumPixels]RGB { return b.px }

// Bytes returns the frame as packed R,G,B bytes, 3 per pixel.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, NumPixels*3)
	for i, c := range b.px {
		out[i*3+0] = c.R
		out[i*3+1] = c.G
		out[i*3+2] = c.B
	}
	return out
}

// Image renders the strip as a NumPixels x 1 image for display.Drawer sinks.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, NumPixels, 1))
	for i, c := range b.px {
		img.SetNRGBA(i, 0, c.NRGBA())
	}
	return img
}

// FromBytes loads a packed RGB frame. Short frames leave the tail untouched.
func (b *Buffer) FromBytes(rgb []byte) {
	for i := 0; i < NumPixels && i*3+2 < len(rgb); i++ {
		b.px[i] = RGB{R: rgb[i*3+0], G: rgb[i*3+1], B: rgb[i*3+2]}
	}
}
