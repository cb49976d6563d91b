package led

import "fmt"

// Order is the wire order of colour channels, e.g. "GRB" for WS2812.
type Order [3]byte

var DefaultOrder = Order{'G', 'R', 'B'}

// ParseOrder validates a three letter permutation of R, G and B.
func ParseOrder(s string) (Order, error) {
	if s == "" {
		return DefaultOrder, nil
	}
	if len(s) != 3 {
		return Order{}, fmt.Errorf("color order %q: want 3 letters", s)
	}
	var o Order
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		c := s[i] &^ 0x20 // upper case
		if c != 'R' && c != 'G' && c != 'B' || seen[c] {
			return Order{}, fmt.Errorf("color order %q: want a permutation of RGB", s)
		}
		seen[c] = true
		o[i] = c
	}
	return o, nil
}

func (o Order) String() string { return string(o[:]) }

// minLatchBytes of zeros follow every frame to latch the chain.
const minLatchBytes = 128

// Encoder expands RGB frames into a WS2812-over-SPI bit stream: each data bit
// becomes three SPI bits, 110 for one and 100 for zero, MSB first.
type Encoder struct {
	count   int
	order   Order
	resetUs int
	lut     [256][3]byte
}

func NewEncoder(count int, order Order, resetUs int) *Encoder {
	if resetUs <= 0 {
		resetUs = 300
	}
	e := &Encoder{count: count, order: order, resetUs: resetUs}
	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			if (v>>i)&1 == 1 {
				out = out<<3 | 0b110
			} else {
				out = out<<3 | 0b100
			}
		}
		e.lut[v] = [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
	}
	return e
}

// LatchBytes is the number of trailing zero bytes appended to a frame.
func (e *Encoder) LatchBytes() int {
	n := (e.resetUs + 2) / 3
	if n < minLatchBytes {
		n = minLatchBytes
	}
	return n
}

// Encode returns the SPI payload for one frame, latch tail included.
func (e *Encoder) Encode(rgb []byte) ([]byte, error) {
	if err := checkFrame(rgb, e.count); err != nil {
		return nil, err
	}
	out := make([]byte, e.count*9+e.LatchBytes())
	for i := 0; i < e.count; i++ {
		r, g, b := rgb[i*3+0], rgb[i*3+1], rgb[i*3+2]
		for j, ch := range e.order {
			var v byte
			switch ch {
			case 'R':
				v = r
			case 'G':
				v = g
			case 'B':
				v = b
			}
			copy(out[i*9+j*3:], e.lut[v][:])
		}
	}
	return out, nil
}
