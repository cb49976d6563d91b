package protocol

import "fmt"

// Format renders c as a single newline-terminated line that Parse accepts.
// Segment sets use the canonical "SEG R G B" form.
func Format(c Command) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	switch c.Op {
	case OpSegment:
		return fmt.Sprintf("%d %d %d %d\n", c.Segment, c.Color.R, c.Color.G, c.Color.B), nil
	case OpPixel:
		return fmt.Sprintf("P,%d,%d,%d,%d,%d\n", c.Segment, c.Index, c.Color.R, c.Color.G, c.Color.B), nil
	case OpAll:
		return fmt.Sprintf("A,%d,%d,%d\n", c.Color.R, c.Color.G, c.Color.B), nil
	case OpOff:
		return "0\n", nil
	case OpWhite:
		return "1\n", nil
	}
	return "", fmt.Errorf("%v: %w", c.Op, ErrMalformed)
}
