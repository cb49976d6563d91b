// Package protocol implements the newline-delimited ASCII command set shared by
// the controller and the client.
//
// Canonical line:
//
//	SEG R G B\n        set segment SEG (0..4) to R,G,B (0..255)
//
// Tagged lines:
//
//	S,SEG,R,G,B        set segment
//	P,SEG,IDX,R,G,B    set pixel IDX of segment SEG
//	A,R,G,B            set every pixel
//	0                  all off
//	1                  all white
//
// Tokens may be separated by spaces, tabs or commas.
package protocol

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

var (
	ErrEmpty      = errors.New("empty line")
	ErrMalformed  = errors.New("malformed command")
	ErrOutOfRange = errors.New("value out of range")
)

// Op identifies what a Command does to the buffer.
type Op uint8

const (
	OpSegment Op = iota
	OpPixel
	OpAll
	OpOff
	OpWhite
)

func (o Op) String() string {
	switch o {
	case OpSegment:
		return "segment"
	case OpPixel:
		return "pixel"
	case OpAll:
		return "all"
	case OpOff:
		return "off"
	case OpWhite:
		return "white"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Command is one parsed instruction. Segment and Index are only meaningful for
// OpSegment and OpPixel.
type Command struct {
	Op      Op
	Segment int
	Index   int
	Color   strip.RGB
}

func SetSegment(id int, c strip.RGB) Command {
	return Command{Op: OpSegment, Segment: id, Color: c}
}

func SetPixel(id, idx int, c strip.RGB) Command {
	return Command{Op: OpPixel, Segment: id, Index: idx, Color: c}
}

func SetAll(c strip.RGB) Command { return Command{Op: OpAll, Color: c} }

func AllOff() Command { return Command{Op: OpOff} }

func AllWhite() Command { return Command{Op: OpWhite, Color: strip.White} }

// Validate checks addressing against the fixed segment table.
func (c Command) Validate() error {
	switch c.Op {
	case OpSegment:
		if _, ok := strip.SegmentByID(c.Segment); !ok {
			return fmt.Errorf("segment %d: %w", c.Segment, ErrOutOfRange)
		}
	case OpPixel:
		s, ok := strip.SegmentByID(c.Segment)
		if !ok {
			return fmt.Errorf("segment %d: %w", c.Segment, ErrOutOfRange)
		}
		if c.Index < 0 || c.Index >= s.Len() {
			return fmt.Errorf("segment %d pixel %d: %w", c.Segment, c.Index, ErrOutOfRange)
		}
	case OpAll, OpOff, OpWhite:
	default:
		return fmt.Errorf("%v: %w", c.Op, ErrMalformed)
	}
	return nil
}

// Apply mutates b according to c. c must have passed Validate; an invalid
// command returns an error before anything is written.
func Apply(b *strip.Buffer, c Command) error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.Op {
	case OpSegment:
		return b.SetSegment(c.Segment, c.Color)
	case OpPixel:
		return b.SetPixel(c.Segment, c.Index, c.Color)
	case OpAll:
		b.Fill(c.Color)
	case OpOff:
		b.Fill(strip.Off)
	case OpWhite:
		b.Fill(strip.White)
	}
	return nil
}
