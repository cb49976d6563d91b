package client

import (
	"fmt"

	"github.com/coreman2200/funtimes-segmentlight/internal/protocol"
	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

// Sender writes one command line. *Bridge implements it.
type Sender interface {
	Send(cmd protocol.Command) (string, error)
}

// SegmentControl is the client view of one segment: the value picked by the
// user and the value last accepted by the port.
type SegmentControl struct {
	ID    int
	Len   int
	Value strip.RGB

	last strip.RGB
	sent bool
}

// LastSent returns the last colour written for this segment.
func (s SegmentControl) LastSent() (strip.RGB, bool) { return s.last, s.sent }

// Panel holds the five segment controls and turns each user action into at
// most one command line.
type Panel struct {
	out    Sender
	segs   [strip.NumSegments]SegmentControl
	status string
}

func NewPanel(out Sender) *Panel {
	p := &Panel{out: out, status: "Disconnected"}
	for i, s := range strip.Segments {
		p.segs[i] = SegmentControl{ID: s.ID, Len: s.Len()}
	}
	return p
}

// Clamp limits a picker value to a channel byte.
func Clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (p *Panel) Segment(id int) (SegmentControl, error) {
	if _, ok := strip.SegmentByID(id); !ok {
		return SegmentControl{}, fmt.Errorf("segment %d: %w", id, strip.ErrSegment)
	}
	return p.segs[id], nil
}

func (p *Panel) Segments() [strip.NumSegments]SegmentControl { return p.segs }

// Status is a one line description of the last action.
func (p *Panel) Status() string { return p.status }

// Set picks a colour for a segment and sends it unless it matches what the
// segment last sent.
func (p *Panel) Set(id, r, g, b int) error {
	if _, ok := strip.SegmentByID(id); !ok {
		return fmt.Errorf("segment %d: %w", id, strip.ErrSegment)
	}
	c := strip.RGB{R: Clamp(r), G: Clamp(g), B: Clamp(b)}
	seg := &p.segs[id]
	seg.Value = c
	if seg.sent && seg.last == c {
		return nil
	}
	if err := p.send(protocol.SetSegment(id, c)); err != nil {
		return err
	}
	seg.last, seg.sent = c, true
	return nil
}

// Adjust nudges one channel (0=R, 1=G, 2=B) of a segment by delta and sends.
func (p *Panel) Adjust(id, channel, delta int) error {
	sc, err := p.Segment(id)
	if err != nil {
		return err
	}
	v := [3]int{int(sc.Value.R), int(sc.Value.G), int(sc.Value.B)}
	if channel < 0 || channel > 2 {
		return fmt.Errorf("channel %d: %w", channel, protocol.ErrOutOfRange)
	}
	v[channel] += delta
	return p.Set(id, v[0], v[1], v[2])
}

// On sets a segment to full white.
func (p *Panel) On(id int) error {
	if _, ok := strip.SegmentByID(id); !ok {
		return fmt.Errorf("segment %d: %w", id, strip.ErrSegment)
	}
	if err := p.send(protocol.SetSegment(id, strip.White)); err != nil {
		return err
	}
	p.segs[id].Value = strip.White
	p.segs[id].last, p.segs[id].sent = strip.White, true
	return nil
}

// Off darkens a segment but keeps the picked value, so Set can restore it.
func (p *Panel) Off(id int) error {
	if _, ok := strip.SegmentByID(id); !ok {
		return fmt.Errorf("segment %d: %w", id, strip.ErrSegment)
	}
	if err := p.send(protocol.SetSegment(id, strip.Off)); err != nil {
		return err
	}
	p.segs[id].last, p.segs[id].sent = strip.Off, true
	return nil
}

func (p *Panel) AllColor(r, g, b int) error {
	c := strip.RGB{R: Clamp(r), G: Clamp(g), B: Clamp(b)}
	return p.sendAll(protocol.SetAll(c), c)
}

func (p *Panel) AllOff() error { return p.sendAll(protocol.AllOff(), strip.Off) }

func (p *Panel) AllWhite() error { return p.sendAll(protocol.AllWhite(), strip.White) }

func (p *Panel) sendAll(cmd protocol.Command, c strip.RGB) error {
	if err := p.send(cmd); err != nil {
		return err
	}
	for i := range p.segs {
		p.segs[i].last, p.segs[i].sent = c, true
	}
	return nil
}

func (p *Panel) send(cmd protocol.Command) error {
	line, err := p.out.Send(cmd)
	if err != nil {
		p.status = "Error: " + err.Error()
		return err
	}
	p.status = "Sent: " + line
	return nil
}
