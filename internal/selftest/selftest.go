package selftest

import (
	"fmt"

	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

type Kind string

const (
	None         Kind = ""
	IndexSweep   Kind = "index_sweep"
	RGBChannels  Kind = "rgb_channels"
	SegmentSweep Kind = "segment_sweep"
)

func Kinds() []Kind { return []Kind{SegmentSweep, RGBChannels, IndexSweep} }

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown self test %q", s)
}

type Plan struct {
	Kind  Kind
	Color strip.RGB // sweep colour; white when zero
}

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner {
	if plan.Color == (strip.RGB{}) {
		plan.Color = strip.White
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Steps is the number of frames the plan produces.
func (r *Runner) Steps() int {
	switch r.plan.Kind {
	case IndexSweep:
		return strip.NumPixels
	case RGBChannels:
		return 3
	case SegmentSweep:
		return strip.NumSegments
	}
	return 0
}

// Step paints the next frame into b; returns false when complete.
func (r *Runner) Step(b *strip.Buffer) bool {
	if r.step >= r.Steps() {
		return false
	}
	b.Fill(strip.Off)

	switch r.plan.Kind {
	case IndexSweep:
		seg := strip.SegmentOf(r.step)
		_ = b.SetPixel(seg, r.step-strip.Segments[seg].Start, r.plan.Color)
	case RGBChannels:
		b.Fill([3]strip.RGB{{R: 255}, {G: 255}, {B: 255}}[r.step])
	case SegmentSweep:
		_ = b.SetSegment(r.step, r.plan.Color)
	}
	r.step++
	return true
}
