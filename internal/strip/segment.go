package strip

const (
	NumPixels   = 44
	NumSegments = 5
)

// Segment is a half-open pixel range [Start, End) addressed as a unit.
type Segment struct {
	ID    int
	Start int
	End   int
}

// Len returns the number of pixels in the segment.
func (s Segment) Len() int { return s.End - s.Start }

// Contains reports whether pixel index i lies in the segment.
func (s Segment) Contains(i int) bool { return i >= s.Start && i < s.End }

// Segments is the fixed partition of the strip: 8 pixels, then four runs of 9.
var Segments = [NumSegments]Segment{
	{ID: 0, Start: 0, End: 8},
	{ID: 1, Start: 8, End: 17},
	{ID: 2, Start: 17, End: 26},
	{ID: 3, Start: 26, End: 35},
	{ID: 4, Start: 35, End: 44},
}

// SegmentByID looks up a segment, returning false for ids outside 0..4.
func SegmentByID(id int) (Segment, bool) {
	if id < 0 || id >= NumSegments {
		return Segment{}, false
	}
	return Segments[id], true
}

// SegmentOf maps a pixel index to its owning segment id, or -1.
func SegmentOf(pixel int) int {
	for _, s := range Segments {
		if s.Contains(pixel) {
			return s.ID
		}
	}
	return -1
}

// Lens returns the pixel count of every segment in id order.
func Lens() [NumSegments]int {
	var out [NumSegments]int
	for i, s := range Segments {
		out[i] = s.Len()
	}
	return out
}
