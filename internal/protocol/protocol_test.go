package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

func TestParseAccepted(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{"canonical", "2 10 20 30", SetSegment(2, strip.RGB{R: 10, G: 20, B: 30})},
		{"canonical newline", "0 255 0 0\n", SetSegment(0, strip.RGB{R: 255})},
		{"crlf", "4 1 2 3\r\n", SetSegment(4, strip.RGB{R: 1, G: 2, B: 3})},
		{"tabs and padding", "  3\t0 0   9 ", SetSegment(3, strip.RGB{B: 9})},
		{"tagged segment", "S,1,255,1,128", SetSegment(1, strip.RGB{R: 255, G: 1, B: 128})},
		{"tagged lowercase", "s,1,0,0,0", SetSegment(1, strip.RGB{})},
		{"pixel", "P,4,8,1,2,3", SetPixel(4, 8, strip.RGB{R: 1, G: 2, B: 3})},
		{"all", "A,9,8,7", SetAll(strip.RGB{R: 9, G: 8, B: 7})},
		{"all off", "0", AllOff()},
		{"all white", "1\n", AllWhite()},
		{"leading zeros", "000 007 010 255", SetSegment(0, strip.RGB{R: 7, G: 10, B: 255})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejected(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"empty", "", ErrEmpty},
		{"blank", "  \r\n", ErrEmpty},
		{"segment out of range", "9 10 10 10", ErrOutOfRange},
		{"channel out of range", "1 300 0 0", ErrOutOfRange},
		{"too many digits", "1 0255 0 0", ErrOutOfRange},
		{"non numeric", "abc 1 2 3", ErrMalformed},
		{"negative", "1 -1 0 0", ErrMalformed},
		{"signed", "1 +1 0 0", ErrMalformed},
		{"hex", "1 0x1 0 0", ErrMalformed},
		{"too few", "1 2 3", ErrMalformed},
		{"too many", "1 2 3 4 5", ErrMalformed},
		{"unknown single", "2", ErrMalformed},
		{"tag short", "S,1,2,3", ErrMalformed},
		{"pixel past segment end", "P,0,8,1,1,1", ErrOutOfRange},
		{"pixel bad segment", "P,5,0,1,1,1", ErrOutOfRange},
		{"all short", "A,1,2", ErrMalformed},
		{"unknown tag", "X,1,2,3", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestApply(t *testing.T) {
	b := strip.NewBuffer()
	require.NoError(t, Apply(b, SetAll(strip.RGB{R: 5})))
	require.NoError(t, Apply(b, SetSegment(1, strip.RGB{G: 6})))
	require.NoError(t, Apply(b, SetPixel(1, 0, strip.RGB{B: 7})))

	px, _ := b.Pixel(7)
	assert.Equal(t, strip.RGB{R: 5}, px)
	px, _ = b.Pixel(8)
	assert.Equal(t, strip.RGB{B: 7}, px)
	px, _ = b.Pixel(16)
	assert.Equal(t, strip.RGB{G: 6}, px)

	require.NoError(t, Apply(b, AllWhite()))
	px, _ = b.Pixel(43)
	assert.Equal(t, strip.White, px)
	require.NoError(t, Apply(b, AllOff()))
	assert.Equal(t, strip.NewBuffer().Snapshot(), b.Snapshot())
}

func TestApplyInvalidLeavesBufferAlone(t *testing.T) {
	b := strip.NewBuffer()
	b.Fill(strip.RGB{R: 1, G: 1, B: 1})
	before := b.Snapshot()

	assert.Error(t, Apply(b, SetSegment(7, strip.White)))
	assert.Error(t, Apply(b, SetPixel(2, 9, strip.White)))
	assert.Equal(t, before, b.Snapshot())
}

func TestFormatRoundTrip(t *testing.T) {
	cmds := []Command{AllOff(), AllWhite(), SetAll(strip.RGB{R: 1, G: 2, B: 3})}
	for seg := 0; seg < strip.NumSegments; seg++ {
		for _, c := range []strip.RGB{{}, strip.White, {R: 10, G: 20, B: 30}, {R: 255, B: 1}} {
			cmds = append(cmds, SetSegment(seg, c))
		}
		cmds = append(cmds, SetPixel(seg, strip.Segments[seg].Len()-1, strip.RGB{G: 99}))
	}
	for _, c := range cmds {
		line, err := Format(c)
		require.NoError(t, err)
		assert.Equal(t, byte('\n'), line[len(line)-1])
		got, err := Parse(line)
		require.NoError(t, err, "line %q", line)
		assert.Equal(t, c, got)
	}
}

func TestFormatCanonicalSegment(t *testing.T) {
	line, err := Format(SetSegment(2, strip.RGB{R: 10, G: 20, B: 30}))
	require.NoError(t, err)
	assert.Equal(t, "2 10 20 30\n", line)

	_, err = Format(SetSegment(5, strip.White))
	assert.True(t, errors.Is(err, ErrOutOfRange))
}
