package client

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-segmentlight/internal/firmware"
	"github.com/coreman2200/funtimes-segmentlight/internal/led"
	"github.com/coreman2200/funtimes-segmentlight/internal/protocol"
	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

type fakePort struct {
	bytes.Buffer
	writeErr error
	closed   int
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.Buffer.Write(b)
}

func (p *fakePort) Close() error { p.closed++; return nil }

func (p *fakePort) lines() []string {
	s := strings.TrimSuffix(p.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func connected(t *testing.T) (*Bridge, *fakePort) {
	t.Helper()
	port := &fakePort{}
	var slept time.Duration
	b := NewBridge(
		WithOpener(func(name string, baud int) (Port, error) {
			assert.Equal(t, "/dev/ttyACM0", name)
			assert.Equal(t, 9600, baud)
			return port, nil
		}),
		WithSleep(func(d time.Duration) { slept += d }),
	)
	require.NoError(t, b.Open("/dev/ttyACM0", 9600))
	assert.Equal(t, 2*time.Second, slept)
	return b, port
}

func TestBridgeSendLine(t *testing.T) {
	b, port := connected(t)
	assert.True(t, b.Connected())
	assert.Equal(t, "/dev/ttyACM0", b.Name())

	require.NoError(t, b.SendLine("0 1 2 3"))
	require.NoError(t, b.SendLine("1\n"))
	assert.Equal(t, "0 1 2 3\n1\n", port.String())

	line, err := b.Send(protocol.SetSegment(2, strip.RGB{R: 10, G: 20, B: 30}))
	require.NoError(t, err)
	assert.Equal(t, "2 10 20 30", line)

	_, err = b.Send(protocol.SetSegment(8, strip.White))
	assert.True(t, errors.Is(err, protocol.ErrOutOfRange))

	require.NoError(t, b.Close())
	assert.Equal(t, 1, port.closed)
	assert.False(t, b.Connected())
	assert.True(t, errors.Is(b.SendLine("1"), ErrNotConnected))
}

func TestBridgeOpenFailure(t *testing.T) {
	b := NewBridge(WithOpener(func(string, int) (Port, error) {
		return nil, errors.New("no such device")
	}), WithSettle(0))
	err := b.Open("COM9", 9600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COM9")
	assert.False(t, b.Connected())
}

func TestBridgeReopenClosesPrevious(t *testing.T) {
	first, second := &fakePort{}, &fakePort{}
	ports := []*fakePort{first, second}
	b := NewBridge(WithSettle(0), WithOpener(func(string, int) (Port, error) {
		p := ports[0]
		ports = ports[1:]
		return p, nil
	}))
	require.NoError(t, b.Open("a", 9600))
	require.NoError(t, b.Open("b", 9600))
	assert.Equal(t, 1, first.closed)
	require.NoError(t, b.SendLine("0"))
	assert.Equal(t, "0\n", second.String())
	assert.Empty(t, first.String())
}

func TestBridgeWriteFailureIsReported(t *testing.T) {
	b, port := connected(t)
	port.writeErr = errors.New("device unplugged")
	err := b.SendLine("0 0 0 0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestPanelSetDedupesAndClamps(t *testing.T) {
	b, port := connected(t)
	p := NewPanel(b)

	require.NoError(t, p.Set(1, 300, -5, 128))
	require.NoError(t, p.Set(1, 255, 0, 128)) // same after clamping
	require.NoError(t, p.Set(1, 255, 0, 129))
	assert.Equal(t, []string{"1 255 0 128", "1 255 0 129"}, port.lines())
	assert.Equal(t, "Sent: 1 255 0 129", p.Status())

	sc, err := p.Segment(1)
	require.NoError(t, err)
	last, ok := sc.LastSent()
	assert.True(t, ok)
	assert.Equal(t, strip.RGB{R: 255, B: 129}, last)
	assert.Equal(t, 9, sc.Len)

	assert.True(t, errors.Is(p.Set(5, 0, 0, 0), strip.ErrSegment))
}

func TestPanelFailedSendIsNotRemembered(t *testing.T) {
	b, port := connected(t)
	p := NewPanel(b)
	port.writeErr = errors.New("broken pipe")

	require.Error(t, p.Set(0, 1, 2, 3))
	assert.Contains(t, p.Status(), "broken pipe")
	_, ok := mustSegment(t, p, 0).LastSent()
	assert.False(t, ok)

	port.writeErr = nil
	require.NoError(t, p.Set(0, 1, 2, 3))
	assert.Equal(t, []string{"0 1 2 3"}, port.lines())
}

func TestPanelOnOffAll(t *testing.T) {
	b, port := connected(t)
	p := NewPanel(b)

	require.NoError(t, p.Set(3, 10, 10, 10))
	require.NoError(t, p.Off(3))
	assert.Equal(t, strip.RGB{R: 10, G: 10, B: 10}, mustSegment(t, p, 3).Value)
	require.NoError(t, p.Set(3, 10, 10, 10)) // restores after Off
	require.NoError(t, p.On(4))
	assert.Equal(t, strip.White, mustSegment(t, p, 4).Value)

	require.NoError(t, p.AllOff())
	require.NoError(t, p.Set(4, 255, 255, 255)) // differs from the all-off state
	require.NoError(t, p.AllWhite())
	require.NoError(t, p.AllColor(1, 2, 999))

	assert.Equal(t, []string{
		"3 10 10 10",
		"3 0 0 0",
		"3 10 10 10",
		"4 255 255 255",
		"0",
		"4 255 255 255",
		"1",
		"A,1,2,255",
	}, port.lines())
}

func TestPanelAdjust(t *testing.T) {
	b, port := connected(t)
	p := NewPanel(b)
	require.NoError(t, p.Adjust(2, 1, 16))
	require.NoError(t, p.Adjust(2, 1, -20))
	require.NoError(t, p.Adjust(2, 0, -1)) // clamps to 0, same as current, no send
	assert.Equal(t, []string{"2 0 16 0", "2 0 0 0"}, port.lines())
	assert.Error(t, p.Adjust(2, 3, 1))
}

func TestPanelLinesDriveController(t *testing.T) {
	b, port := connected(t)
	p := NewPanel(b)
	want := map[int]strip.RGB{
		0: {R: 255},
		2: {R: 10, G: 20, B: 30},
		4: {R: 1, G: 254, B: 128},
	}
	for id, c := range want {
		require.NoError(t, p.Set(id, int(c.R), int(c.G), int(c.B)))
	}

	ctl := firmware.New(nil, led.NewSim(strip.NumPixels))
	for _, line := range port.lines() {
		require.True(t, ctl.HandleLine(line), "line %q", line)
	}
	snap := ctl.Snapshot()
	for i, px := range snap {
		c, ok := want[strip.SegmentOf(i)]
		if !ok {
			c = strip.Off
		}
		assert.Equal(t, c, px, "pixel %d", i)
	}
}

func mustSegment(t *testing.T, p *Panel, id int) SegmentControl {
	t.Helper()
	sc, err := p.Segment(id)
	require.NoError(t, err)
	return sc
}
