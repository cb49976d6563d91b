package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-segmentlight/internal/client"
	"github.com/coreman2200/funtimes-segmentlight/internal/protocol"
	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

type recorder struct {
	lines []string
	err   error
}

func (r *recorder) Send(cmd protocol.Command) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	line, err := protocol.Format(cmd)
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	r.lines = append(r.lines, line)
	return line, nil
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestNavigationWraps(t *testing.T) {
	m := New(client.NewPanel(&recorder{}), "test")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	seg, ch := m.Selected()
	assert.Equal(t, strip.NumSegments-1, seg)
	assert.Equal(t, 0, ch)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	seg, _ = m.Selected()
	assert.Equal(t, 1, seg)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	_, ch = m.Selected()
	assert.Equal(t, 2, ch)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	_, ch = m.Selected()
	assert.Equal(t, 0, ch)
}

func TestEachChangeSendsOneLine(t *testing.T) {
	rec := &recorder{}
	m := New(client.NewPanel(rec), "test")

	m = press(t, m,
		tea.KeyMsg{Type: tea.KeyDown},  // segment 1
		tea.KeyMsg{Type: tea.KeyRight}, // R 1
		runes("]"),                     // R 17
		tea.KeyMsg{Type: tea.KeyTab},   // G
		runes("l"),                     // G 1
		tea.KeyMsg{Type: tea.KeyLeft},  // G 0
		tea.KeyMsg{Type: tea.KeyLeft},  // clamped, no change
	)
	assert.Equal(t, []string{"1 1 0 0", "1 17 0 0", "1 17 1 0", "1 17 0 0"}, rec.lines)

	m = press(t, m, runes("o"), runes("f"), runes("a"), runes("z"))
	assert.Equal(t, []string{"1 255 255 255", "1 0 0 0", "1", "0"}, rec.lines[4:])

	view := m.View()
	assert.Contains(t, view, "Segment 0 (8 LEDs)")
	assert.Contains(t, view, "Segment 4 (9 LEDs)")
	assert.Contains(t, view, "Sent: 0")
}

func TestSendErrorShownInStatus(t *testing.T) {
	rec := &recorder{err: errors.New("not connected")}
	m := New(client.NewPanel(rec), "test")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Empty(t, rec.lines)
	assert.Contains(t, m.View(), "Error: not connected")
}

func TestQuit(t *testing.T) {
	m := New(client.NewPanel(&recorder{}), "test")
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(k)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok)
	}

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)
}
