// Package tui is a terminal colour picker: one control per segment, three
// channels each. Every change is sent as one command line.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/coreman2200/funtimes-segmentlight/internal/client"
	"github.com/coreman2200/funtimes-segmentlight/internal/strip"
)

const (
	fineStep   = 1
	coarseStep = 16
)

var channelNames = [3]string{"R", "G", "B"}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type Model struct {
	panel   *client.Panel
	title   string
	seg     int
	channel int
}

func New(p *client.Panel, title string) Model {
	return Model{panel: p, title: title}
}

// Selected returns the focused segment and channel.
func (m Model) Selected() (seg, channel int) { return m.seg, m.channel }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	// Send errors land in the panel status line.
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.seg = (m.seg + strip.NumSegments - 1) % strip.NumSegments
	case "down", "j":
		m.seg = (m.seg + 1) % strip.NumSegments
	case "tab":
		m.channel = (m.channel + 1) % 3
	case "shift+tab":
		m.channel = (m.channel + 2) % 3
	case "left", "h":
		_ = m.panel.Adjust(m.seg, m.channel, -fineStep)
	case "right", "l":
		_ = m.panel.Adjust(m.seg, m.channel, fineStep)
	case "shift+left", "[":
		_ = m.panel.Adjust(m.seg, m.channel, -coarseStep)
	case "shift+right", "]":
		_ = m.panel.Adjust(m.seg, m.channel, coarseStep)
	case "o":
		_ = m.panel.On(m.seg)
	case "f":
		_ = m.panel.Off(m.seg)
	case "a":
		_ = m.panel.AllWhite()
	case "z":
		_ = m.panel.AllOff()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for _, sc := range m.panel.Segments() {
		cursor := "  "
		if sc.ID == m.seg {
			cursor = cursorStyle.Render("> ")
		}
		b.WriteString(cursor)
		fmt.Fprintf(&b, "Segment %d (%d LEDs)  ", sc.ID, sc.Len)

		vals := [3]uint8{sc.Value.R, sc.Value.G, sc.Value.B}
		for i, v := range vals {
			cell := fmt.Sprintf("%s %3d", channelNames[i], v)
			if sc.ID == m.seg && i == m.channel {
				cell = selectedStyle.Render(cell)
			}
			b.WriteString(cell)
			b.WriteString("  ")
		}

		shown := sc.Value
		if last, ok := sc.LastSent(); ok {
			shown = last
		}
		b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(shown.Hex())).Render("      "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := "Status: " + m.panel.Status()
	if strings.HasPrefix(m.panel.Status(), "Error") {
		b.WriteString(errorStyle.Render(status))
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ segment  tab channel  ←/→ ±1  [/] ±16  o/f on/off  a/z all on/off  q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the picker on the terminal and blocks until the user quits.
func Run(p *client.Panel, title string) error {
	_, err := tea.NewProgram(New(p, title)).Run()
	return err
}
