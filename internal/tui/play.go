// Package tui plays a finished grid run back in the terminal, one
// colored frame per timestep.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"benthosim/internal/field"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	eventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// heat ramps through the 256-color cube from deep blue (depleted) to
// bright yellow (at capacity).
var heat = []string{
	"17", "18", "19", "20", "21", "26", "32", "38",
	"44", "50", "49", "48", "47", "46", "82", "118",
	"154", "190", "226", "220",
}

type model struct {
	stack   *field.Stack
	events  map[int]bool
	lo, hi  float64
	frame   int
	playing bool
	fps     int
}

type tickMsg time.Time

func (m model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "left", "h":
			m.playing = false
			if m.frame > 0 {
				m.frame--
			}
		case "right", "l":
			m.playing = false
			if m.frame < m.stack.Len()-1 {
				m.frame++
			}
		case "r":
			m.frame = 0
			m.playing = true
		}
		return m, nil

	case tickMsg:
		if m.playing {
			if m.frame < m.stack.Len()-1 {
				m.frame++
			} else {
				m.playing = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("benthic biomass playback"))
	b.WriteString("\n\n")

	g := m.stack.Layer(m.frame)
	rows, cols := g.Dims()
	span := m.hi - m.lo
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := 0.0
			if span > 0 {
				v = (g.At(r, c) - m.lo) / span
			}
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			idx := int(v * float64(len(heat)-1))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(heat[idx]))
			b.WriteString(style.Render("██"))
		}
		b.WriteString("\n")
	}

	status := fmt.Sprintf("step %d/%d  mean %.1f", m.frame, m.stack.Len()-1, g.Mean())
	if m.events[m.frame] {
		status += "  " + eventStyle.Render("● removal event")
	}
	if !m.playing {
		status += "  " + dimStyle.Render("paused")
	}
	b.WriteString("\n" + status + "\n")
	b.WriteString(helpStyle.Render("space pause · ←/→ step · r restart · q quit"))
	b.WriteString("\n")

	return b.String()
}

// Play animates the stack at the given frame rate. Events marks the
// timesteps at which a removal was applied, so the playback can flag
// them.
func Play(stack *field.Stack, events []int, fps int) error {
	if fps < 1 {
		fps = 10
	}
	ev := make(map[int]bool, len(events))
	for _, e := range events {
		ev[e] = true
	}
	lo, hi := stack.Bounds()

	m := model{
		stack:   stack,
		events:  ev,
		lo:      lo,
		hi:      hi,
		playing: true,
		fps:     fps,
	}

	_, err := tea.NewProgram(m).Run()
	return err
}
