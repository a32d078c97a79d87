package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/jmarren/fluxion/internal/ode"
	"github.com/jmarren/fluxion/internal/steppers"
)

const (
	graphWidth      = 60
	graphHeight     = 10
	historyCapacity = 600
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

// Model steps a system forward in real time and charts one component
// of its trajectory.
type Model struct {
	sys     *ode.System
	stepper steppers.Stepper
	dt      float64

	state     ode.State
	t         float64
	step      int
	component int
	perFrame  int
	running   bool
	done      bool

	history []float64
}

func NewModel(sys *ode.System, st steppers.Stepper, dt float64) Model {
	return Model{
		sys:      sys,
		stepper:  st,
		dt:       dt,
		state:    sys.Initial.Clone(),
		t:        sys.TStart,
		perFrame: 1,
		running:  true,
		history:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.component = (m.component + 1) % m.sys.Dimension
			m.history = m.history[:0]
		case "up", "k":
			if m.perFrame < 256 {
				m.perFrame *= 2
			}
		case "down", "j":
			if m.perFrame > 1 {
				m.perFrame /= 2
			}
		}
	case tickMsg:
		if m.running && !m.done {
			for i := 0; i < m.perFrame && !m.done; i++ {
				m.advance()
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m *Model) advance() {
	if m.t >= m.sys.TEnd {
		m.done = true
		return
	}
	m.state = m.stepper.Step(m.sys, m.t, m.dt, m.state)
	m.t += m.dt
	m.step++
	m.record()
}

func (m *Model) record() {
	m.history = append(m.history, m.state[m.component])
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) reset() {
	m.state = m.sys.Initial.Clone()
	m.t = m.sys.TStart
	m.step = 0
	m.done = false
	m.history = m.history[:0]
}

func (m Model) View() string {
	var chart string
	if len(m.history) > 1 {
		chart = asciigraph.Plot(m.history,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(fmt.Sprintf("y%d(t)", m.component)))
	} else {
		chart = "collecting samples..."
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.sys.Name)) + "\n")
	status := "RUNNING"
	if m.done {
		status = "DONE"
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")
	s.WriteString(labelStyle.Render("Stepper") + valueStyle.Render(m.stepper.Name()) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f / %.3f", m.t, m.sys.TEnd)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d (dt=%g)", m.step, m.dt)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d steps/frame", m.perFrame)) + "\n")
	for i, v := range m.state {
		if i >= 4 {
			s.WriteString(labelStyle.Render("...") + "\n")
			break
		}
		s.WriteString(labelStyle.Render(fmt.Sprintf("y%d", i)) + valueStyle.Render(fmt.Sprintf("%+.6f", v)) + "\n")
	}
	if m.sys.Analytical != nil {
		exact := m.sys.Analytical(m.t)
		errNorm := 0.0
		for i := range m.state {
			if d := math.Abs(m.state[i] - exact[i]); d > errNorm {
				errNorm = d
			}
		}
		s.WriteString(labelStyle.Render("Error") + valueStyle.Render(fmt.Sprintf("%.3e", errNorm)) + "\n")
	}
	s.WriteString(helpStyle.Render("space:pause  r:reset  tab:component  j/k:speed  q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		graphStyle.Render(chart),
		statsStyle.Render(s.String()))
}

// Run drives the live view until the user quits.
func Run(sys *ode.System, st steppers.Stepper, dt float64) error {
	_, err := tea.NewProgram(NewModel(sys, st, dt)).Run()
	return err
}
