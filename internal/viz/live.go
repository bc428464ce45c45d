package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gripsim/internal/gripper"
	"github.com/san-kum/gripsim/internal/sim"
)

const (
	historyCapacity = 600
	frameRate       = 60
	wristStep       = 0.05
	openingStep     = 0.05
)

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model runs the closed loop interactively: the keyboard plays the role of
// the asynchronous command publishers, writing the same cell the control
// tick reads.
type Model struct {
	plant   sim.System
	integ   sim.Integrator
	manager *gripper.Manager
	cell    *gripper.Cell

	state        sim.State
	initialState sim.State
	held         gripper.Forces
	t            float64
	dt           float64
	controlEvery int
	stepCount    int
	running      bool

	openingHistory []float64
	wristHistory   []float64
	forceHistory   [][]float64

	params    map[string]float64
	paramKeys []string
	selected  int
}

// NewModel initializes the interactive loop from a validated sim config.
func NewModel(plant sim.System, integ sim.Integrator, manager *gripper.Manager, cell *gripper.Cell, x0 sim.State, cfg sim.Config) Model {
	params := manager.GetParams()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	controlEvery := int(cfg.ControlPeriod()/cfg.Dt + 0.5)
	if controlEvery < 1 {
		controlEvery = 1
	}

	return Model{
		plant:          plant,
		integ:          integ,
		manager:        manager,
		cell:           cell,
		state:          x0.Clone(),
		initialState:   x0.Clone(),
		dt:             cfg.Dt,
		controlEvery:   controlEvery,
		running:        true,
		openingHistory: make([]float64, 0, historyCapacity),
		wristHistory:   make([]float64, 0, historyCapacity),
		forceHistory:   make([][]float64, 3),
		params:         params,
		paramKeys:      keys,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
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
		case "o":
			m.cell.SetFingerOpening(m.cell.Snapshot().FingerOpening + openingStep)
		case "c":
			opening := m.cell.Snapshot().FingerOpening - openingStep
			if opening < 0 {
				opening = 0
			}
			m.cell.SetFingerOpening(opening)
		case "a":
			m.cell.SetWrist(m.cell.Snapshot().Wrist - wristStep)
		case "d":
			m.cell.SetWrist(m.cell.Snapshot().Wrist + wristStep)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running {
			m.advanceFrame()
		}
		return m, tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// advanceFrame steps the simulation in real time: enough physics steps to
// cover one display frame.
func (m *Model) advanceFrame() {
	steps := int(1.0 / frameRate / m.dt)
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if m.stepCount%m.controlEvery == 0 {
			desired := m.cell.Snapshot().Desired()
			m.held = m.manager.GetForces(desired, sim.Pose(m.state))
			m.record()
		}
		u := sim.Control{m.held.Wrist, m.held.LeftFinger, m.held.RightFinger}
		next := m.integ.Step(m.plant, m.state, u, m.t, m.dt)
		if !next.IsValid() {
			m.running = false
			return
		}
		m.state = next
		m.t += m.dt
		m.stepCount++
	}
}

func (m *Model) record() {
	pose := sim.Pose(m.state)
	m.openingHistory = appendBounded(m.openingHistory, pose.LeftFinger-pose.RightFinger)
	m.wristHistory = appendBounded(m.wristHistory, pose.Wrist)
	for i, f := range []float64{m.held.Wrist, m.held.LeftFinger, m.held.RightFinger} {
		m.forceHistory[i] = appendBounded(m.forceHistory[i], f)
	}
}

func appendBounded(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) reset() {
	m.state = m.initialState.Clone()
	m.held = gripper.Forces{}
	m.t = 0
	m.stepCount = 0
	m.manager.Reset()
	m.openingHistory = m.openingHistory[:0]
	m.wristHistory = m.wristHistory[:0]
	for i := range m.forceHistory {
		m.forceHistory[i] = nil
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key]
	if val == 0 {
		val = 0.01
	}
	newVal := val * factor
	if err := m.manager.SetParam(key, newVal); err == nil {
		m.params[key] = newVal
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("GRIPPER") + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.openingHistory) > 1 {
		chart := asciigraph.Plot(m.openingHistory, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("finger opening (rad)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.wristHistory) > 1 {
		chart := asciigraph.Plot(m.wristHistory, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("wrist angle (rad)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.forceHistory[0]) > 1 {
		chart := asciigraph.PlotMany(m.forceHistory, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("forces: wrist / left / right (N)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	cmd := m.cell.Snapshot()
	pose := sim.Pose(m.state)
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Wrist") + valueStyle.Render(fmt.Sprintf("%8.3f rad (target %.3f)", pose.Wrist, cmd.Wrist)) + "\n")
	s.WriteString(labelStyle.Render("Opening") + valueStyle.Render(fmt.Sprintf("%8.3f rad (target %.3f)", pose.LeftFinger-pose.RightFinger, cmd.FingerOpening)) + "\n")
	s.WriteString(labelStyle.Render("Forces") + valueStyle.Render(fmt.Sprintf("%6.2f %6.2f %6.2f N", m.held.Wrist, m.held.LeftFinger, m.held.RightFinger)) + "\n")

	if len(m.paramKeys) > 0 {
		s.WriteString("\nGAINS\n")
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-12s %.4f", k, m.params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + line + "\n")
			}
		}
	}

	s.WriteString(helpStyle.Render("o/c open/close  a/d wrist  tab/↑/↓ tune  space pause  r reset  q quit"))
	return s.String()
}
