package ui

import (
	"strconv"
	"time"

	"github.com/pzielke/ghosthand/internal/engine"
	"github.com/pzielke/ghosthand/internal/pattern"

	tea "github.com/charmbracelet/bubbletea"
)

// state represents the different states of the TUI.
type state int

const (
	stateMenu state = iota
	stateTimedInput
	stateRecording
	stateRunning
)

// Model holds the current state of the UI, including user input and the
// replay engine.
type Model struct {
	State        state
	Selected     int
	Input        string
	Engine       *engine.Engine
	ErrorMessage string
	StartTime    time.Time
	Duration     time.Duration
	ShowHelp     bool
	version      string

	// Record captures a fresh pattern through the platform listener and
	// persists it. Supplied by main; nil disables the menu entry.
	Record func() (pattern.Pattern, error)
}

// InitialModel returns the initial model for the TUI. The engine may be
// nil when only the help view is rendered.
func InitialModel(eng *engine.Engine) Model {
	return Model{
		State:    stateMenu,
		Selected: 0,
		Input:    "",
		Engine:   eng,
		ShowHelp: false,
	}
}

// InitialModelWithDuration returns a model already running a timed
// session of the given length.
func InitialModelWithDuration(eng *engine.Engine, d time.Duration) Model {
	m := InitialModel(eng)
	m.Input = strconv.Itoa(int(d.Minutes()))
	m.State = stateRunning
	m.StartTime = time.Now()
	m.Duration = d

	if err := m.Engine.StartTimed(d); err != nil {
		m.ErrorMessage = err.Error()
		m.State = stateMenu
		return m
	}
	return m
}

// SetVersion sets the version string shown in the help view.
func (m *Model) SetVersion(version string) {
	m.version = version
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	if m.State == stateRunning {
		return tick()
	}
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := Update(msg, m)
	return newModel, cmd
}

// View implements tea.Model
func (m Model) View() string {
	return View(m)
}

// TimeRemaining returns the remaining duration for a timed session.
func (m Model) TimeRemaining() time.Duration {
	if m.State != stateRunning || m.Duration == 0 {
		return 0
	}
	elapsed := time.Since(m.StartTime)
	remaining := m.Duration - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
