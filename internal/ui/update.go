package ui

import (
	"strconv"
	"time"
	"unicode"

	"github.com/pzielke/ghosthand/internal/pattern"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg is sent when the status refresh timer ticks
type tickMsg time.Time

// recordDoneMsg is sent when a recording session finishes.
type recordDoneMsg struct {
	pattern pattern.Pattern
	err     error
}

func recordCmd(capture func() (pattern.Pattern, error)) tea.Cmd {
	return func() tea.Msg {
		p, err := capture()
		return recordDoneMsg{pattern: p, err: err}
	}
}

// Update handles messages and updates the model accordingly.
func Update(msg tea.Msg, m Model) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok && m.ShowHelp {
		switch key.String() {
		case "q", "esc", "h", "?":
			m.ShowHelp = false
		}
		return m, nil
	}

	switch m.State {
	case stateMenu:
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "up", "k":
				if m.Selected > 0 {
					m.Selected--
				}
			case "down", "j":
				if m.Selected < 3 {
					m.Selected++
				}
			case "h", "?":
				m.ShowHelp = true
				return m, nil
			case "enter", " ":
				switch m.Selected {
				case 0:
					// Indefinite replay loop
					if err := m.Engine.StartIndefinite(); err != nil {
						m.ErrorMessage = err.Error()
						return m, nil
					}
					m.State = stateRunning
					m.Duration = 0
					m.StartTime = time.Now()
					m.ErrorMessage = ""
					return m, tick()
				case 1:
					// Timed input
					m.State = stateTimedInput
					m.Input = ""
					m.ErrorMessage = ""
					return m, nil
				case 2:
					// Record a fresh pattern
					if m.Record == nil {
						m.ErrorMessage = "recording is not available"
						return m, nil
					}
					m.State = stateRecording
					m.ErrorMessage = ""
					return m, recordCmd(m.Record)
				case 3:
					// Quit
					if m.Engine != nil && m.Engine.IsRunning() {
						if err := m.Engine.Stop(); err != nil {
							m.ErrorMessage = err.Error()
							return m, nil
						}
					}
					return m, tea.Quit
				}
			case "q", "esc", "ctrl+c":
				return m, tea.Quit
			}
		}

	case stateTimedInput:
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "enter":
				if m.Input == "" {
					m.ErrorMessage = "Please enter a duration"
					return m, nil
				}
				minutes, err := strconv.Atoi(m.Input)
				if err != nil {
					m.ErrorMessage = "Invalid duration"
					return m, nil
				}
				if minutes <= 0 {
					m.ErrorMessage = "Duration must be positive"
					return m, nil
				}
				d := time.Duration(minutes) * time.Minute
				if err := m.Engine.StartTimed(d); err != nil {
					m.ErrorMessage = err.Error()
					return m, nil
				}
				m.State = stateRunning
				m.StartTime = time.Now()
				m.Duration = d
				m.ErrorMessage = ""
				return m, tick()
			case "esc":
				m.State = stateMenu
				m.ErrorMessage = ""
				return m, nil
			case "backspace":
				if len(m.Input) > 0 {
					m.Input = m.Input[:len(m.Input)-1]
					m.ErrorMessage = ""
				}
				return m, nil
			default:
				if len(msg.String()) == 1 && unicode.IsDigit(rune(msg.String()[0])) {
					if len(m.Input) < 4 { // Limit input to 4 digits
						m.Input += msg.String()
						m.ErrorMessage = ""
					}
				}
				return m, nil
			}
		}

	case stateRecording:
		switch msg := msg.(type) {
		case recordDoneMsg:
			m.State = stateMenu
			if msg.err != nil {
				m.ErrorMessage = msg.err.Error()
				return m, nil
			}
			if err := m.Engine.SetPattern(msg.pattern); err != nil {
				m.ErrorMessage = err.Error()
				return m, nil
			}
			return m, nil
		case tea.KeyMsg:
			// The capture window runs to completion; only a hard quit
			// interrupts it.
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case stateRunning:
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "enter", "s":
				if err := m.Engine.Stop(); err != nil {
					m.ErrorMessage = err.Error()
					return m, nil
				}
				m.State = stateMenu
				m.ErrorMessage = ""
				return m, nil
			case "q", "esc", "ctrl+c":
				if m.Engine != nil {
					m.Engine.Stop()
				}
				return m, tea.Quit
			}
		case tickMsg:
			if m.Duration > 0 && !m.Engine.IsRunning() {
				// Timed session expired on its own.
				m.State = stateMenu
				m.ErrorMessage = ""
				return m, nil
			}
			return m, tick()
		}
	}

	return m, cmd
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
