package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pzielke/ghosthand/internal/monitor"
	"github.com/pzielke/ghosthand/internal/pattern"
	"github.com/pzielke/ghosthand/internal/util"
)

var (
	keys      = DefaultKeys()
	helpModel = NewHelpModel()
)

// footer renders the contextual key hints for a UI state.
func footer(s state) string {
	return Current.Help.Render(helpModel.View(keys.ForState(s)))
}

// View renders the current state of the model to a string.
func View(m Model) string {
	if m.ShowHelp {
		return helpView(m.version)
	}

	switch m.State {
	case stateMenu:
		return menuView(m)
	case stateTimedInput:
		return timedInputView(m)
	case stateRecording:
		return recordingView()
	case stateRunning:
		return runningView(m)
	}

	return ""
}

func menuView(m Model) string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("Ghosthand"))
	b.WriteString("\n\n")

	b.WriteString(Current.Unselected.Render("Select an option:"))
	b.WriteString("\n\n")

	menuItems := []string{
		"Replay pattern indefinitely",
		"Replay pattern for X minutes",
		"Record a new pattern",
		"Quit",
	}

	for i, opt := range menuItems {
		if i == m.Selected {
			b.WriteString(Current.Selected.Render("> " + opt))
		} else {
			b.WriteString(Current.Unselected.Render("  " + opt))
		}
		b.WriteString("\n")
	}

	if m.ErrorMessage != "" {
		b.WriteString("\n" + Current.Error.Render(m.ErrorMessage))
	}

	b.WriteString("\n\n" + footer(stateMenu))
	return b.String()
}

func timedInputView(m Model) string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("Enter Duration"))
	b.WriteString("\n\n")

	b.WriteString(Current.Unselected.Render("Enter total run time in minutes:"))
	b.WriteString("\n")
	input := m.Input
	if input == "" {
		input = " "
	}
	b.WriteString(Current.InputBox.Render(input))
	b.WriteString("\n\n")

	b.WriteString("\n" + footer(stateTimedInput))

	if m.ErrorMessage != "" {
		b.WriteString("\n\n" + Current.Error.Render(m.ErrorMessage))
	}

	return b.String()
}

func recordingView() string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("Recording Pattern"))
	b.WriteString("\n\n")

	b.WriteString(Current.Active.Render("Move your mouse around to trace a pattern."))
	b.WriteString("\n")
	b.WriteString(Current.Unselected.Render(fmt.Sprintf("Capturing for %s...", pattern.DefaultRecordWindow)))
	b.WriteString("\n")

	return b.String()
}

func runningView(m Model) string {
	var b strings.Builder

	b.WriteString(Current.Title.Render("Ghosthand Active"))
	b.WriteString("\n\n")

	st := m.Engine.Status()

	b.WriteString(Current.Active.Render(statusLine(st.State)))
	b.WriteString("\n")

	if !st.NextReplay.IsZero() && st.State == monitor.StateIdle {
		untilNext := time.Until(st.NextReplay)
		if untilNext > 0 {
			b.WriteString(Current.Countdown.Render("next replay in " + util.FormatCountdown(untilNext)))
			b.WriteString("\n")
		}
	}

	stats := fmt.Sprintf("replays: %d • takeovers: %d", st.Replays, st.Overrides)
	b.WriteString(Current.Unselected.Render(stats))
	b.WriteString("\n")

	if !st.LastOverride.IsZero() {
		b.WriteString(Current.Warn.Render("last takeover " + util.FormatCountdown(time.Since(st.LastOverride)) + " ago"))
		b.WriteString("\n")
	}

	if m.Duration > 0 {
		b.WriteString(Current.Unselected.Render(util.FormatCountdown(m.TimeRemaining()) + " remaining"))
		b.WriteString("\n")
	}

	b.WriteString("\n" + Current.Help.Render("Move your mouse to take control"))
	b.WriteString("\n" + footer(stateRunning))

	if m.ErrorMessage != "" {
		b.WriteString("\n\n" + Current.Error.Render(m.ErrorMessage))
	}

	return b.String()
}

func statusLine(s monitor.State) string {
	switch s {
	case monitor.StateGrace:
		return "Grace period (detection suspended)"
	case monitor.StateArmed:
		return "Replaying (move to take control)"
	case monitor.StateQuietCheck:
		return "Waiting for a quiet window"
	case monitor.StateOverride:
		return "Manual control detected"
	default:
		return "Waiting for next replay"
	}
}

func helpView(version string) string {
	help := `Ghosthand Help

Usage:
  ghosthand [flags]

Flags:
  -i, --interval string   Base interval between replays (e.g., "5" or "2m30s")
  -d, --duration string   Total run duration (e.g., "2h30m"; omit for unbounded)
  -p, --pattern string    Pattern file path (default: ~/.ghosthand_pattern.json)
  -r, --record            Record a new pattern before starting
      --seed int          Fix the randomness seed (0 uses the clock)
  -v, --version           Show version information
  -h, --help              Show help message

Examples:
  ghosthand -i 5              # Replay roughly every 5 minutes, run until stopped
  ghosthand -i 2 -d 60        # Replay roughly every 2 minutes for an hour
  ghosthand -r                # Record a fresh pattern first

During replay:
  Moving the mouse or clicking hands control back to you immediately and
  resets the interval timer. Replays never start while you are active.

Navigation:
  ↑/k, ↓/j  : Navigate menu
  Enter      : Select option
  h          : Show this help
  q/Esc      : Quit/Back

Press 'q' or 'Esc' to close help`

	if version != "" {
		help += "\n\nVersion: " + version
	}

	return Current.Help.Render(help)
}
