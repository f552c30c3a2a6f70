package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pzielke/ghosthand/internal/ui"
	"github.com/pzielke/ghosthand/internal/util"
)

// Config holds the parsed command-line options.
type Config struct {
	// Interval is the base wait between replays. The actual wait is
	// randomized around it each cycle.
	Interval time.Duration

	// Duration bounds the total run time; zero means unbounded.
	Duration time.Duration

	// PatternFile overrides the default pattern file location.
	PatternFile string

	// Record forces recording a fresh pattern before starting.
	Record bool

	// Seed fixes the randomness source; zero seeds from the clock.
	Seed int64

	ShowVersion bool
}

func formatError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "Invalid duration format:") {
		parts := strings.SplitN(msg, "\n\n", 2)
		if len(parts) == 2 {
			errorBox := ui.Current.Help.Copy().
				BorderForeground(lipgloss.Color("#FF4040"))

			header := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF4040")).
				Render(parts[0])

			details := lipgloss.NewStyle().
				Foreground(lipgloss.Color("#999999")).
				Render(parts[1])

			return errorBox.Render(fmt.Sprintf("%s\n\n%s", header, details))
		}
	}
	return ui.Current.Error.Render(msg)
}

// ParseFlags parses os.Args into a Config.
func ParseFlags(version string) (*Config, error) {
	flags := flag.NewFlagSet("ghosthand", flag.ExitOnError)
	flags.Usage = func() {
		model := ui.InitialModel(nil)
		model.ShowHelp = true
		fmt.Print(model.View())
	}

	interval := flags.String("interval", "5", "Base interval between replays in minutes or as a duration (e.g., \"5\" or \"2m30s\")")
	flags.StringVar(interval, "i", "5", "Base interval between replays in minutes or as a duration (e.g., \"5\" or \"2m30s\")")
	duration := flags.String("duration", "", "Total run duration (e.g., \"2h30m\"; omit for unbounded)")
	flags.StringVar(duration, "d", "", "Total run duration (e.g., \"2h30m\"; omit for unbounded)")
	patternFile := flags.String("pattern", "", "Pattern file path (default: ~/.ghosthand_pattern.json)")
	flags.StringVar(patternFile, "p", "", "Pattern file path (default: ~/.ghosthand_pattern.json)")
	record := flags.Bool("record", false, "Record a new pattern before starting")
	flags.BoolVar(record, "r", false, "Record a new pattern before starting")
	seed := flags.Int64("seed", 0, "Fix the randomness seed (0 uses the clock)")
	showVersion := flags.Bool("version", false, "Show version information")
	flags.BoolVar(showVersion, "v", false, "Show version information")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if *showVersion {
		fmt.Printf("ghosthand version: %s\n", version)
		os.Exit(0)
	}

	iv, err := util.ParseDuration(*interval)
	if err != nil {
		fmt.Println(formatError(err))
		os.Exit(1)
	}
	if iv <= 0 {
		fmt.Println(formatError(fmt.Errorf("interval must be greater than zero")))
		os.Exit(1)
	}

	var dur time.Duration
	if *duration != "" {
		dur, err = util.ParseDuration(*duration)
		if err != nil {
			fmt.Println(formatError(err))
			os.Exit(1)
		}
		if dur <= 0 {
			fmt.Println(formatError(fmt.Errorf("duration must be greater than zero")))
			os.Exit(1)
		}
	}

	return &Config{
		Interval:    iv,
		Duration:    dur,
		PatternFile: *patternFile,
		Record:      *record,
		Seed:        *seed,
		ShowVersion: *showVersion,
	}, nil
}
