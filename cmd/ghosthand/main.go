package main

import (
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/pzielke/ghosthand/internal/config"
	"github.com/pzielke/ghosthand/internal/engine"
	"github.com/pzielke/ghosthand/internal/pattern"
	"github.com/pzielke/ghosthand/internal/platform"
	"github.com/pzielke/ghosthand/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

const appVersion = "0.4.0"

func main() {
	cfg, err := config.ParseFlags(appVersion)
	if err != nil {
		log.Fatal(err)
	}

	driver, err := platform.NewCursorDriver()
	if err != nil {
		log.Fatal(err)
	}

	store := pattern.NewStore(cfg.PatternFile)

	var pat pattern.Pattern
	grace := 500 * time.Millisecond
	if cfg.Record || !store.Exists() {
		pat, err = recordPattern(driver, store)
		// A fresh recording leaves the cursor wherever the user put it;
		// give detection the full window to settle.
		grace = 5 * time.Second
	} else {
		pat, err = store.Load()
	}
	if err != nil {
		log.Fatal(err)
	}

	f, err := tea.LogToFile("debug.log", "debug")
	if err != nil {
		log.Fatal(err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	eng, err := engine.New(engine.Config{
		Pattern:     pat,
		Interval:    cfg.Interval,
		Driver:      driver,
		Rand:        rand.New(rand.NewSource(seed)),
		GracePeriod: grace,
	})
	if err != nil {
		log.Fatal(err)
	}

	shutdown := engine.NewShutdown(5 * time.Second)
	shutdown.Register("replay engine", eng.Stop)
	shutdown.Register("debug log", f.Close)

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, getSignalsForPlatform()...)

	var model ui.Model
	if cfg.Duration > 0 {
		model = ui.InitialModelWithDuration(eng, cfg.Duration)
	} else {
		model = ui.InitialModel(eng)
	}
	model.SetVersion(appVersion)
	model.Record = func() (pattern.Pattern, error) {
		return capturePattern(driver, store)
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	// Handle signals in a separate goroutine
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		shutdown.Execute()
		p.Kill()
	}()

	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		shutdown.Execute()
		os.Exit(1)
	}

	shutdown.Execute()
}
