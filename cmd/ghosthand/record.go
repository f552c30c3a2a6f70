package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pzielke/ghosthand/internal/pattern"
	"github.com/pzielke/ghosthand/internal/platform"
)

// capturePattern records events through the platform listener for the
// default window and persists the result. Shared by the pre-TUI
// recording flow and the TUI's record menu entry.
func capturePattern(driver platform.CursorDriver, store *pattern.Store) (pattern.Pattern, error) {
	listener, err := platform.NewInputListener(driver)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := listener.Start(ctx); err != nil {
		return nil, err
	}

	pat, err := pattern.Record(ctx, listener.Events(), pattern.DefaultRecordWindow)
	if err != nil {
		return nil, fmt.Errorf("recording failed: %w", err)
	}

	if err := store.Save(pat); err != nil {
		return nil, err
	}
	return pat, nil
}

// recordPattern runs the plain-terminal recording flow before the TUI
// starts: a short countdown, a fixed capture window, then persistence.
func recordPattern(driver platform.CursorDriver, store *pattern.Store) (pattern.Pattern, error) {
	fmt.Printf("Recording your mouse for %s. Starting in:\n", pattern.DefaultRecordWindow)
	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}
	fmt.Println("GO! Move your mouse around to trace a pattern.")

	pat, err := capturePattern(driver, store)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Recorded %d events (%s) to %s\n", len(pat), pat.Duration().Round(time.Millisecond), store.Path)
	return pat, nil
}
