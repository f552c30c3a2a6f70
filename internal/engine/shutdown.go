package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Shutdown runs registered teardown steps with a shared timeout so a
// wedged step (a hung driver command, an unflushed log) cannot keep the
// process alive after a stop request.
type Shutdown struct {
	mu      sync.Mutex
	steps   []shutdownStep
	timeout time.Duration
	once    sync.Once
}

type shutdownStep struct {
	name string
	fn   func() error
}

// NewShutdown creates a shutdown runner with the given overall timeout.
func NewShutdown(timeout time.Duration) *Shutdown {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Shutdown{timeout: timeout}
}

// Register adds a named teardown step. Steps run in registration order.
func (s *Shutdown) Register(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, shutdownStep{name: name, fn: fn})
}

// Execute runs all registered steps once. Later calls are no-ops.
func (s *Shutdown) Execute() []error {
	var errs []error
	s.once.Do(func() {
		errs = s.execute()
	})
	return errs
}

func (s *Shutdown) execute() []error {
	s.mu.Lock()
	steps := make([]shutdownStep, len(s.steps))
	copy(steps, s.steps)
	s.mu.Unlock()

	if len(steps) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	done := make(chan struct{})
	var mu sync.Mutex
	var errs []error

	go func() {
		defer close(done)
		for _, step := range steps {
			func() {
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						errs = append(errs, errors.New("panic during shutdown"))
						mu.Unlock()
						log.Printf("shutdown: panic in %s: %v", step.name, r)
					}
				}()

				if err := step.fn(); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					log.Printf("shutdown: %s failed: %v", step.name, err)
				}
			}()
		}
	}()

	select {
	case <-done:
		return errs
	case <-ctx.Done():
		log.Printf("shutdown: timeout after %v, some steps did not finish", s.timeout)
		mu.Lock()
		out := make([]error, len(errs))
		copy(out, errs)
		mu.Unlock()
		return append(out, errors.New("shutdown timeout exceeded"))
	}
}
