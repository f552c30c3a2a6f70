package config

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	// Save original args and restore them after the test
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	tests := []struct {
		name         string
		args         []string
		wantInterval time.Duration
		wantDuration time.Duration
		wantRecord   bool
		wantSeed     int64
		wantPattern  string
		skip         bool // Skip test cases that would cause os.Exit
	}{
		{
			name:         "no flags uses default interval",
			args:         []string{"ghosthand"},
			wantInterval: 5 * time.Minute,
		},
		{
			name:         "bare interval is minutes",
			args:         []string{"ghosthand", "-i", "10"},
			wantInterval: 10 * time.Minute,
		},
		{
			name:         "interval as duration string",
			args:         []string{"ghosthand", "-interval", "2m30s"},
			wantInterval: 2*time.Minute + 30*time.Second,
		},
		{
			name:         "duration flag",
			args:         []string{"ghosthand", "-d", "2h30m"},
			wantInterval: 5 * time.Minute,
			wantDuration: 2*time.Hour + 30*time.Minute,
		},
		{
			name:         "record flag",
			args:         []string{"ghosthand", "-r"},
			wantInterval: 5 * time.Minute,
			wantRecord:   true,
		},
		{
			name:         "pattern file flag",
			args:         []string{"ghosthand", "-p", "/tmp/custom.json"},
			wantInterval: 5 * time.Minute,
			wantPattern:  "/tmp/custom.json",
		},
		{
			name:         "seed flag",
			args:         []string{"ghosthand", "-seed", "42"},
			wantInterval: 5 * time.Minute,
			wantSeed:     42,
		},
		{
			name: "invalid interval",
			args: []string{"ghosthand", "-i", "nonsense"},
			skip: true, // Would cause os.Exit(1)
		},
		{
			name: "version flag",
			args: []string{"ghosthand", "--version"},
			skip: true, // Would cause os.Exit(0)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.skip {
				t.Skip("Skipping test case that would cause os.Exit")
			}

			os.Args = tt.args

			cfg, err := ParseFlags("test-version")
			if err != nil {
				t.Errorf("ParseFlags() unexpected error: %v", err)
				return
			}

			if cfg.Interval != tt.wantInterval {
				t.Errorf("ParseFlags() interval = %v, want %v", cfg.Interval, tt.wantInterval)
			}
			if cfg.Duration != tt.wantDuration {
				t.Errorf("ParseFlags() duration = %v, want %v", cfg.Duration, tt.wantDuration)
			}
			if cfg.Record != tt.wantRecord {
				t.Errorf("ParseFlags() record = %v, want %v", cfg.Record, tt.wantRecord)
			}
			if cfg.Seed != tt.wantSeed {
				t.Errorf("ParseFlags() seed = %d, want %d", cfg.Seed, tt.wantSeed)
			}
			if cfg.PatternFile != tt.wantPattern {
				t.Errorf("ParseFlags() pattern file = %q, want %q", cfg.PatternFile, tt.wantPattern)
			}
		})
	}
}
