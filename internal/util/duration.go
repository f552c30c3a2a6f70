package util

import (
	"fmt"
	"strconv"
	"time"
)

// ParseDuration parses a user-supplied duration. A bare integer is treated
// as minutes; anything else must be a valid Go duration string.
func ParseDuration(input string) (time.Duration, error) {
	if minutes, err := strconv.Atoi(input); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}

	duration, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("Invalid duration format: %s\n\n"+
			"Valid formats:\n"+
			"• integer minutes (e.g., '30')\n"+
			"• duration string (e.g., '2h30m', '90s')", input)
	}
	return duration, nil
}
