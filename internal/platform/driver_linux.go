//go:build linux

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pzielke/ghosthand/internal/util"
)

// xdotoolDriver drives the cursor through the xdotool command-line tool.
// xdotool only works on X11, not Wayland.
type xdotoolDriver struct{}

func newCursorDriver() (CursorDriver, error) {
	if isWayland() {
		return nil, fmt.Errorf("%w: cursor injection requires X11 (Wayland session detected)", ErrUnsupportedPlatform)
	}
	if !util.HasCommand("xdotool") {
		return nil, fmt.Errorf("%w: xdotool not found in PATH", ErrUnsupportedPlatform)
	}
	return &xdotoolDriver{}, nil
}

func isWayland() bool {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return true
	}
	return strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland")
}

func (d *xdotoolDriver) MoveTo(x, y int) error {
	return run("xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y))
}

func (d *xdotoolDriver) Click(button string, pressed bool) error {
	btn := "1"
	switch button {
	case ButtonMiddle:
		btn = "2"
	case ButtonRight:
		btn = "3"
	}
	action := "mousedown"
	if !pressed {
		action = "mouseup"
	}
	return run("xdotool", action, btn)
}

func (d *xdotoolDriver) Position() (int, int, error) {
	out, err := exec.Command("xdotool", "getmouselocation", "--shell").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("xdotool getmouselocation: %v", err)
	}

	// Output is shell-style assignments: X=123\nY=456\nSCREEN=0\nWINDOW=...
	var x, y int
	var haveX, haveY bool
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			continue
		}
		switch k {
		case "X":
			x, haveX = n, true
		case "Y":
			y, haveY = n, true
		}
	}
	if !haveX || !haveY {
		return 0, 0, fmt.Errorf("failed to parse xdotool output %q", strings.TrimSpace(string(out)))
	}
	return x, y, nil
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %v (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
