//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pzielke/ghosthand/internal/util"
)

// cliclickDriver drives the cursor through the cliclick command-line tool
// (brew install cliclick). Requires Accessibility permission.
type cliclickDriver struct{}

func newCursorDriver() (CursorDriver, error) {
	if !util.HasCommand("cliclick") {
		return nil, fmt.Errorf("%w: cliclick not found in PATH (brew install cliclick)", ErrUnsupportedPlatform)
	}
	return &cliclickDriver{}, nil
}

func (d *cliclickDriver) MoveTo(x, y int) error {
	return run("cliclick", fmt.Sprintf("m:%d,%d", x, y))
}

func (d *cliclickDriver) Click(button string, pressed bool) error {
	// cliclick only exposes full click actions, not separate press/release.
	// Perform the click on the press half and swallow the release half.
	if !pressed {
		return nil
	}
	switch button {
	case ButtonRight:
		return run("cliclick", "rc:.")
	case ButtonMiddle:
		return ErrClickUnsupported
	default:
		return run("cliclick", "c:.")
	}
}

func (d *cliclickDriver) Position() (int, int, error) {
	out, err := exec.Command("cliclick", "p:.").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("cliclick p: %v", err)
	}

	// Output is "x,y", possibly prefixed with descriptive text on older
	// versions; take the last comma-separated pair on the line.
	line := strings.TrimSpace(string(out))
	if i := strings.LastIndexByte(line, ' '); i >= 0 {
		line = line[i+1:]
	}
	xs, ys, ok := strings.Cut(line, ",")
	if !ok {
		return 0, 0, fmt.Errorf("failed to parse cliclick output %q", strings.TrimSpace(string(out)))
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse cliclick output %q", line)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse cliclick output %q", line)
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
