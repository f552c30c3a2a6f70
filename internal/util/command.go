package util

import "os/exec"

// HasCommand reports whether name resolves to an executable on PATH.
// The cursor drivers use it to fail fast with a clear message instead of
// erroring on the first shelled-out move.
func HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
