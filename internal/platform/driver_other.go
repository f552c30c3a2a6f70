//go:build !linux && !darwin && !windows

package platform

func newCursorDriver() (CursorDriver, error) {
	return nil, ErrUnsupportedPlatform
}
