//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetCursorPos = user32.NewProc("GetCursorPos")
	procMouseEvent   = user32.NewProc("mouse_event")
)

const (
	mouseEventLeftDown   = 0x0002
	mouseEventLeftUp     = 0x0004
	mouseEventRightDown  = 0x0008
	mouseEventRightUp    = 0x0010
	mouseEventMiddleDown = 0x0020
	mouseEventMiddleUp   = 0x0040
)

type winPoint struct {
	X int32
	Y int32
}

// winDriver drives the cursor through user32.
type winDriver struct{}

func newCursorDriver() (CursorDriver, error) {
	return &winDriver{}, nil
}

func (d *winDriver) MoveTo(x, y int) error {
	r1, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y))
	if r1 == 0 {
		return fmt.Errorf("SetCursorPos(%d, %d): %v", x, y, err)
	}
	return nil
}

func (d *winDriver) Click(button string, pressed bool) error {
	var flags uintptr
	switch {
	case button == ButtonRight && pressed:
		flags = mouseEventRightDown
	case button == ButtonRight:
		flags = mouseEventRightUp
	case button == ButtonMiddle && pressed:
		flags = mouseEventMiddleDown
	case button == ButtonMiddle:
		flags = mouseEventMiddleUp
	case pressed:
		flags = mouseEventLeftDown
	default:
		flags = mouseEventLeftUp
	}
	procMouseEvent.Call(flags, 0, 0, 0, 0)
	return nil
}

func (d *winDriver) Position() (int, int, error) {
	var pt winPoint
	r1, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r1 == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos: %v", err)
	}
	return int(pt.X), int(pt.Y), nil
}
