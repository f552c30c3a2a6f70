package platform

import "errors"

// ErrClickUnsupported is returned by drivers that can move the cursor but
// cannot synthesize button events.
var ErrClickUnsupported = errors.New("click injection not supported by this driver")

// ErrUnsupportedPlatform is returned when no cursor driver exists for the
// current OS or display server.
var ErrUnsupportedPlatform = errors.New("unsupported platform")
