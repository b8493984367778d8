package haptics

import "errors"

var (
	ErrTooManyDevices   = errors.New("haptics: more devices than snapshot slots")
	ErrDispatcherClosed = errors.New("haptics: dispatcher closed")
	ErrUnknownDevice    = errors.New("haptics: unknown device index")
)
