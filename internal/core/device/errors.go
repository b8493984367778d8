package device

import "errors"

var (
	ErrDeviceClosed = errors.New("device: closed")
	ErrInvalidRate  = errors.New("device: rate must be positive")
)
