package collision

import "errors"

var (
	ErrInvalidPayload = errors.New("collision: invalid event payload")
	ErrTrackerClosed  = errors.New("collision: tracker closed")
)
