package telemetry

import "errors"

var (
	ErrServerClosed = errors.New("telemetry: server closed")
	ErrHandshake    = errors.New("telemetry: unexpected monitor handshake")
)
