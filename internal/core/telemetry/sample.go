// Package telemetry streams per-tick force samples from the haptic loop to
// monitoring clients over WebSocket and QUIC.
package telemetry

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Sample describes one dispatcher tick for one device.
type Sample struct {
	Session  string     `json:"session"`
	Device   int        `json:"device"`
	Tick     uint64     `json:"tick"`
	Model    string     `json:"model"`
	Force    mgl64.Vec3 `json:"force"`
	Released bool       `json:"released"`
	Version  uint64     `json:"version"`
}

// Sink receives encoded samples. msg is a single JSON document without a
// trailing newline and must not be retained past the call.
type Sink interface {
	Send(msg []byte)
}
