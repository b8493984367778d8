// Package device defines the contract between the haptic dispatcher and a
// force-feedback device, and a simulated device runtime that drives it.
package device

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Handler is called by a device runtime on every state change, on the
// runtime's own goroutine, at device rate.
type Handler func(d Device)

// Device is a force-feedback end effector.
//
// Position, Velocity and Radius are safe to call from any goroutine.
// SetForce and Release are called from the device's handler goroutine.
type Device interface {
	ID() string
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
	// Radius is the cursor radius used for proximity contact.
	Radius() float64

	// SetForce engages output and writes f.
	SetForce(f mgl64.Vec3) error
	// Release disengages output. Releasing an idle device is a no-op.
	Release()

	// OnStateChanged registers h and returns a func that removes it.
	// The returned func is safe to call more than once.
	OnStateChanged(h Handler) (unsubscribe func())
}
