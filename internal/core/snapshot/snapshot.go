// Package snapshot holds the scene state handed from the simulation context
// to the haptic loop, and the cache that carries it across.
package snapshot

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Effector is the physics proxy of one device. ProxyTracked stays false
// until a producer with a proxy has published, so the contact spring has no
// anchor before that.
type Effector struct {
	ProxyPosition   mgl64.Vec3
	ProxyTracked    bool
	CollisionActive bool
	SurfaceTag      SurfaceTag
}

// Normalize enforces that the tag is None exactly when no collision is
// active, and that an active collision never carries None.
func (e *Effector) Normalize() {
	switch {
	case !e.CollisionActive:
		e.SurfaceTag = SurfaceNone
	case e.SurfaceTag == SurfaceNone || !e.SurfaceTag.Valid():
		e.SurfaceTag = SurfaceDefault
	}
}

// SceneSnapshot is everything a haptic tick needs from the simulation. It is
// published wholesale and read by copy; per-device slices are sized to the
// device count fixed at construction.
type SceneSnapshot struct {
	// Per device, indexed by device slot.
	CursorRadii   []float64
	ClosestPoints []mgl64.Vec3
	Effectors     []Effector

	// Velocity of the mobile target object shared by every device.
	ReferenceVelocity mgl64.Vec3
}

// New returns a zero snapshot sized for deviceCount devices.
func New(deviceCount int) SceneSnapshot {
	if deviceCount < 0 {
		deviceCount = 0
	}
	return SceneSnapshot{
		CursorRadii:   make([]float64, deviceCount),
		ClosestPoints: make([]mgl64.Vec3, deviceCount),
		Effectors:     make([]Effector, deviceCount),
	}
}

// DeviceCount is the number of device slots in the snapshot.
func (s *SceneSnapshot) DeviceCount() int { return len(s.CursorRadii) }

// Effector returns the proxy state of device index, or the zero effector
// when the snapshot has no such slot.
func (s *SceneSnapshot) Effector(index int) Effector {
	if index < 0 || index >= len(s.Effectors) {
		return Effector{}
	}
	return s.Effectors[index]
}

// CopyInto copies s into dst, reusing dst's slices. Slots present in dst but
// not in s are zeroed; slots beyond dst's length are dropped. No allocation
// happens when dst is already sized.
func (s *SceneSnapshot) CopyInto(dst *SceneSnapshot) {
	n := copy(dst.CursorRadii, s.CursorRadii)
	clear(dst.CursorRadii[n:])
	n = copy(dst.ClosestPoints, s.ClosestPoints)
	clear(dst.ClosestPoints[n:])
	n = copy(dst.Effectors, s.Effectors)
	clear(dst.Effectors[n:])

	dst.ReferenceVelocity = s.ReferenceVelocity
}

// Clone returns a deep copy.
func (s *SceneSnapshot) Clone() SceneSnapshot {
	out := SceneSnapshot{
		CursorRadii:   make([]float64, len(s.CursorRadii)),
		ClosestPoints: make([]mgl64.Vec3, len(s.ClosestPoints)),
		Effectors:     make([]Effector, len(s.Effectors)),
	}
	s.CopyInto(&out)
	return out
}

// Normalize applies Effector.Normalize to every slot.
func (s *SceneSnapshot) Normalize() {
	for i := range s.Effectors {
		s.Effectors[i].Normalize()
	}
}
