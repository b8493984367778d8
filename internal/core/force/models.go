// Package force contains the force models evaluated on every haptic tick.
// All functions are pure or operate on caller-owned state, and none of them
// allocate.
package force

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/haptics/internal/core/physics"
)

// Default fluid clamp in force units.
const DefaultFluidMaxForce = 2.0

// Contact is a spring-damper anchoring the cursor at p to a target at pt:
// k(pt - p) - d(v - vt).
func Contact(p, v, pt, vt mgl64.Vec3, stiffness, damping float64) mgl64.Vec3 {
	return pt.Sub(p).Mul(stiffness).Sub(v.Sub(vt).Mul(damping))
}

// Penetration returns how deep a cursor sphere of the given radius overlaps
// the surface point closest. Values <= 0 mean no contact.
func Penetration(p mgl64.Vec3, radius float64, closest mgl64.Vec3) float64 {
	return radius - p.Sub(closest).Len()
}

// MeshProximity pushes the cursor out along the surface normal in
// proportion to penetration and damps the velocity relative to the target.
// It is exactly zero when there is no penetration.
func MeshProximity(p, v mgl64.Vec3, radius float64, closest, vRef mgl64.Vec3, stiffness, damping float64) mgl64.Vec3 {
	distance := p.Sub(closest)
	pen := radius - distance.Len()
	if pen <= 0 {
		return physics.Zero
	}

	f := physics.Normalize(distance).Mul(pen * stiffness)
	return f.Sub(v.Sub(vRef).Mul(damping))
}

// Coupled returns the device paired with index in a ring of n devices. ok is
// false when coupling is disabled or there is no distinct partner.
func Coupled(index, n int, enabled bool) (other int, ok bool) {
	if !enabled || n < 2 || index < 0 || index >= n {
		return index, false
	}
	other = (index + 1) % n
	return other, other != index
}

// FluidField damps cursor velocity through a per-device low-pass filter and
// caps the result.
type FluidField struct {
	Viscosity float64
	MaxForce  float64
	Filter    *LowPassFilter
}

// Eval returns clamp(filter(-viscosity * v), MaxForce).
func (f FluidField) Eval(v mgl64.Vec3) mgl64.Vec3 {
	raw := v.Mul(-f.Viscosity)
	if f.Filter != nil {
		raw = f.Filter.Update(raw)
	}
	return physics.ClampMagnitude(raw, f.MaxForce)
}

// Fluidic is the experimental penetration-projected damping model. It is
// unfiltered and only reachable when configured explicitly.
func Fluidic(p, v, proxy mgl64.Vec3, exponent float64) mgl64.Vec3 {
	inv := p.Sub(proxy)
	projected := physics.Scale(v, physics.Normalize(inv))
	return inv.Sub(projected.Mul(exponent))
}
