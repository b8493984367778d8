// Package physics holds the vector helpers and proximity queries shared by
// the force models and the scene producer. Vectors are mgl64.Vec3 values.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-12

// Zero is the origin.
var Zero = mgl64.Vec3{}

// Normalize returns the unit vector of v, or the zero vector when v has no
// usable length.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero
	}
	return v.Mul(1 / l)
}

// ClampMagnitude scales v down so that |v| <= maxLen, keeping its direction.
// A non-positive maxLen yields the zero vector.
func ClampMagnitude(v mgl64.Vec3, maxLen float64) mgl64.Vec3 {
	if maxLen <= 0 {
		return Zero
	}
	sq := v.LenSqr()
	if sq <= maxLen*maxLen {
		return v
	}
	return v.Mul(maxLen / math.Sqrt(sq))
}

// Scale multiplies two vectors component-wise.
func Scale(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Lerp interpolates between a and b by t, unclamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Distance computes the Euclidean distance between two points.
func Distance(a, b mgl64.Vec3) float64 { return b.Sub(a).Len() }
