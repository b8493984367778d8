package force

import "github.com/go-gl/mathgl/mgl64"

// DefaultAlpha is the smoothing factor used when none is configured.
const DefaultAlpha = 0.2

// LowPassFilter is a single-pole exponential smoother over vectors. It is
// not safe for concurrent use; the dispatcher keeps one per device.
type LowPassFilter struct {
	Alpha float64
	value mgl64.Vec3
}

// NewLowPassFilter returns a filter with alpha clamped into (0, 1]. A
// non-positive alpha falls back to DefaultAlpha.
func NewLowPassFilter(alpha float64) *LowPassFilter {
	switch {
	case alpha <= 0:
		alpha = DefaultAlpha
	case alpha > 1:
		alpha = 1
	}
	return &LowPassFilter{Alpha: alpha}
}

// Update blends x into the retained value and returns the new value.
func (f *LowPassFilter) Update(x mgl64.Vec3) mgl64.Vec3 {
	f.value = x.Mul(f.Alpha).Add(f.value.Mul(1 - f.Alpha))
	return f.value
}

// Reset sets the retained value without blending.
func (f *LowPassFilter) Reset(v mgl64.Vec3) {
	f.value = v
}

// Value returns the retained value.
func (f *LowPassFilter) Value() mgl64.Vec3 {
	return f.value
}
