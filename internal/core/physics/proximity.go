package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// ProximitySource answers closest-point queries against a target surface.
// Implementations are called from the simulation context only.
type ProximitySource interface {
	ClosestPoint(p mgl64.Vec3) mgl64.Vec3
}

var (
	_ ProximitySource = Sphere{}
	_ ProximitySource = Plane{}
	_ ProximitySource = (*MovingSphere)(nil)
	_ ProximitySource = (*TriangleMesh)(nil)
)

// Sphere is an analytic sphere surface.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// ClosestPoint projects p onto the sphere surface. The center itself maps to
// the top pole.
func (s Sphere) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	dir := Normalize(p.Sub(s.Center))
	if dir == Zero {
		dir = mgl64.Vec3{0, 1, 0}
	}
	return s.Center.Add(dir.Mul(s.Radius))
}

// Contains reports whether p lies inside or on the sphere.
func (s Sphere) Contains(p mgl64.Vec3) bool {
	return p.Sub(s.Center).LenSqr() <= s.Radius*s.Radius
}

// Plane is an infinite plane through Point with the given Normal.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

func NewPlane(point, normal mgl64.Vec3) Plane {
	return Plane{Point: point, Normal: Normalize(normal)}
}

func (pl Plane) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	n := Normalize(pl.Normal)
	return p.Sub(n.Mul(p.Sub(pl.Point).Dot(n)))
}

// MovingSphere is a sphere whose center is updated by the simulation while
// other goroutines query it.
type MovingSphere struct {
	mu     sync.RWMutex
	center mgl64.Vec3
	radius float64
}

func NewMovingSphere(center mgl64.Vec3, radius float64) *MovingSphere {
	return &MovingSphere{center: center, radius: radius}
}

func (m *MovingSphere) SetCenter(c mgl64.Vec3) {
	m.mu.Lock()
	m.center = c
	m.mu.Unlock()
}

func (m *MovingSphere) Sphere() Sphere {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Sphere{Center: m.center, Radius: m.radius}
}

func (m *MovingSphere) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	return m.Sphere().ClosestPoint(p)
}
