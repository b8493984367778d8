package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrIndexCount   = errors.New("mesh index count is not a multiple of 3")
	ErrIndexOutside = errors.New("mesh index out of vertex range")
)

type triangle struct {
	a, b, c mgl64.Vec3
}

// TriangleMesh answers closest-point queries over a static triangle soup.
// Degenerate triangles are dropped at construction.
type TriangleMesh struct {
	triangles []triangle
}

// NewTriangleMesh builds a mesh from vertices and index triples.
func NewTriangleMesh(vertices []mgl64.Vec3, indices []int) (*TriangleMesh, error) {
	if len(indices)%3 != 0 {
		return nil, ErrIndexCount
	}

	m := &TriangleMesh{triangles: make([]triangle, 0, len(indices)/3)}
	for i := 0; i < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		for _, idx := range [3]int{ia, ib, ic} {
			if idx < 0 || idx >= len(vertices) {
				return nil, ErrIndexOutside
			}
		}
		t := triangle{a: vertices[ia], b: vertices[ib], c: vertices[ic]}
		if t.b.Sub(t.a).Cross(t.c.Sub(t.a)).Len() < Epsilon {
			continue
		}
		m.triangles = append(m.triangles, t)
	}
	return m, nil
}

// Len returns the number of usable triangles.
func (m *TriangleMesh) Len() int { return len(m.triangles) }

// ClosestPoint returns the nearest point on any triangle. An empty mesh
// returns p itself.
func (m *TriangleMesh) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	if len(m.triangles) == 0 {
		return p
	}

	best := closestOnTriangle(p, m.triangles[0])
	bestDist := p.Sub(best).LenSqr()
	for _, t := range m.triangles[1:] {
		q := closestOnTriangle(p, t)
		if d := p.Sub(q).LenSqr(); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best
}

// closestOnTriangle walks the Voronoi regions of the triangle: vertices,
// then edges, then the face.
func closestOnTriangle(p mgl64.Vec3, t triangle) mgl64.Vec3 {
	ab := t.b.Sub(t.a)
	ac := t.c.Sub(t.a)
	ap := p.Sub(t.a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return t.a
	}

	bp := p.Sub(t.b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return t.b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return t.a.Add(ab.Mul(v))
	}

	cp := p.Sub(t.c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return t.c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return t.a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return t.b.Add(t.c.Sub(t.b).Mul(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return t.a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
