package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

// unitQuad is a 1x1 square in the XZ plane at y=0 made of two triangles.
func unitQuad(t *testing.T) *TriangleMesh {
	t.Helper()
	m, err := NewTriangleMesh(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
		[]int{0, 1, 2, 0, 2, 3},
	)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	return m
}

func TestTriangleMesh_ClosestPoint(t *testing.T) {
	m := unitQuad(t)

	tests := []struct {
		name  string
		query mgl64.Vec3
		want  mgl64.Vec3
	}{
		{"Face above", mgl64.Vec3{0.25, 0.3, 0.5}, mgl64.Vec3{0.25, 0, 0.5}},
		{"Face below", mgl64.Vec3{0.75, -2, 0.1}, mgl64.Vec3{0.75, 0, 0.1}},
		{"Vertex region", mgl64.Vec3{-1, 1, -1}, mgl64.Vec3{0, 0, 0}},
		{"Far vertex region", mgl64.Vec3{2, 0, 2}, mgl64.Vec3{1, 0, 1}},
		{"Edge region", mgl64.Vec3{0.5, 0, -3}, mgl64.Vec3{0.5, 0, 0}},
		{"Diagonal edge", mgl64.Vec3{0.5, 0, 0.5}, mgl64.Vec3{0.5, 0, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireVecNear(t, tt.want, m.ClosestPoint(tt.query))
		})
	}
}

func TestTriangleMesh_Construction(t *testing.T) {
	t.Run("Index count must be a multiple of three", func(t *testing.T) {
		_, err := NewTriangleMesh([]mgl64.Vec3{{}, {1, 0, 0}}, []int{0, 1})
		require.ErrorIs(t, err, ErrIndexCount)
	})

	t.Run("Indices must reference vertices", func(t *testing.T) {
		_, err := NewTriangleMesh([]mgl64.Vec3{{}, {1, 0, 0}, {0, 1, 0}}, []int{0, 1, 3})
		require.ErrorIs(t, err, ErrIndexOutside)
	})

	t.Run("Degenerate triangles are dropped", func(t *testing.T) {
		m, err := NewTriangleMesh([]mgl64.Vec3{{}, {1, 0, 0}, {2, 0, 0}}, []int{0, 1, 2})
		require.NoError(t, err)
		require.Equal(t, 0, m.Len())
	})

	t.Run("Empty mesh returns the query point", func(t *testing.T) {
		m, err := NewTriangleMesh(nil, nil)
		require.NoError(t, err)
		p := mgl64.Vec3{1, 2, 3}
		require.Equal(t, p, m.ClosestPoint(p))
	})
}
