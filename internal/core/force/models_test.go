package force

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/haptics/internal/core/physics"
	"github.com/zeusync/haptics/internal/core/snapshot"
)

func requireVecNear(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	require.InDeltaf(t, 0.0, want.Sub(got).Len(), delta, "want %v got %v", want, got)
}

func TestContact(t *testing.T) {
	t.Run("Spring pulls toward the target", func(t *testing.T) {
		f := Contact(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{0, 0.01, 0}, mgl64.Vec3{}, 400, 1)
		requireVecNear(t, mgl64.Vec3{0, 4, 0}, f, 1e-12)
	})

	t.Run("Damping opposes relative velocity", func(t *testing.T) {
		f := Contact(mgl64.Vec3{}, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{0.1, 0, 0}, 400, 2)
		requireVecNear(t, mgl64.Vec3{-0.8, 0, 0}, f, 1e-12)
	})

	t.Run("Target velocity defaults to zero", func(t *testing.T) {
		f := Contact(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 1, 1}, physics.Zero, 100, 3)
		requireVecNear(t, mgl64.Vec3{-3, 0, 0}, f, 1e-12)
	})
}

func TestMeshProximity_EndToEnd(t *testing.T) {
	f := MeshProximity(
		mgl64.Vec3{0, 0, 0.005}, // cursor
		mgl64.Vec3{0, 0, 0.1},   // cursor velocity
		0.01,                    // radius
		mgl64.Vec3{0, 0, 0},     // closest point
		mgl64.Vec3{},            // reference velocity
		500, 1,
	)
	requireVecNear(t, mgl64.Vec3{0, 0, 2.4}, f, 1e-9)
	require.InDelta(t, 0.005, Penetration(mgl64.Vec3{0, 0, 0.005}, 0.01, mgl64.Vec3{}), 1e-12)
}

func TestMeshProximity_NoPenetrationIsExactlyZero(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		closest := mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
		dir := physics.Normalize(mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()})
		radius := rng.Float64() * 0.05
		// distance >= radius so penetration <= 0
		p := closest.Add(dir.Mul(radius + 1e-6 + rng.Float64()*0.1))
		v := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}

		require.LessOrEqual(t, Penetration(p, radius, closest), 0.0)
		require.Equal(t, physics.Zero, MeshProximity(p, v, radius, closest, mgl64.Vec3{0.3, 0, 0}, 800, 3))
	}
}

func TestMeshProximity_MonotonicAndDirected(t *testing.T) {
	closest := mgl64.Vec3{0.2, -0.1, 0.05}
	dir := physics.Normalize(mgl64.Vec3{1, 2, -0.5})
	const radius = 0.02

	prev := 0.0
	for step := 1; step < 20; step++ {
		distance := radius - float64(step)*0.001
		p := closest.Add(dir.Mul(distance))
		vel := mgl64.Vec3{0.05, 0, 0}

		f := MeshProximity(p, vel, radius, closest, vel, 500, 1)
		mag := f.Len()
		require.Greater(t, mag, prev)
		prev = mag

		requireVecNear(t, dir, physics.Normalize(f), 1e-9)
	}
}

func TestMeshProximity_DampingRelativeToReference(t *testing.T) {
	p := mgl64.Vec3{0, 0.005, 0}
	withRef := MeshProximity(p, mgl64.Vec3{0.2, 0, 0}, 0.01, mgl64.Vec3{}, mgl64.Vec3{0.2, 0, 0}, 500, 1)
	requireVecNear(t, mgl64.Vec3{0, 2.5, 0}, withRef, 1e-9)

	without := MeshProximity(p, mgl64.Vec3{0.2, 0, 0}, 0.01, mgl64.Vec3{}, mgl64.Vec3{}, 500, 1)
	requireVecNear(t, mgl64.Vec3{-0.2, 2.5, 0}, without, 1e-9)
}

func TestCoupled(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		n       int
		enabled bool
		other   int
		ok      bool
	}{
		{"Two devices pair up", 0, 2, true, 1, true},
		{"Pairing wraps", 1, 2, true, 0, true},
		{"Ring of three", 2, 3, true, 0, true},
		{"Ring of three middle", 1, 3, true, 2, true},
		{"Single device has no partner", 0, 1, true, 0, false},
		{"Disabled", 0, 2, false, 0, false},
		{"Out of range", 5, 2, true, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, ok := Coupled(tt.index, tt.n, tt.enabled)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.other, other)
		})
	}
}

func TestCoupling_SymmetricInGeometricInputs(t *testing.T) {
	const radius = 0.01
	closest := [2]mgl64.Vec3{{0, 0, 0}, {0.002, 0, 0}}

	t.Run("Mirrored geometry gives mirrored coupling", func(t *testing.T) {
		// cursor0 - closest1 is the negation of cursor1 - closest0.
		cursors := [2]mgl64.Vec3{{0, 0.004, 0}, {0.002, -0.004, 0}}

		other0 := MeshProximity(cursors[0], mgl64.Vec3{}, radius, closest[1], mgl64.Vec3{}, 500, 1)
		other1 := MeshProximity(cursors[1], mgl64.Vec3{}, radius, closest[0], mgl64.Vec3{}, 500, 1)

		require.NotEqual(t, physics.Zero, other0)
		requireVecNear(t, other0.Mul(-1), other1, 1e-12)
	})

	t.Run("Coupling depends only on the geometric inputs", func(t *testing.T) {
		cursor := mgl64.Vec3{0.002, 0.003, 0}
		mirror := func(v mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{0.002 - v[0], v[1], v[2]} }

		other := MeshProximity(cursor, mgl64.Vec3{}, radius, closest[0], mgl64.Vec3{}, 500, 1)
		mirrored := MeshProximity(mirror(cursor), mgl64.Vec3{}, radius, mirror(closest[0]), mgl64.Vec3{}, 500, 1)

		require.NotEqual(t, physics.Zero, other)
		requireVecNear(t, mgl64.Vec3{-other[0], other[1], other[2]}, mirrored, 1e-12)
	})
}

func TestFluidField(t *testing.T) {
	t.Run("Filtered and opposes motion", func(t *testing.T) {
		ff := FluidField{Viscosity: 1, MaxForce: DefaultFluidMaxForce, Filter: NewLowPassFilter(0.2)}
		f := ff.Eval(mgl64.Vec3{0.5, 0, 0})
		requireVecNear(t, mgl64.Vec3{-0.1, 0, 0}, f, 1e-12)

		f = ff.Eval(mgl64.Vec3{0.5, 0, 0})
		requireVecNear(t, mgl64.Vec3{-0.18, 0, 0}, f, 1e-12)
	})

	t.Run("Clamped to max force", func(t *testing.T) {
		ff := FluidField{Viscosity: 10, MaxForce: 2, Filter: NewLowPassFilter(1)}
		f := ff.Eval(mgl64.Vec3{0, 3, 4})
		require.InDelta(t, 2.0, f.Len(), 1e-12)
		requireVecNear(t, mgl64.Vec3{0, -0.6, -0.8}, physics.Normalize(f), 1e-12)
	})

	t.Run("No filter means raw damping", func(t *testing.T) {
		ff := FluidField{Viscosity: 2, MaxForce: 100}
		requireVecNear(t, mgl64.Vec3{0, 0, -1}, ff.Eval(mgl64.Vec3{0, 0, 0.5}), 1e-12)
	})
}

func TestFluidic(t *testing.T) {
	f := Fluidic(mgl64.Vec3{0, 0.02, 0}, mgl64.Vec3{0.1, 0.3, 0}, mgl64.Vec3{}, 2.5)
	// direction (0,1,0): projected velocity (0,0.3,0) scaled by 2.5
	requireVecNear(t, mgl64.Vec3{0, 0.02 - 0.75, 0}, f, 1e-12)

	require.False(t, math.IsNaN(Fluidic(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{}, 2.5).Len()))
}

func TestSelect(t *testing.T) {
	tests := []struct {
		tag     snapshot.SurfaceTag
		contact ModelKind
		variant ModelKind
		want    ModelKind
	}{
		{snapshot.SurfaceDefault, ModelContact, ModelFluidVariant, ModelContact},
		{snapshot.SurfaceDefault, ModelMesh, ModelFluidVariant, ModelMesh},
		{snapshot.SurfaceNone, ModelContact, ModelFluidVariant, ModelContact},
		{snapshot.SurfaceFluid, ModelContact, ModelFluidic, ModelFluid},
		{snapshot.SurfaceFluidVariant, ModelContact, ModelFluidVariant, ModelFluidVariant},
		{snapshot.SurfaceFluidVariant, ModelContact, ModelFluidic, ModelFluidic},
		{snapshot.SurfaceTag(200), ModelContact, ModelFluidic, ModelNone},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String()+"/"+tt.want.String(), func(t *testing.T) {
			require.Equal(t, tt.want, Select(tt.tag, tt.contact, tt.variant))
		})
	}
	require.Equal(t, "unknown", ModelKind(99).String())
}

func TestModels_DoNotAllocate(t *testing.T) {
	ff := FluidField{Viscosity: 1, MaxForce: 2, Filter: NewLowPassFilter(0.2)}
	allocs := testing.AllocsPerRun(100, func() {
		_ = Contact(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{}, 400, 1)
		_ = MeshProximity(mgl64.Vec3{0, 0, 0.005}, mgl64.Vec3{}, 0.01, mgl64.Vec3{}, mgl64.Vec3{}, 500, 1)
		_ = ff.Eval(mgl64.Vec3{0.1, 0.2, 0.3})
	})
	require.Zero(t, allocs)
}
