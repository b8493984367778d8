package scene

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/haptics/internal/core/physics"
	"github.com/zeusync/haptics/internal/core/snapshot"
)

type cursor struct {
	pos    mgl64.Vec3
	radius float64
}

func (c cursor) Position() mgl64.Vec3 { return c.pos }
func (c cursor) Radius() float64      { return c.radius }

type fixedVelocity struct {
	v  mgl64.Vec3
	ok bool
}

func (f fixedVelocity) ReferenceVelocity() (mgl64.Vec3, bool) { return f.v, f.ok }

// fixedProxies places device i's proxy at the i-th position.
type fixedProxies []mgl64.Vec3

func (f fixedProxies) ProxyPosition(index int) (mgl64.Vec3, bool) {
	if index >= len(f) {
		return mgl64.Vec3{}, false
	}
	return f[index], true
}

type fixedState struct {
	active bool
	tag    snapshot.SurfaceTag
}

func (f fixedState) State() (bool, snapshot.SurfaceTag) { return f.active, f.tag }

func TestProducer_DeviceCountMismatch(t *testing.T) {
	_, err := NewProducer(snapshot.NewCache(2), []Kinematics{cursor{}})
	require.ErrorIs(t, err, ErrDeviceCount)
}

func TestProducer_StepPublishesProximity(t *testing.T) {
	cache := snapshot.NewCache(2)
	devices := []Kinematics{
		cursor{pos: mgl64.Vec3{0, 2, 0}, radius: 0.5},
		cursor{pos: mgl64.Vec3{3, 0, 0}, radius: 0.25},
	}
	p, err := NewProducer(cache, devices,
		WithProximity(physics.Sphere{Radius: 1}),
		WithReferenceVelocity(fixedVelocity{v: mgl64.Vec3{0, 0, 1}, ok: true}),
		WithProxy(fixedProxies{{0, 1, 0}, {3, 0, 0}}),
		WithCollision(fixedState{active: true, tag: snapshot.SurfaceFluid}, fixedState{}),
	)
	require.NoError(t, err)

	p.Step(10 * time.Millisecond)
	require.Equal(t, uint64(1), cache.Version())

	s := cache.Read()
	require.Equal(t, []float64{0.5, 0.25}, s.CursorRadii)
	first, second := s.ClosestPoints[0], s.ClosestPoints[1]
	require.InDeltaSlice(t, []float64{0, 1, 0}, first[:], 1e-12)
	require.InDeltaSlice(t, []float64{1, 0, 0}, second[:], 1e-12)
	require.Equal(t, mgl64.Vec3{0, 0, 1}, s.ReferenceVelocity)
	require.Equal(t, []snapshot.Effector{
		{ProxyPosition: mgl64.Vec3{0, 1, 0}, ProxyTracked: true, CollisionActive: true, SurfaceTag: snapshot.SurfaceFluid},
		{ProxyPosition: mgl64.Vec3{3, 0, 0}, ProxyTracked: true},
	}, s.Effectors)
}

func TestProducer_EffectorsAreIndependent(t *testing.T) {
	cache := snapshot.NewCache(3)
	devices := []Kinematics{cursor{}, cursor{}, cursor{}}
	p, err := NewProducer(cache, devices,
		WithProxy(fixedProxies{{1, 0, 0}, {2, 0, 0}}),
		WithCollision(nil, fixedState{active: true, tag: snapshot.SurfaceDefault}),
	)
	require.NoError(t, err)

	p.Step(0)
	s := cache.Read()
	require.Equal(t, snapshot.Effector{ProxyPosition: mgl64.Vec3{1, 0, 0}, ProxyTracked: true}, s.Effectors[0])
	require.True(t, s.Effectors[1].CollisionActive)
	require.Equal(t, snapshot.SurfaceDefault, s.Effectors[1].SurfaceTag)
	require.Equal(t, snapshot.Effector{}, s.Effectors[2])
}

func TestProducer_MissingSourcesDegrade(t *testing.T) {
	cache := snapshot.NewCache(1)
	p, err := NewProducer(cache, []Kinematics{cursor{pos: mgl64.Vec3{1, 1, 1}, radius: 0.5}},
		WithReferenceVelocity(fixedVelocity{v: mgl64.Vec3{9, 9, 9}, ok: false}),
		WithCollision(fixedState{active: false, tag: snapshot.SurfaceFluid}),
	)
	require.NoError(t, err)

	p.Step(0)
	s := cache.Read()
	require.Equal(t, []float64{0}, s.CursorRadii)
	require.Equal(t, mgl64.Vec3{1, 1, 1}, s.ClosestPoints[0])
	require.Equal(t, mgl64.Vec3{}, s.ReferenceVelocity)
	require.Equal(t, snapshot.Effector{}, s.Effectors[0])
}

func TestProducer_StepHookRunsFirst(t *testing.T) {
	cache := snapshot.NewCache(1)
	ms := physics.NewMovingSphere(mgl64.Vec3{}, 1)
	var steps []time.Duration
	p, err := NewProducer(cache, []Kinematics{cursor{pos: mgl64.Vec3{0, 5, 0}, radius: 1}},
		WithProximity(ms),
		WithStep(func(dt time.Duration) {
			steps = append(steps, dt)
			ms.SetCenter(mgl64.Vec3{0, 3, 0})
		}),
	)
	require.NoError(t, err)

	p.Step(5 * time.Millisecond)
	require.Equal(t, []time.Duration{5 * time.Millisecond}, steps)
	closest := cache.Read().ClosestPoints[0]
	require.InDeltaSlice(t, []float64{0, 4, 0}, closest[:], 1e-12)
}

func TestProducer_Run(t *testing.T) {
	cache := snapshot.NewCache(1)
	p, err := NewProducer(cache, []Kinematics{cursor{}})
	require.NoError(t, err)
	require.ErrorIs(t, p.Run(context.Background(), -1), ErrInvalidRate)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, 500) }()

	require.Eventually(t, func() bool { return cache.Version() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
