// Package scene builds SceneSnapshots on the simulation context and
// publishes them to the snapshot cache.
package scene

import (
	"context"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/haptics/internal/core/collision"
	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/internal/core/physics"
	"github.com/zeusync/haptics/internal/core/snapshot"
)

var (
	ErrDeviceCount = errors.New("scene: device count does not match cache")
	ErrInvalidRate = errors.New("scene: rate must be positive")
)

// Kinematics is the per-device state the producer samples. device.Device
// satisfies it.
type Kinematics interface {
	Position() mgl64.Vec3
	Radius() float64
}

// VelocitySource reports the velocity of the tracked target, if any.
type VelocitySource interface {
	ReferenceVelocity() (mgl64.Vec3, bool)
}

// ProxySource reports the physics proxy position of device index, if it
// has one.
type ProxySource interface {
	ProxyPosition(index int) (mgl64.Vec3, bool)
}

// StepFunc advances the simulation by dt before a snapshot is built.
type StepFunc func(dt time.Duration)

// Producer samples devices and scene collaborators and publishes a snapshot
// per step. It is driven by a single goroutine.
type Producer struct {
	cache   *snapshot.Cache
	devices []Kinematics

	proximity physics.ProximitySource
	reference VelocitySource
	proxy     ProxySource
	collision []collision.StateSource
	step      StepFunc

	scratch snapshot.SceneSnapshot
	logger  log.Log
}

type Option func(*Producer)

// WithProximity sets the surface cursors are measured against. Without it
// every cursor radius is published as zero.
func WithProximity(src physics.ProximitySource) Option {
	return func(p *Producer) { p.proximity = src }
}

func WithReferenceVelocity(src VelocitySource) Option {
	return func(p *Producer) { p.reference = src }
}

func WithProxy(src ProxySource) Option {
	return func(p *Producer) { p.proxy = src }
}

// WithCollision sets the touched-set state of each device's effector, in
// device order. Devices without a source, or with a nil one, never collide.
func WithCollision(srcs ...collision.StateSource) Option {
	return func(p *Producer) { p.collision = srcs }
}

// WithStep runs fn on the producer goroutine ahead of every snapshot.
func WithStep(fn StepFunc) Option {
	return func(p *Producer) { p.step = fn }
}

func WithLogger(l log.Log) Option {
	return func(p *Producer) { p.logger = l }
}

// NewProducer creates a producer for devices, which must match the cache's
// device count in number and order.
func NewProducer(cache *snapshot.Cache, devices []Kinematics, opts ...Option) (*Producer, error) {
	if len(devices) != cache.DeviceCount() {
		return nil, ErrDeviceCount
	}
	p := &Producer{
		cache:   cache,
		devices: devices,
		scratch: snapshot.New(len(devices)),
		logger:  log.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Step advances the simulation by dt, builds a snapshot and publishes it.
func (p *Producer) Step(dt time.Duration) {
	if p.step != nil {
		p.step(dt)
	}
	p.build(&p.scratch)
	p.cache.Publish(p.scratch)
}

func (p *Producer) build(s *snapshot.SceneSnapshot) {
	for i, d := range p.devices {
		pos := d.Position()
		if p.proximity != nil {
			s.CursorRadii[i] = d.Radius()
			s.ClosestPoints[i] = p.proximity.ClosestPoint(pos)
		} else {
			s.CursorRadii[i] = 0
			s.ClosestPoints[i] = pos
		}
	}

	s.ReferenceVelocity = physics.Zero
	if p.reference != nil {
		if v, ok := p.reference.ReferenceVelocity(); ok {
			s.ReferenceVelocity = v
		}
	}

	for i := range s.Effectors {
		e := &s.Effectors[i]
		e.ProxyPosition, e.ProxyTracked = physics.Zero, false
		if p.proxy != nil {
			e.ProxyPosition, e.ProxyTracked = p.proxy.ProxyPosition(i)
		}

		e.CollisionActive, e.SurfaceTag = false, snapshot.SurfaceNone
		if i < len(p.collision) && p.collision[i] != nil {
			e.CollisionActive, e.SurfaceTag = p.collision[i].State()
		}
	}
}

// Run publishes once immediately and then at rate Hz until ctx ends.
func (p *Producer) Run(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	period := time.Duration(float64(time.Second) / rate)
	p.Step(0)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	p.logger.Info("Scene producer started",
		log.Float64("rate", rate),
		log.Int("devices", len(p.devices)))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Scene producer stopped", log.Uint64("published", p.cache.Version()))
			return nil
		case now := <-ticker.C:
			p.Step(now.Sub(last))
			last = now
		}
	}
}
