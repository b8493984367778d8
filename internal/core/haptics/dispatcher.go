// Package haptics renders forces on haptic devices at device rate from the
// latest scene snapshot.
package haptics

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/haptics/internal/core/device"
	"github.com/zeusync/haptics/internal/core/events/bus"
	"github.com/zeusync/haptics/internal/core/force"
	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/internal/core/physics"
	"github.com/zeusync/haptics/internal/core/snapshot"
	"github.com/zeusync/haptics/internal/core/telemetry"
)

// Recorder receives one sample per tick. Record must not block.
type Recorder interface {
	Record(s telemetry.Sample) bool
}

// slot is the per-device state. mu serializes the device's ticks with each
// other and with Close, and is never held by another device's tick.
type slot struct {
	mu          sync.Mutex
	index       int
	dev         device.Device
	scratch     snapshot.SceneSnapshot
	filter      *force.LowPassFilter
	ticks       uint64
	unsubscribe func()
}

// Dispatcher is the per-tick callback target for every attached device.
// Ticks for different devices may run concurrently; ticks for one device
// are serialized.
type Dispatcher struct {
	cache   *snapshot.Cache
	cfg     Config
	solid   force.ModelKind
	variant force.ModelKind

	mu     sync.Mutex // serializes Attach and Close
	slots  atomic.Pointer[[]*slot]
	closed atomic.Bool

	stats    counters
	recorder Recorder
	events   bus.EventBus
	session  string
	logger   log.Log
}

type Option func(*Dispatcher)

// WithRecorder streams a telemetry sample per tick to r.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithEvents publishes device.attached and device.released on b.
func WithEvents(b bus.EventBus) Option {
	return func(d *Dispatcher) { d.events = b }
}

// WithSession tags telemetry samples with id.
func WithSession(id string) Option {
	return func(d *Dispatcher) { d.session = id }
}

func WithLogger(l log.Log) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func NewDispatcher(cache *snapshot.Cache, cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cache:   cache,
		cfg:     cfg,
		solid:   cfg.solidKind(),
		variant: cfg.variantKind(),
		logger:  log.NewNop(),
	}
	empty := make([]*slot, 0)
	d.slots.Store(&empty)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the configuration the dispatcher was built with.
func (d *Dispatcher) Config() Config { return d.cfg }

// Attach registers devices in order; each takes the next snapshot slot.
func (d *Dispatcher) Attach(devices ...device.Device) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed.Load() {
		return ErrDispatcherClosed
	}

	cur := *d.slots.Load()
	if len(cur)+len(devices) > d.cache.DeviceCount() {
		return ErrTooManyDevices
	}

	next := make([]*slot, len(cur), len(cur)+len(devices))
	copy(next, cur)
	for _, dev := range devices {
		s := &slot{
			index:   len(next),
			dev:     dev,
			scratch: snapshot.New(d.cache.DeviceCount()),
			filter:  force.NewLowPassFilter(d.cfg.FilterAlpha),
		}
		s.filter.Reset(physics.Zero)
		next = append(next, s)
	}
	d.slots.Store(&next)

	for _, s := range next[len(cur):] {
		s.unsubscribe = s.dev.OnStateChanged(func(device.Device) { d.tick(s) })
		d.logger.Info("Device attached",
			log.Int("index", s.index),
			log.String("device_id", s.dev.ID()))
		d.publish(bus.EventDeviceAttached, s)
	}
	return nil
}

// Devices returns the number of attached devices.
func (d *Dispatcher) Devices() int {
	return len(*d.slots.Load())
}

// HandleTick runs one tick for the device attached at index. It may be
// called alongside the device's own state-changed notifications; the two
// are serialized per device. After Close it does nothing.
func (d *Dispatcher) HandleTick(index int) error {
	slots := *d.slots.Load()
	if index < 0 || index >= len(slots) {
		return ErrUnknownDevice
	}
	d.tick(slots[index])
	return nil
}

func (d *Dispatcher) tick(s *slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.closed.Load() {
		return
	}

	d.stats.ticks.Add(1)
	s.ticks++

	snap := &s.scratch
	d.cache.ReadInto(snap)
	e := snap.Effector(s.index)

	if !d.cfg.ForceEnabled || (d.cfg.CollisionGating && !e.CollisionActive) {
		d.release(s)
		return
	}

	kind := force.Select(e.SurfaceTag, d.solid, d.variant)
	if kind == force.ModelNone {
		d.release(s)
		return
	}

	f := physics.ClampMagnitude(d.evaluate(kind, s, snap, e), d.cfg.MaxForce)
	if err := s.dev.SetForce(f); err != nil {
		d.stats.writeErrors.Add(1)
		return
	}
	d.stats.models[kind].Add(1)
	d.record(s, kind, f, false)
}

// release disengages the device and clears the fluid filter so the next
// fluid contact starts from rest.
func (d *Dispatcher) release(s *slot) {
	s.dev.Release()
	s.filter.Reset(physics.Zero)
	d.stats.releases.Add(1)
	d.record(s, force.ModelNone, physics.Zero, true)
}

// evaluate runs kind for slot s. Proxy-based models anchor to the device's
// own effector e.
func (d *Dispatcher) evaluate(kind force.ModelKind, s *slot, snap *snapshot.SceneSnapshot, e snapshot.Effector) mgl64.Vec3 {
	p, v := s.dev.Position(), s.dev.Velocity()

	switch kind {
	case force.ModelContact:
		if !e.ProxyTracked {
			return physics.Zero
		}
		return force.Contact(p, v, e.ProxyPosition, physics.Zero, d.cfg.Stiffness, d.cfg.Damping)

	case force.ModelMesh:
		return d.mesh(s, p, v, snap)

	case force.ModelFluid:
		return force.FluidField{
			Viscosity: d.cfg.Viscosity,
			MaxForce:  d.cfg.FluidMaxForce,
			Filter:    s.filter,
		}.Eval(v)

	case force.ModelFluidVariant:
		return force.FluidField{
			Viscosity: d.cfg.VariantViscosity,
			MaxForce:  d.cfg.FluidMaxForce,
			Filter:    s.filter,
		}.Eval(v)

	case force.ModelFluidic:
		if !e.ProxyTracked {
			return physics.Zero
		}
		return force.Fluidic(p, v, e.ProxyPosition, d.cfg.FluidicExponent)

	default:
		return physics.Zero
	}
}

// mesh sums the device's own proximity force and, with mutual haptics, the
// force from its ring partner's closest point measured against this cursor.
func (d *Dispatcher) mesh(s *slot, p, v mgl64.Vec3, snap *snapshot.SceneSnapshot) mgl64.Vec3 {
	n := snap.DeviceCount()
	if s.index >= n {
		return physics.Zero
	}
	radius := snap.CursorRadii[s.index]
	f := force.MeshProximity(p, v, radius, snap.ClosestPoints[s.index], snap.ReferenceVelocity,
		d.cfg.Stiffness, d.cfg.Damping)

	if other, ok := force.Coupled(s.index, n, d.cfg.MutualHaptics); ok {
		f = f.Add(force.MeshProximity(p, v, radius, snap.ClosestPoints[other], snap.ReferenceVelocity,
			d.cfg.Stiffness, d.cfg.Damping))
	}
	return f
}

func (d *Dispatcher) record(s *slot, kind force.ModelKind, f mgl64.Vec3, released bool) {
	if d.recorder == nil {
		return
	}
	d.recorder.Record(telemetry.Sample{
		Session:  d.session,
		Device:   s.index,
		Tick:     s.ticks,
		Model:    kind.String(),
		Force:    f,
		Released: released,
		Version:  d.cache.Version(),
	})
}

// Stats returns the current counters.
func (d *Dispatcher) Stats() Stats {
	return d.stats.snapshot()
}

// Close detaches every device handler, waits for each device's running
// tick to finish and then releases the device. No tick drives a device
// after Close returns.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	for _, s := range *d.slots.Load() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.mu.Lock()
		s.dev.Release()
		s.filter.Reset(physics.Zero)
		s.mu.Unlock()
		d.logger.Info("Device released",
			log.Int("index", s.index),
			log.String("device_id", s.dev.ID()))
		d.publish(bus.EventDeviceReleased, s)
	}

	st := d.Stats()
	d.logger.Info("Dispatcher closed",
		log.Uint64("ticks", st.Ticks),
		log.Uint64("releases", st.Releases),
		log.Uint64("write_errors", st.WriteErrors))
	return nil
}

func (d *Dispatcher) publish(eventType string, s *slot) {
	if d.events == nil {
		return
	}
	err := d.events.Publish(bus.NewEvent(eventType, "dispatcher",
		bus.DevicePayload{Index: s.index, ID: s.dev.ID()}))
	if err != nil {
		d.logger.Warn("Device event handler failed",
			log.String("event", eventType),
			log.Error(err))
	}
}
