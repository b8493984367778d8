// Package sim is a small rigid-body scene used to drive the haptic core
// without an external physics engine: a moving target ball, a proxy body
// that follows the cursor, and static tagged colliders.
package sim

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/haptics/internal/core/events/bus"
	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/internal/core/physics"
	"github.com/zeusync/haptics/internal/core/snapshot"
)

// contactSkin keeps a proxy resting on a solid surface registered as
// touching it.
const contactSkin = 1e-6

// Cursor is a device a proxy follows.
type Cursor interface {
	Position() mgl64.Vec3
}

// Collider is a static sphere with a surface tag.
type Collider struct {
	ID    string
	Tag   string
	Shape physics.Sphere
}

func (c Collider) solid() bool {
	return snapshot.ParseSurfaceTag(c.Tag) == snapshot.SurfaceDefault
}

// TargetConfig describes the oscillating target ball.
type TargetConfig struct {
	Center    mgl64.Vec3
	Radius    float64
	Amplitude mgl64.Vec3
	Frequency float64
}

// Config describes the scene.
type Config struct {
	// Rate is the simulation step rate in Hz; the proxy spring is tuned for it.
	Rate           int
	ProxyRadius    float64
	ProxyFrequency float64
	ProxyDamping   float64
	Target         TargetConfig
	// Topic is the base bus topic; proxy i publishes its collision events to
	// EffectorTopic(Topic, i).
	Topic string
}

// EffectorTopic is the bus topic carrying the collision events of proxy
// index.
func EffectorTopic(base string, index int) string {
	return base + "." + strconv.Itoa(index)
}

// proxy is the physics body following one cursor.
type proxy struct {
	cursor   Cursor
	topic    string
	pos      mgl64.Vec3
	vel      mgl64.Vec3
	touching map[string]bool
}

func DefaultConfig() Config {
	return Config{
		Rate:           60,
		ProxyRadius:    0.01,
		ProxyFrequency: 30,
		ProxyDamping:   1,
		Target: TargetConfig{
			Center:    mgl64.Vec3{0, -0.05, 0},
			Radius:    0.04,
			Amplitude: mgl64.Vec3{0.02, 0, 0},
			Frequency: 0.25,
		},
		Topic: "effector",
	}
}

// World owns all scene state. Step runs on the producer goroutine; the
// accessors may be called from any goroutine.
type World struct {
	cfg    Config
	events bus.EventBus
	spring harmonica.Spring
	target *physics.MovingSphere

	mu        sync.RWMutex
	elapsed   time.Duration
	targetVel mgl64.Vec3
	proxies   []*proxy
	colliders []Collider

	logger log.Log
}

// NewWorld places one proxy at each cursor. Proxies collide with the static
// colliders only, never with each other. events may be nil.
func NewWorld(cfg Config, cursors []Cursor, events bus.EventBus, logger log.Log) *World {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultConfig().Rate
	}
	w := &World{
		cfg:     cfg,
		events:  events,
		spring:  harmonica.NewSpring(harmonica.FPS(cfg.Rate), cfg.ProxyFrequency, cfg.ProxyDamping),
		target:  physics.NewMovingSphere(cfg.Target.Center, cfg.Target.Radius),
		proxies: make([]*proxy, len(cursors)),
		logger:  logger.With(log.String("component", "sim")),
	}
	for i, c := range cursors {
		w.proxies[i] = &proxy{
			cursor:   c,
			topic:    EffectorTopic(cfg.Topic, i),
			pos:      c.Position(),
			touching: make(map[string]bool),
		}
	}
	return w
}

// Proxies returns the number of proxy bodies.
func (w *World) Proxies() int { return len(w.proxies) }

// Topic returns the collision topic of proxy index.
func (w *World) Topic(index int) string { return EffectorTopic(w.cfg.Topic, index) }

// AddCollider registers a static sphere and returns it with a fresh ID.
func (w *World) AddCollider(tag string, shape physics.Sphere) Collider {
	c := Collider{ID: uuid.NewString(), Tag: tag, Shape: shape}
	w.mu.Lock()
	w.colliders = append(w.colliders, c)
	w.mu.Unlock()
	w.logger.Debug("Collider added",
		log.String("collider", c.ID),
		log.String("tag", tag),
		log.Vec3("center", shape.Center),
		log.Float64("radius", shape.Radius))
	return c
}

// Target is the moving ball cursors are measured against.
func (w *World) Target() *physics.MovingSphere { return w.target }

// ReferenceVelocity is the target ball velocity.
func (w *World) ReferenceVelocity() (mgl64.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.targetVel, true
}

// ProxyPosition is the position of the proxy following cursor index.
func (w *World) ProxyPosition(index int) (mgl64.Vec3, bool) {
	if index < 0 || index >= len(w.proxies) {
		return physics.Zero, false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.proxies[index].pos, true
}

type transition struct {
	begin    bool
	topic    string
	collider Collider
}

// Step advances the scene by dt and publishes collision transitions.
func (w *World) Step(dt time.Duration) {
	cursors := make([]mgl64.Vec3, len(w.proxies))
	for i, p := range w.proxies {
		cursors[i] = p.cursor.Position()
	}

	w.mu.Lock()
	w.elapsed += dt
	w.moveTarget(dt)
	var changes []transition
	for i, p := range w.proxies {
		w.moveProxy(p, cursors[i])
		changes = w.updateContacts(p, changes)
	}
	w.mu.Unlock()

	for _, ch := range changes {
		w.publish(ch)
	}
}

func (w *World) moveTarget(dt time.Duration) {
	tc := w.cfg.Target
	phase := math.Sin(2 * math.Pi * tc.Frequency * w.elapsed.Seconds())
	next := tc.Center.Add(tc.Amplitude.Mul(phase))
	prev := w.target.Sphere().Center
	if dt > 0 {
		w.targetVel = next.Sub(prev).Mul(1 / dt.Seconds())
	}
	w.target.SetCenter(next)
}

// moveProxy pulls p toward its cursor on a damped spring per axis, then
// pushes it out of every solid collider.
func (w *World) moveProxy(p *proxy, cursor mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		p.pos[i], p.vel[i] = w.spring.Update(p.pos[i], p.vel[i], cursor[i])
	}

	for _, c := range w.colliders {
		if !c.solid() {
			continue
		}
		reach := c.Shape.Radius + w.cfg.ProxyRadius
		offset := p.pos.Sub(c.Shape.Center)
		if offset.Len() >= reach {
			continue
		}
		n := physics.Normalize(offset)
		if n == physics.Zero {
			n = mgl64.Vec3{0, 1, 0}
		}
		p.pos = c.Shape.Center.Add(n.Mul(reach))
		p.vel = p.vel.Sub(n.Mul(p.vel.Dot(n)))
	}
}

func (w *World) updateContacts(p *proxy, out []transition) []transition {
	for _, c := range w.colliders {
		reach := c.Shape.Radius + w.cfg.ProxyRadius + contactSkin
		inside := physics.Distance(p.pos, c.Shape.Center) <= reach
		switch {
		case inside && !p.touching[c.ID]:
			p.touching[c.ID] = true
			out = append(out, transition{begin: true, topic: p.topic, collider: c})
		case !inside && p.touching[c.ID]:
			delete(p.touching, c.ID)
			out = append(out, transition{begin: false, topic: p.topic, collider: c})
		}
	}
	return out
}

func (w *World) publish(t transition) {
	if w.events == nil {
		return
	}
	typ := bus.EventCollisionEnd
	if t.begin {
		typ = bus.EventCollisionBegin
	}
	err := w.events.PublishToTopic(t.topic, bus.NewEvent(typ, "sim",
		bus.CollisionPayload{ColliderID: t.collider.ID, Tag: t.collider.Tag}))
	if err != nil {
		w.logger.Warn("Collision event handler failed", log.String("event", typ), log.Error(err))
	}
}
