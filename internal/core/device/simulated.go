package device

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Motion returns the cursor position after elapsed time since start.
type Motion func(elapsed time.Duration) mgl64.Vec3

// Still keeps the cursor at p.
func Still(p mgl64.Vec3) Motion {
	return func(time.Duration) mgl64.Vec3 { return p }
}

type handlerEntry struct {
	id uint64
	fn Handler
}

// Simulated is an in-process device. Kinematics come from a Motion function
// and velocity is derived by finite difference between state changes.
type Simulated struct {
	id     string
	radius float64
	motion Motion
	clock  func() time.Time
	start  time.Time

	stateMu  sync.RWMutex // guards kinematics and output
	position mgl64.Vec3
	velocity mgl64.Vec3
	lastAt   time.Duration
	primed   bool
	force    mgl64.Vec3
	engaged  bool
	writes   uint64

	handlersMu sync.Mutex // serializes writers of handlers
	handlers   atomic.Pointer[[]handlerEntry]
	nextID     uint64

	closed atomic.Bool
}

// Option configures a Simulated device.
type Option func(*Simulated)

// WithID overrides the generated device identifier.
func WithID(id string) Option {
	return func(s *Simulated) { s.id = id }
}

// WithRadius sets the cursor radius.
func WithRadius(r float64) Option {
	return func(s *Simulated) { s.radius = r }
}

// WithMotion sets the cursor trajectory.
func WithMotion(m Motion) Option {
	return func(s *Simulated) { s.motion = m }
}

// WithClock replaces time.Now for Tick.
func WithClock(now func() time.Time) Option {
	return func(s *Simulated) { s.clock = now }
}

// NewSimulated creates a device resting at the origin unless a Motion is
// given.
func NewSimulated(opts ...Option) *Simulated {
	s := &Simulated{
		id:     uuid.NewString(),
		motion: Still(mgl64.Vec3{}),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.start = s.clock()
	s.position = s.motion(0)
	empty := make([]handlerEntry, 0)
	s.handlers.Store(&empty)
	return s
}

func (s *Simulated) ID() string      { return s.id }
func (s *Simulated) Radius() float64 { return s.radius }

func (s *Simulated) Position() mgl64.Vec3 {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.position
}

func (s *Simulated) Velocity() mgl64.Vec3 {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.velocity
}

func (s *Simulated) SetForce(f mgl64.Vec3) error {
	if s.closed.Load() {
		return ErrDeviceClosed
	}
	s.stateMu.Lock()
	s.force = f
	s.engaged = true
	s.writes++
	s.stateMu.Unlock()
	return nil
}

func (s *Simulated) Release() {
	s.stateMu.Lock()
	s.force = mgl64.Vec3{}
	s.engaged = false
	s.stateMu.Unlock()
}

// LastForce returns the most recent force written and whether output is
// currently engaged.
func (s *Simulated) LastForce() (mgl64.Vec3, bool) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.force, s.engaged
}

// Writes returns how many times SetForce succeeded.
func (s *Simulated) Writes() uint64 {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.writes
}

func (s *Simulated) OnStateChanged(h Handler) func() {
	if h == nil {
		return func() {}
	}

	s.handlersMu.Lock()
	s.nextID++
	id := s.nextID
	cur := *s.handlers.Load()
	next := make([]handlerEntry, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, handlerEntry{id: id, fn: h})
	s.handlers.Store(&next)
	s.handlersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.removeHandler(id) })
	}
}

func (s *Simulated) removeHandler(id uint64) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	cur := *s.handlers.Load()
	next := make([]handlerEntry, 0, len(cur))
	for _, e := range cur {
		if e.id != id {
			next = append(next, e)
		}
	}
	s.handlers.Store(&next)
}

// Handlers returns the number of registered state handlers.
func (s *Simulated) Handlers() int {
	return len(*s.handlers.Load())
}

// Tick advances kinematics to the current clock and notifies handlers.
func (s *Simulated) Tick() {
	s.Step(s.clock().Sub(s.start))
}

// Step advances kinematics to elapsed and notifies handlers. Time must not
// run backwards; a non-increasing elapsed keeps the previous velocity.
func (s *Simulated) Step(elapsed time.Duration) {
	if s.closed.Load() {
		return
	}
	p := s.motion(elapsed)

	s.stateMu.Lock()
	dt := elapsed - s.lastAt
	if s.primed && dt > 0 {
		s.velocity = p.Sub(s.position).Mul(1 / dt.Seconds())
	}
	s.position = p
	s.lastAt = elapsed
	s.primed = true
	s.stateMu.Unlock()

	for _, e := range *s.handlers.Load() {
		e.fn(s)
	}
}

// Run ticks at rate Hz until ctx ends, then releases output.
func (s *Simulated) Run(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()
	defer s.Release()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Close stops notifications and releases output. Later SetForce calls fail
// with ErrDeviceClosed.
func (s *Simulated) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.handlersMu.Lock()
	empty := make([]handlerEntry, 0)
	s.handlers.Store(&empty)
	s.handlersMu.Unlock()
	s.Release()
	return nil
}
