package collision

import (
	"errors"
	"sync"

	"github.com/zeusync/haptics/internal/core/events/bus"
	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/internal/core/snapshot"
)

// StateSource is what the snapshot producer reads each simulation step.
type StateSource interface {
	State() (active bool, tag snapshot.SurfaceTag)
}

// Tracker maintains the touched set of one effector from collision events
// published on its bus topic.
type Tracker struct {
	mu      sync.Mutex
	touched *TouchedSet
	closed  bool

	topic  string
	subs   []bus.Subscription
	logger log.Log
}

// NewTracker subscribes to collision.begin and collision.end on topic.
func NewTracker(b bus.EventBus, topic string, logger log.Log) (*Tracker, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	t := &Tracker{
		touched: NewTouchedSet(),
		topic:   topic,
		logger:  logger.With(log.String("topic", topic)),
	}

	if err := b.CreateTopic(topic); err != nil {
		return nil, err
	}
	begin, err := b.SubscribeTopic(topic, bus.EventCollisionBegin, t.onBegin)
	if err != nil {
		return nil, err
	}
	end, err := b.SubscribeTopic(topic, bus.EventCollisionEnd, t.onEnd)
	if err != nil {
		_ = begin.Cancel()
		return nil, err
	}
	t.subs = []bus.Subscription{begin, end}
	return t, nil
}

func (t *Tracker) onBegin(e bus.Event) error {
	p, ok := e.Data().(bus.CollisionPayload)
	if !ok {
		return ErrInvalidPayload
	}
	c := Contact{ID: p.ColliderID, Tag: snapshot.ParseSurfaceTag(p.Tag)}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTrackerClosed
	}
	if t.touched.Add(c) {
		t.logger.Debug("Collision begin",
			log.String("collider", c.ID),
			log.String("tag", c.Tag.String()),
			log.Int("touched", t.touched.Len()))
	}
	return nil
}

func (t *Tracker) onEnd(e bus.Event) error {
	p, ok := e.Data().(bus.CollisionPayload)
	if !ok {
		return ErrInvalidPayload
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTrackerClosed
	}
	if t.touched.Remove(p.ColliderID) {
		t.logger.Debug("Collision end",
			log.String("collider", p.ColliderID),
			log.Int("touched", t.touched.Len()))
	}
	return nil
}

// State reports whether anything is touched and the tag of the first
// touched collider. The tag is None when nothing is touched.
func (t *Tracker) State() (bool, snapshot.SurfaceTag) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.touched.First()
	if !ok {
		return false, snapshot.SurfaceNone
	}
	return true, c.Tag
}

// Touched returns the number of touched colliders.
func (t *Tracker) Touched() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.touched.Len()
}

// Reset forgets every contact.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.touched.Clear()
	t.mu.Unlock()
}

// Close cancels the bus subscriptions and clears the set.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.touched.Clear()
	subs := t.subs
	t.subs = nil
	t.mu.Unlock()

	var all error
	for _, s := range subs {
		all = errors.Join(all, s.Cancel())
	}
	return all
}
