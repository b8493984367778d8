package snapshot

import (
	"sync"
	"sync/atomic"
)

// Cache is a single-slot store for the latest SceneSnapshot. One producer
// publishes at simulation rate, any number of haptic ticks read at device
// rate. Both sides hold the lock only while copying O(device count) values.
type Cache struct {
	valueMu sync.RWMutex // guards value
	value   SceneSnapshot

	version atomic.Uint64 // number of publishes so far
	devices int
}

// NewCache creates a cache for a fixed number of devices. Before the first
// Publish every read returns the zero snapshot.
func NewCache(deviceCount int) *Cache {
	c := &Cache{value: New(deviceCount)}
	c.devices = c.value.DeviceCount()
	return c
}

// Publish replaces the stored snapshot. s is copied; the caller keeps
// ownership of its slices.
func (c *Cache) Publish(s SceneSnapshot) {
	c.valueMu.Lock()
	s.CopyInto(&c.value)
	c.value.Normalize()
	c.valueMu.Unlock()

	c.version.Add(1)
}

// Read returns a freshly allocated copy of the latest snapshot.
func (c *Cache) Read() SceneSnapshot {
	out := New(c.devices)
	c.ReadInto(&out)
	return out
}

// ReadInto copies the latest snapshot into dst without allocating, provided
// dst was created with New(c.DeviceCount()).
func (c *Cache) ReadInto(dst *SceneSnapshot) {
	c.valueMu.RLock()
	c.value.CopyInto(dst)
	c.valueMu.RUnlock()
}

// Version returns how many snapshots have been published.
func (c *Cache) Version() uint64 {
	return c.version.Load()
}

// DeviceCount returns the device count fixed at construction.
func (c *Cache) DeviceCount() int {
	return c.devices
}
