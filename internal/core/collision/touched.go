// Package collision tracks which colliders the physics proxy is touching and
// reports the resulting collision state to the snapshot producer.
package collision

import (
	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/haptics/internal/core/snapshot"
)

// Contact is a collider the proxy currently touches.
type Contact struct {
	ID  string
	Tag snapshot.SurfaceTag
}

// TouchedSet is an insertion-ordered set of contacts. The first contact
// decides the surface tag. It is not safe for concurrent use.
type TouchedSet struct {
	index    map[uint64]int
	contacts []Contact
}

func NewTouchedSet() *TouchedSet {
	return &TouchedSet{index: make(map[uint64]int)}
}

// Add inserts c unless a contact with the same ID is present. It reports
// whether the set changed.
func (s *TouchedSet) Add(c Contact) bool {
	key := xxhash.Sum64String(c.ID)
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.contacts)
	s.contacts = append(s.contacts, c)
	return true
}

// Remove drops the contact with id, keeping the order of the rest.
func (s *TouchedSet) Remove(id string) bool {
	key := xxhash.Sum64String(id)
	i, ok := s.index[key]
	if !ok {
		return false
	}
	delete(s.index, key)
	copy(s.contacts[i:], s.contacts[i+1:])
	s.contacts = s.contacts[:len(s.contacts)-1]
	for j := i; j < len(s.contacts); j++ {
		s.index[xxhash.Sum64String(s.contacts[j].ID)] = j
	}
	return true
}

// Contains reports whether id is in the set.
func (s *TouchedSet) Contains(id string) bool {
	_, ok := s.index[xxhash.Sum64String(id)]
	return ok
}

func (s *TouchedSet) Len() int { return len(s.contacts) }

// First returns the oldest contact still touched.
func (s *TouchedSet) First() (Contact, bool) {
	if len(s.contacts) == 0 {
		return Contact{}, false
	}
	return s.contacts[0], true
}

func (s *TouchedSet) Clear() {
	clear(s.index)
	s.contacts = s.contacts[:0]
}
