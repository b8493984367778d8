package haptics

import (
	"sync/atomic"

	"github.com/zeusync/haptics/internal/core/force"
)

type counters struct {
	ticks       atomic.Uint64
	releases    atomic.Uint64
	writeErrors atomic.Uint64
	models      [force.Count]atomic.Uint64
}

// Stats is a point-in-time copy of the dispatcher counters.
type Stats struct {
	Ticks       uint64
	Releases    uint64
	WriteErrors uint64
	// Models counts successful writes per force.ModelKind.
	Models [force.Count]uint64
}

// Evaluations returns how many writes used model k.
func (s Stats) Evaluations(k force.ModelKind) uint64 {
	if int(k) >= len(s.Models) {
		return 0
	}
	return s.Models[k]
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Ticks:       c.ticks.Load(),
		Releases:    c.releases.Load(),
		WriteErrors: c.writeErrors.Load(),
	}
	for i := range c.models {
		s.Models[i] = c.models[i].Load()
	}
	return s
}
