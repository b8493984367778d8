package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/pkg/generic"
)

// DefaultBuffer is the recorder queue length used when none is given.
const DefaultBuffer = 4096

// Recorder decouples the haptic loop from telemetry sinks. Record never
// blocks; samples that do not fit in the queue are counted and dropped.
type Recorder struct {
	queue    chan Sample
	recorded atomic.Uint64
	dropped  atomic.Uint64

	sinksMu sync.RWMutex
	sinks   []Sink

	buffers *generic.Pool[*bytes.Buffer]
	logger  log.Log
}

func NewRecorder(buffer int, logger log.Log) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Recorder{
		queue: make(chan Sample, buffer),
		buffers: generic.NewResetPool(
			func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 256)) },
			func(b *bytes.Buffer) { b.Reset() },
		),
		logger: logger,
	}
}

// Record enqueues s and reports whether it was accepted.
func (r *Recorder) Record(s Sample) bool {
	select {
	case r.queue <- s:
		r.recorded.Add(1)
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// AddSink registers a sink for every sample drained by Run.
func (r *Recorder) AddSink(s Sink) {
	r.sinksMu.Lock()
	r.sinks = append(r.sinks, s)
	r.sinksMu.Unlock()
}

func (r *Recorder) Recorded() uint64 { return r.recorded.Load() }
func (r *Recorder) Dropped() uint64  { return r.dropped.Load() }

// Run drains the queue into the sinks until ctx ends.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if n := r.dropped.Load(); n > 0 {
				r.logger.Warn("Telemetry samples dropped", log.Uint64("dropped", n))
			}
			return nil
		case s := <-r.queue:
			r.fanOut(s)
		}
	}
}

func (r *Recorder) fanOut(s Sample) {
	r.sinksMu.RLock()
	sinks := r.sinks
	r.sinksMu.RUnlock()
	if len(sinks) == 0 {
		return
	}

	buf := r.buffers.Get()
	defer r.buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(s); err != nil {
		r.logger.Error("Failed to encode telemetry sample", log.Error(err))
		return
	}
	msg := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	for _, sink := range sinks {
		sink.Send(msg)
	}
}
