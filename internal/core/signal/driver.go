package signal

import (
	"context"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/haptics/internal/core/device"
	"github.com/zeusync/haptics/internal/core/observability/log"
)

var ErrInvalidRate = errors.New("signal: rate must be positive")

// SpectrumSource fills dst with the magnitude spectrum at elapsed and
// returns it.
type SpectrumSource interface {
	Spectrum(elapsed time.Duration, dst []float64) []float64
}

// Driver writes an audio-driven force to one device at simulation rate.
type Driver struct {
	source   SpectrumSource
	analyzer *BandAnalyzer
	variant  Variant
	dev      device.Device

	spectrum []float64
	logger   log.Log
}

// NewDriver builds a driver reading bins spectrum bins per step.
func NewDriver(source SpectrumSource, analyzer *BandAnalyzer, variant Variant, dev device.Device, bins int, logger log.Log) *Driver {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Driver{
		source:   source,
		analyzer: analyzer,
		variant:  variant,
		dev:      dev,
		spectrum: make([]float64, bins),
		logger:   logger.With(log.String("device_id", dev.ID())),
	}
}

// Step evaluates the variant for elapsed and writes the force.
func (d *Driver) Step(elapsed time.Duration) (mgl64.Vec3, error) {
	d.spectrum = d.source.Spectrum(elapsed, d.spectrum)
	bass, treble := d.analyzer.Update(d.spectrum)
	f := d.variant.Force(elapsed, bass, treble)
	return f, d.dev.SetForce(f)
}

// Run steps at rate Hz until ctx ends and releases the device on exit.
func (d *Driver) Run(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	defer d.dev.Release()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()
	start := time.Now()
	d.logger.Info("Audio force driver started", log.Float64("rate", rate))

	var failures uint64
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Audio force driver stopped", log.Uint64("write_errors", failures))
			return nil
		case now := <-ticker.C:
			if _, err := d.Step(now.Sub(start)); err != nil {
				if failures == 0 {
					d.logger.Warn("Audio force write failed", log.Error(err))
				}
				failures++
			}
		}
	}
}
