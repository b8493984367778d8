// Package signal turns an audio spectrum into force output for a single
// device. Spectrum extraction happens elsewhere; this package only consumes
// magnitude bins.
package signal

import "github.com/zeusync/haptics/internal/core/physics"

const (
	DefaultBassBins           = 20
	DefaultTrebleStart        = 100
	DefaultNormalizationSpeed = 0.1
	DefaultRangeMin           = -2.0
	DefaultRangeMax           = 2.0

	initialPeak = 0.01
	peakFloor   = 1e-4
)

// AnalyzerConfig controls band sums and their normalization.
type AnalyzerConfig struct {
	// Bass sums bins [0, BassBins); treble sums bins [TrebleStart, len).
	BassBins    int
	TrebleStart int
	// NormalizationSpeed is the lerp factor pulling the running peaks
	// toward the latest raw sums.
	NormalizationSpeed float64
	RangeMin           float64
	RangeMax           float64
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		BassBins:           DefaultBassBins,
		TrebleStart:        DefaultTrebleStart,
		NormalizationSpeed: DefaultNormalizationSpeed,
		RangeMin:           DefaultRangeMin,
		RangeMax:           DefaultRangeMax,
	}
}

// BandAnalyzer maps a spectrum to bass and treble levels in
// [RangeMin, RangeMax] using running peaks for normalization. Not safe for
// concurrent use.
type BandAnalyzer struct {
	cfg        AnalyzerConfig
	peakBass   float64
	peakTreble float64
	bass       float64
	treble     float64
}

func NewBandAnalyzer(cfg AnalyzerConfig) *BandAnalyzer {
	return &BandAnalyzer{cfg: cfg, peakBass: initialPeak, peakTreble: initialPeak}
}

// Update consumes one spectrum frame and returns the mapped levels.
func (a *BandAnalyzer) Update(spectrum []float64) (bass, treble float64) {
	var rawBass, rawTreble float64
	for i := 0; i < a.cfg.BassBins && i < len(spectrum); i++ {
		rawBass += spectrum[i]
	}
	for i := max(a.cfg.TrebleStart, 0); i < len(spectrum); i++ {
		rawTreble += spectrum[i]
	}

	a.peakBass = max(physics.Lerp(a.peakBass, rawBass, a.cfg.NormalizationSpeed), peakFloor)
	a.peakTreble = max(physics.Lerp(a.peakTreble, rawTreble, a.cfg.NormalizationSpeed), peakFloor)

	nb := physics.Clamp(rawBass/a.peakBass, 0, 1)
	nt := physics.Clamp(rawTreble/a.peakTreble, 0, 1)

	a.bass = physics.Lerp(a.cfg.RangeMin, a.cfg.RangeMax, nb)
	a.treble = physics.Lerp(a.cfg.RangeMin, a.cfg.RangeMax, nt)
	return a.bass, a.treble
}

func (a *BandAnalyzer) Bass() float64   { return a.bass }
func (a *BandAnalyzer) Treble() float64 { return a.treble }
