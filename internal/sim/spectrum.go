package sim

import (
	"math"
	"time"
)

// SyntheticSpectrum produces a repeatable magnitude spectrum: a bass band
// pulsing at BeatHz and a treble band shimmering at ShimmerHz.
type SyntheticSpectrum struct {
	BassBins    int
	TrebleStart int
	BeatHz      float64
	ShimmerHz   float64
	Level       float64
}

func NewSyntheticSpectrum() SyntheticSpectrum {
	return SyntheticSpectrum{BassBins: 20, TrebleStart: 100, BeatHz: 2, ShimmerHz: 7, Level: 0.05}
}

func (s SyntheticSpectrum) Spectrum(elapsed time.Duration, dst []float64) []float64 {
	t := elapsed.Seconds()
	beat := 0.5 + 0.5*math.Sin(2*math.Pi*s.BeatHz*t)
	shimmer := 0.5 + 0.5*math.Sin(2*math.Pi*s.ShimmerHz*t)

	for i := range dst {
		switch {
		case i < s.BassBins:
			dst[i] = s.Level * beat / float64(i+1)
		case i >= s.TrebleStart:
			dst[i] = s.Level * 0.1 * shimmer
		default:
			dst[i] = 0
		}
	}
	return dst
}
