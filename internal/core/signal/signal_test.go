package signal

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/haptics/internal/core/device"
)

func flatSpectrum(n int, bass, treble float64) []float64 {
	s := make([]float64, n)
	for i := 0; i < DefaultBassBins; i++ {
		s[i] = bass
	}
	for i := DefaultTrebleStart; i < n; i++ {
		s[i] = treble
	}
	return s
}

func TestBandAnalyzer_Range(t *testing.T) {
	a := NewBandAnalyzer(DefaultAnalyzerConfig())

	// Silence maps to the bottom of the range.
	bass, treble := a.Update(make([]float64, 512))
	require.Equal(t, DefaultRangeMin, bass)
	require.Equal(t, DefaultRangeMin, treble)

	// A sudden loud frame exceeds the running peak and saturates.
	bass, treble = a.Update(flatSpectrum(512, 1, 1))
	require.Equal(t, DefaultRangeMax, bass)
	require.Equal(t, DefaultRangeMax, treble)

	// Steady input converges on the peak and stays at the top.
	for i := 0; i < 200; i++ {
		bass, _ = a.Update(flatSpectrum(512, 1, 1))
	}
	require.InDelta(t, DefaultRangeMax, bass, 1e-6)
	require.Equal(t, bass, a.Bass())

	// Half of the learned peak lands mid range.
	bass, _ = a.Update(flatSpectrum(512, 0.5, 1))
	require.Greater(t, bass, DefaultRangeMin)
	require.Less(t, bass, DefaultRangeMax)
}

func TestBandAnalyzer_ShortSpectrum(t *testing.T) {
	a := NewBandAnalyzer(DefaultAnalyzerConfig())
	bass, treble := a.Update([]float64{1, 1, 1})
	require.Equal(t, DefaultRangeMax, bass)
	require.Equal(t, DefaultRangeMin, treble)
	require.Equal(t, treble, a.Treble())
}

func TestOscillatingForce(t *testing.T) {
	o := NewOscillatingForce()

	// sin(2*pi*2*0.125) = 1
	f := o.Force(125*time.Millisecond, 2, 1)
	require.InDeltaSlice(t, []float64{0.4, 0.2, -0.5}, f[:], 1e-9)

	for i := 0; i < 100; i++ {
		f = o.Force(125*time.Millisecond, 10, 10)
	}
	require.InDelta(t, 2, f.X(), 1e-9)
	require.InDelta(t, 2, f.Y(), 1e-9)

	// Zero crossing pulls both axes back toward zero.
	f = o.Force(0, 10, 10)
	require.InDelta(t, 1.6, f.X(), 1e-9)
}

func TestGravityForce(t *testing.T) {
	g := NewGravityForce()
	f := g.Force(0, 1, -2)
	require.InDeltaSlice(t, []float64{-0.5, 0.2 + 0.5, -0.5}, f[:], 1e-9)

	g.UseBass = false
	for i := 0; i < 100; i++ {
		f = g.Force(0, 1, -2)
	}
	require.InDelta(t, -1.5+0.5, f.Y(), 1e-9)
}

type heldCursor struct{ p, v mgl64.Vec3 }

func (c heldCursor) Position() mgl64.Vec3 { return c.p }
func (c heldCursor) Velocity() mgl64.Vec3 { return c.v }

func TestPositionControl(t *testing.T) {
	c := NewPositionControl(heldCursor{}, mgl64.Vec3{0, 0.1, 0})

	// sin(2*pi*1*0.25) = 1
	target := c.Target(250*time.Millisecond, 2, -1)
	require.InDeltaSlice(t, []float64{-0.05, 0.2, 0}, target[:], 1e-9)

	// The spring toward the hold point saturates at MaxForce.
	f := c.Force(250*time.Millisecond, 2, -1)
	want := target.Normalize().Mul(c.MaxForce)
	require.InDeltaSlice(t, want[:], f[:], 1e-9)

	c.Oscillate = false
	c.MaxForce = 100
	f = c.Force(0, 1, 1)
	require.InDeltaSlice(t, []float64{0.05 * 400, 0.15 * 400, 0}, f[:], 1e-9)

	// A cursor resting on the hold point moving along x is only damped.
	c = NewPositionControl(heldCursor{p: mgl64.Vec3{0, 0.1, 0}, v: mgl64.Vec3{0.5, 0, 0}}, mgl64.Vec3{0, 0.1, 0})
	c.Oscillate = false
	f = c.Force(0, 0, 0)
	require.InDeltaSlice(t, []float64{-0.5, 0, 0}, f[:], 1e-9)
}

type constSpectrum float64

func (c constSpectrum) Spectrum(_ time.Duration, dst []float64) []float64 {
	for i := range dst {
		dst[i] = float64(c)
	}
	return dst
}

func TestDriver(t *testing.T) {
	dev := device.NewSimulated()
	d := NewDriver(constSpectrum(0.5), NewBandAnalyzer(DefaultAnalyzerConfig()), NewGravityForce(), dev, 256, nil)

	f, err := d.Step(0)
	require.NoError(t, err)
	got, engaged := dev.LastForce()
	require.True(t, engaged)
	require.Equal(t, f, got)
	require.Equal(t, mgl64.Vec3{-0.5, f.Y(), -0.5}, got)

	require.ErrorIs(t, d.Run(context.Background(), 0), ErrInvalidRate)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, 500) }()
	require.Eventually(t, func() bool { return dev.Writes() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	_, engaged = dev.LastForce()
	require.False(t, engaged)
}
