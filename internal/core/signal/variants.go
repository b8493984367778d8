package signal

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/haptics/internal/core/force"
	"github.com/zeusync/haptics/internal/core/physics"
)

// Variant maps band levels to a force. Implementations keep smoothing state
// and are driven by one goroutine.
type Variant interface {
	Force(elapsed time.Duration, bass, treble float64) mgl64.Vec3
}

// OscillatingForce drives x and y with band levels modulated by a sine at
// Frequency. The x axis follows bass and the y axis follows treble, each
// scaled by the other band's multiplier.
type OscillatingForce struct {
	UseX, UseY       bool
	BassMultiplier   float64
	TrebleMultiplier float64
	Frequency        float64
	Smooth           float64
	MaxForce         float64
	ZOffset          float64

	x, y float64
}

func NewOscillatingForce() *OscillatingForce {
	return &OscillatingForce{
		UseX:             true,
		UseY:             true,
		BassMultiplier:   1,
		TrebleMultiplier: 1,
		Frequency:        2,
		Smooth:           0.2,
		MaxForce:         2,
		ZOffset:          -0.5,
	}
}

func (o *OscillatingForce) Force(elapsed time.Duration, bass, treble float64) mgl64.Vec3 {
	dir := math.Sin(2 * math.Pi * o.Frequency * elapsed.Seconds())

	var tx, ty float64
	if o.UseX {
		tx = bass * o.TrebleMultiplier * dir
	}
	if o.UseY {
		ty = treble * o.BassMultiplier * dir
	}

	o.x = physics.Clamp(physics.Lerp(o.x, tx, o.Smooth), -o.MaxForce, o.MaxForce)
	o.y = physics.Clamp(physics.Lerp(o.y, ty, o.Smooth), -o.MaxForce, o.MaxForce)
	return mgl64.Vec3{o.x, o.y, o.ZOffset}
}

// GravityForce pulls along y with one band level on top of a constant
// offset force.
type GravityForce struct {
	UseBass          bool
	BassMultiplier   float64
	TrebleMultiplier float64
	Smooth           float64
	MaxForce         float64
	Offset           mgl64.Vec3

	y float64
}

func NewGravityForce() *GravityForce {
	return &GravityForce{
		UseBass:          true,
		BassMultiplier:   1,
		TrebleMultiplier: 1,
		Smooth:           0.2,
		MaxForce:         1.5,
		Offset:           mgl64.Vec3{-0.5, -0.5, -0.5},
	}
}

func (g *GravityForce) Force(_ time.Duration, bass, treble float64) mgl64.Vec3 {
	target := treble * g.TrebleMultiplier
	if g.UseBass {
		target = bass * g.BassMultiplier
	}
	g.y = physics.Clamp(physics.Lerp(g.y, target, g.Smooth), -g.MaxForce, g.MaxForce)
	return mgl64.Vec3{g.Offset.X(), g.y - g.Offset.Y(), g.Offset.Z()}
}

// Cursor is the kinematic state PositionControl holds against.
type Cursor interface {
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
}

// PositionControl moves a hold point around Center with the band levels:
// treble drives x and bass drives y, both modulated by a sine at Frequency
// unless Oscillate is off. The point is rendered as a spring on the cursor.
type PositionControl struct {
	Center    mgl64.Vec3
	TrebleToX float64
	BassToY   float64
	Frequency float64
	Oscillate bool
	Stiffness float64
	Damping   float64
	MaxForce  float64

	cursor Cursor
}

func NewPositionControl(cursor Cursor, center mgl64.Vec3) *PositionControl {
	return &PositionControl{
		Center:    center,
		TrebleToX: 0.05,
		BassToY:   0.05,
		Frequency: 1,
		Oscillate: true,
		Stiffness: 400,
		Damping:   1,
		MaxForce:  10,
		cursor:    cursor,
	}
}

// Target is the hold point for the given band levels.
func (c *PositionControl) Target(elapsed time.Duration, bass, treble float64) mgl64.Vec3 {
	osc := 1.0
	if c.Oscillate {
		osc = math.Sin(2 * math.Pi * c.Frequency * elapsed.Seconds())
	}
	return c.Center.Add(mgl64.Vec3{treble * c.TrebleToX * osc, bass * c.BassToY * osc, 0})
}

func (c *PositionControl) Force(elapsed time.Duration, bass, treble float64) mgl64.Vec3 {
	target := c.Target(elapsed, bass, treble)
	f := force.Contact(c.cursor.Position(), c.cursor.Velocity(), target, physics.Zero, c.Stiffness, c.Damping)
	return physics.ClampMagnitude(f, c.MaxForce)
}
