package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/haptics/internal/core/haptics"
	"github.com/zeusync/haptics/internal/core/physics"
)

// Load decodes YAML from r over Default, then normalizes and validates.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrap(err, "decode config")
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads path and calls Load.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "load %s", path)
	}
	return c, nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, pkgerrors.Wrap(err, "encode config")
	}
	if err := enc.Close(); err != nil {
		return nil, pkgerrors.Wrap(err, "encode config")
	}
	return buf.Bytes(), nil
}

// Normalize clamps scalars into their documented ranges. It runs once at
// load time so the haptic loop never re-checks them.
func (c *Config) Normalize() {
	h := &c.Haptics
	h.Stiffness = physics.Clamp(h.Stiffness, 0, 800)
	h.Damping = physics.Clamp(h.Damping, 0, 3)
	h.Viscosity = physics.Clamp(h.Viscosity, 0, 10)
	h.VariantViscosity = physics.Clamp(h.VariantViscosity, 0, 10)
	h.FluidicExponent = physics.Clamp(h.FluidicExponent, 0, 3)
	if h.FilterAlpha <= 0 || h.FilterAlpha > 1 {
		h.FilterAlpha = haptics.DefaultConfig().FilterAlpha
	}
	if h.FluidMaxForce <= 0 {
		h.FluidMaxForce = haptics.DefaultConfig().FluidMaxForce
	}
	if h.MaxForce <= 0 {
		h.MaxForce = haptics.DefaultConfig().MaxForce
	}

	for i := range c.Devices {
		if c.Devices[i].Radius < 0 {
			c.Devices[i].Radius = 0
		}
		if c.Devices[i].Motion.Kind == "" {
			c.Devices[i].Motion.Kind = MotionStill
		}
	}
	if c.Scene.Proximity == "" {
		c.Scene.Proximity = ProximityNone
	}
	if c.Telemetry.Buffer <= 0 {
		c.Telemetry.Buffer = Default().Telemetry.Buffer
	}
	if c.Audio.Bins <= 0 {
		c.Audio.Bins = Default().Audio.Bins
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{err}, args...)...))
	}
	vec := func(name string, s []float64) {
		if len(s) != 3 {
			add(ErrInvalidVector, "%s has %d components", name, len(s))
		}
	}

	if len(c.Devices) == 0 {
		errs = append(errs, ErrNoDevices)
	}
	if c.HapticRate <= 0 || c.SimRate <= 0 {
		add(ErrInvalidRate, "haptic_rate=%v sim_rate=%v", c.HapticRate, c.SimRate)
	}
	if c.Audio.Enabled && c.Audio.Rate <= 0 {
		add(ErrInvalidRate, "audio.rate=%v", c.Audio.Rate)
	}

	switch haptics.Mode(c.Haptics.Mode) {
	case haptics.ModeContact, haptics.ModeMesh:
	default:
		add(ErrUnknownMode, "%q", c.Haptics.Mode)
	}
	switch haptics.VariantModel(c.Haptics.Variant) {
	case haptics.VariantFluidField, haptics.VariantFluidic:
	default:
		add(ErrUnknownVariant, "%q", c.Haptics.Variant)
	}

	for i, d := range c.Devices {
		switch d.Motion.Kind {
		case MotionStill, MotionLine, MotionCircle:
		default:
			add(ErrUnknownMotion, "devices[%d]: %q", i, d.Motion.Kind)
		}
		vec(fmt.Sprintf("devices[%d].motion.center", i), d.Motion.Center)
		if d.Motion.Kind != MotionStill {
			vec(fmt.Sprintf("devices[%d].motion.amplitude", i), d.Motion.Amplitude)
		}
	}

	s := c.Scene
	vec("scene.target.center", s.Target.Center)
	vec("scene.target.amplitude", s.Target.Amplitude)
	switch s.Proximity {
	case ProximityNone, ProximityTarget:
	case ProximityPlane:
		vec("scene.plane.point", s.Plane.Point)
		vec("scene.plane.normal", s.Plane.Normal)
	case ProximityMesh:
		for i, v := range s.Mesh.Vertices {
			vec(fmt.Sprintf("scene.mesh.vertices[%d]", i), v)
		}
		if len(s.Mesh.Indices)%3 != 0 {
			add(ErrInvalidMesh, "%d indices", len(s.Mesh.Indices))
		}
		for _, idx := range s.Mesh.Indices {
			if idx < 0 || idx >= len(s.Mesh.Vertices) {
				add(ErrInvalidMesh, "index %d", idx)
				break
			}
		}
	default:
		add(ErrUnknownSource, "%q", s.Proximity)
	}
	for i, col := range s.Colliders {
		vec(fmt.Sprintf("scene.colliders[%d].center", i), col.Center)
		if col.Radius <= 0 {
			add(ErrInvalidCollider, "scene.colliders[%d]", i)
		}
	}

	switch c.Audio.Variant {
	case AudioOscillating, AudioGravity, AudioPosition:
	default:
		if c.Audio.Enabled {
			add(ErrUnknownAudio, "%q", c.Audio.Variant)
		}
	}

	return errors.Join(errs...)
}
