package haptics

import "github.com/zeusync/haptics/internal/core/force"

// Mode picks the model used for solid surfaces.
type Mode string

const (
	// ModeContact anchors the cursor to the physics proxy with a spring.
	ModeContact Mode = "contact"
	// ModeMesh pushes the cursor out of a mesh surface by its penetration.
	ModeMesh Mode = "mesh"
)

// VariantModel picks the model used for the fluid variant tag.
type VariantModel string

const (
	VariantFluidField VariantModel = "fluid_field"
	// VariantFluidic is the experimental penetration-projected model.
	VariantFluidic VariantModel = "fluidic"
)

// Config holds the dispatcher scalars. Ranges are enforced when the
// configuration is loaded; the tick path trusts them.
type Config struct {
	ForceEnabled    bool
	CollisionGating bool
	Mode            Mode
	MutualHaptics   bool

	Stiffness float64
	Damping   float64

	Viscosity        float64
	VariantViscosity float64
	Variant          VariantModel
	FluidicExponent  float64
	FilterAlpha      float64
	FluidMaxForce    float64

	// MaxForce is the safety clamp applied to every written force.
	MaxForce float64
}

// DefaultConfig returns the settings the reference scenes ship with.
func DefaultConfig() Config {
	return Config{
		ForceEnabled:     true,
		CollisionGating:  true,
		Mode:             ModeContact,
		Stiffness:        400,
		Damping:          1,
		Viscosity:        1,
		VariantViscosity: 5,
		Variant:          VariantFluidField,
		FluidicExponent:  2.5,
		FilterAlpha:      force.DefaultAlpha,
		FluidMaxForce:    force.DefaultFluidMaxForce,
		MaxForce:         10,
	}
}

func (c Config) solidKind() force.ModelKind {
	if c.Mode == ModeMesh {
		return force.ModelMesh
	}
	return force.ModelContact
}

func (c Config) variantKind() force.ModelKind {
	if c.Variant == VariantFluidic {
		return force.ModelFluidic
	}
	return force.ModelFluidVariant
}
