package snapshot

import "strings"

// SurfaceTag classifies the material the physics proxy currently touches.
// The set is closed; force.Select maps every value to exactly one model.
type SurfaceTag uint8

const (
	SurfaceNone SurfaceTag = iota
	SurfaceDefault
	SurfaceFluid
	SurfaceFluidVariant

	surfaceTagCount
)

var surfaceTagNames = [surfaceTagCount]string{
	SurfaceNone:         "None",
	SurfaceDefault:      "Default",
	SurfaceFluid:        "Fluid",
	SurfaceFluidVariant: "FluidVariant",
}

func (t SurfaceTag) String() string {
	if t >= surfaceTagCount {
		return "Unknown"
	}
	return surfaceTagNames[t]
}

// Valid reports whether t is one of the declared tags.
func (t SurfaceTag) Valid() bool { return t < surfaceTagCount }

// ParseSurfaceTag maps a collider tag string to a SurfaceTag. A touched
// collider is never None: unrecognised names, including "None", resolve to
// Default.
func ParseSurfaceTag(s string) SurfaceTag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fluid":
		return SurfaceFluid
	case "fluid2", "fluidvariant", "fluid_variant":
		return SurfaceFluidVariant
	default:
		return SurfaceDefault
	}
}
