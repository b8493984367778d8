package force

import "github.com/zeusync/haptics/internal/core/snapshot"

// ModelKind names the force model evaluated on a tick.
type ModelKind uint8

const (
	ModelNone ModelKind = iota
	ModelContact
	ModelMesh
	ModelFluid
	ModelFluidVariant
	ModelFluidic

	modelKindCount
)

var modelKindNames = [modelKindCount]string{
	ModelNone:         "none",
	ModelContact:      "contact",
	ModelMesh:         "mesh",
	ModelFluid:        "fluid",
	ModelFluidVariant: "fluid_variant",
	ModelFluidic:      "fluidic",
}

func (k ModelKind) String() string {
	if k >= modelKindCount {
		return "unknown"
	}
	return modelKindNames[k]
}

// Count is the number of model kinds, for sizing per-kind counters.
const Count = int(modelKindCount)

// Select maps a surface tag to the model that renders it. contact is the
// model used for solid surfaces (ModelContact or ModelMesh) and variant the
// one used for the fluid variant (ModelFluidVariant or ModelFluidic). A None
// tag only reaches Select when collision gating is off, in which case the
// solid-surface model keeps running. Tags outside the enum render nothing.
func Select(tag snapshot.SurfaceTag, contact, variant ModelKind) ModelKind {
	switch tag {
	case snapshot.SurfaceNone, snapshot.SurfaceDefault:
		return contact
	case snapshot.SurfaceFluid:
		return ModelFluid
	case snapshot.SurfaceFluidVariant:
		return variant
	default:
		return ModelNone
	}
}
