package graph

import (
	"math"
	"strings"
)

// NodeFlags is a capability bitmask. Each output and input pin of a node carries one; a wire is legal when the
// output's bits overlap the input's.
type NodeFlags uint64

const (
	FlagNumber NodeFlags = 1 << iota
	FlagString
	FlagVector
	FlagColor
	FlagPrimitiveSphere
	FlagMaterialMetal
	FlagMaterialDielectric
	FlagMaterialLambert
	FlagMaterialEmissive
	FlagMaterialCheckerboard
	FlagTexture
	FlagCollection
	FlagCamera
	FlagScene
	FlagRenderTriangle
	FlagRenderXrays
	FlagOutput
)

// Composite flags.
const (
	FlagPrimitives = FlagPrimitiveSphere
	FlagMaterials  = FlagMaterialMetal | FlagMaterialDielectric | FlagMaterialLambert | FlagMaterialEmissive |
		FlagMaterialCheckerboard
	FlagRenders NodeFlags = FlagRenderTriangle | FlagRenderXrays
	FlagAll     NodeFlags = math.MaxUint64

	// FlagTypicalNumberInput is accepted by pins holding a scalar.
	FlagTypicalNumberInput = FlagNumber
	// FlagTypicalVectorInput is accepted by pins holding a vector or a color.
	FlagTypicalVectorInput = FlagVector | FlagColor | FlagNumber
)

var flagNames = []string{
	"NUMBER",
	"STRING",
	"VECTOR",
	"COLOR",
	"PRIMITIVE_SPHERE",
	"MATERIAL_METAL",
	"MATERIAL_DIELECTRIC",
	"MATERIAL_LAMBERT",
	"MATERIAL_EMISSIVE",
	"MATERIAL_CHECKERBOARD",
	"TEXTURE",
	"COLLECTION",
	"CAMERA",
	"SCENE",
	"RENDER_TRIANGLE",
	"RENDER_XRAYS",
	"OUTPUT",
}

// IsCompatible reports whether an output pin with flags out may be wired into an input pin with flags in.
//
// Parameters:
//   - out: the source pin flags
//   - in: the destination pin flags
//
// Returns:
//   - bool: true when the masks share at least one bit
func IsCompatible(out, in NodeFlags) bool {
	return out&in != 0
}

// Has reports whether every bit of other is set in f.
func (f NodeFlags) Has(other NodeFlags) bool {
	return f&other == other
}

// String joins the names of the set bits with "|". FlagAll prints as "ALL" and zero as "NONE".
func (f NodeFlags) String() string {
	switch f {
	case 0:
		return "NONE"
	case FlagAll:
		return "ALL"
	}

	var names []string
	for i, name := range flagNames {
		if f&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	if rest := f &^ (FlagOutput<<1 - 1); rest != 0 {
		names = append(names, "UNKNOWN")
	}
	return strings.Join(names, "|")
}
