// Package scene holds the compiled, render-ready form of a node graph: flat lists of spheres, materials and textures
// that reference each other by index, plus their GPU packing.
package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/jinzhu/copier"
)

// ErrIndexOutOfRange is returned by Validate when a material or sphere references a missing entry.
var ErrIndexOutOfRange = errors.New("scene: index out of range")

// MaterialKind identifies a material model. The values are the material ids the shader switches on.
type MaterialKind uint32

const (
	MaterialLambertian MaterialKind = iota
	MaterialMetal
	MaterialDielectric
	MaterialCheckerboard
	MaterialEmissive
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialLambertian:
		return "lambertian"
	case MaterialMetal:
		return "metal"
	case MaterialDielectric:
		return "dielectric"
	case MaterialCheckerboard:
		return "checkerboard"
	case MaterialEmissive:
		return "emissive"
	}
	return fmt.Sprintf("material(%d)", uint32(k))
}

// Material is a compiled material. Which fields are meaningful depends on Kind:
// Lambertian and Metal use Albedo, Emissive uses Emit, Checkerboard uses Even and Odd,
// Metal uses Fuzz and Dielectric uses RefractionIndex. Texture fields are indices into Scene.Textures.
type Material struct {
	Kind            MaterialKind
	Albedo          int
	Emit            int
	Even            int
	Odd             int
	Fuzz            float32
	RefractionIndex float32
}

// Lambertian returns a diffuse material sampling the given texture.
func Lambertian(albedo int) Material {
	return Material{Kind: MaterialLambertian, Albedo: albedo}
}

// Metal returns a reflective material sampling the given texture with the given roughness.
func Metal(albedo int, fuzz float32) Material {
	return Material{Kind: MaterialMetal, Albedo: albedo, Fuzz: fuzz}
}

// Dielectric returns a refractive material.
func Dielectric(refractionIndex float32) Material {
	return Material{Kind: MaterialDielectric, RefractionIndex: refractionIndex}
}

// Checkerboard returns a material alternating between two textures.
func Checkerboard(even, odd int) Material {
	return Material{Kind: MaterialCheckerboard, Even: even, Odd: odd}
}

// Emissive returns a light emitting material sampling the given texture.
func Emissive(emit int) Material {
	return Material{Kind: MaterialEmissive, Emit: emit}
}

// TextureIDs returns the texture indices the material references.
func (m Material) TextureIDs() []int {
	switch m.Kind {
	case MaterialLambertian, MaterialMetal:
		return []int{m.Albedo}
	case MaterialEmissive:
		return []int{m.Emit}
	case MaterialCheckerboard:
		return []int{m.Even, m.Odd}
	}
	return nil
}

// TextureData is a compiled texture. Key and Scale identify textures requested from a file so a recompile can reuse
// them, including the placeholder of a failed load; textures synthesized from a constant color have a nil Key.
type TextureData struct {
	Texture texture.Texture
	Key     *string
	Scale   float32
}

// NewTextureData wraps a synthesized texture.
func NewTextureData(tex texture.Texture) TextureData {
	return TextureData{Texture: tex, Scale: 1}
}

// NewFileTextureData wraps a texture loaded from path at the given scale.
func NewFileTextureData(tex texture.Texture, path string, scale float32) TextureData {
	key := path
	return TextureData{Texture: tex, Key: &key, Scale: scale}
}

// Matches reports whether the entry was loaded from path at scale.
func (t TextureData) Matches(path string, scale float32) bool {
	return t.Key != nil && *t.Key == path && t.Scale == scale
}

// Scene is a compiled scene.
type Scene struct {
	Spheres   []Sphere
	Materials []Material
	Textures  []TextureData
}

// Stub returns the placeholder scene uploaded when a renderer has no scene connected: one black texture,
// a lambertian and an emissive material over it, and two zero-radius spheres. The emissive sphere keeps
// the light buffer non-empty.
//
// Returns:
//   - *Scene: the placeholder scene
func Stub() *Scene {
	return &Scene{
		Textures: []TextureData{NewTextureData(texture.NewFromColor(common.Vec3{}))},
		Materials: []Material{
			Lambertian(0),
			Emissive(0),
		},
		Spheres: []Sphere{
			NewSphere(common.Vec3{}, 0, 0),
			NewSphere(common.Vec3{}, 0, 1),
		},
	}
}

// Clone returns a deep copy of the scene that shares no slices or keys with s.
//
// Returns:
//   - *Scene: the copy
func (s *Scene) Clone() *Scene {
	out := &Scene{}
	if s == nil {
		return out
	}
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("scene: clone failed: %v", err))
	}
	return out
}

// IsEmpty reports whether the scene has no spheres.
func (s *Scene) IsEmpty() bool {
	return s == nil || len(s.Spheres) == 0
}

// LightIndices returns the indices of every sphere whose material is emissive.
//
// Returns:
//   - []uint32: sphere indices in ascending order
func (s *Scene) LightIndices() []uint32 {
	lights := make([]uint32, 0)
	for i, sp := range s.Spheres {
		idx := int(sp.MaterialIdx)
		if idx < len(s.Materials) && s.Materials[idx].Kind == MaterialEmissive {
			lights = append(lights, uint32(i))
		}
	}
	return lights
}

// TexelCount returns the total number of texels across all textures.
func (s *Scene) TexelCount() int {
	n := 0
	for _, t := range s.Textures {
		n += t.Texture.Len()
	}
	return n
}

// Validate checks that every index in the scene resolves.
//
// Returns:
//   - error: an error wrapping ErrIndexOutOfRange for the first dangling reference, nil otherwise
func (s *Scene) Validate() error {
	for i, m := range s.Materials {
		for _, id := range m.TextureIDs() {
			if id < 0 || id >= len(s.Textures) {
				return fmt.Errorf("%w: material %d (%s) references texture %d of %d", ErrIndexOutOfRange, i, m.Kind, id, len(s.Textures))
			}
		}
	}
	for i, sp := range s.Spheres {
		if int(sp.MaterialIdx) >= len(s.Materials) {
			return fmt.Errorf("%w: sphere %d references material %d of %d", ErrIndexOutOfRange, i, sp.MaterialIdx, len(s.Materials))
		}
	}
	for i, t := range s.Textures {
		if uint32(t.Texture.Len()) != t.Texture.Width*t.Texture.Height {
			return fmt.Errorf("scene: texture %d has %d texels, want %dx%d", i, t.Texture.Len(), t.Texture.Width, t.Texture.Height)
		}
	}
	return nil
}
