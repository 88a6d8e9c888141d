package scene

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/reactor/common"
)

// GPUSceneSource is the canonical WGSL definition of the scene storage structs.
// Matches Sphere, GPUMaterial and TextureDescriptor exactly.
//
//go:embed assets/scene.wgsl
var GPUSceneSource string

// EmptyTextureOffset marks a texture descriptor slot the material does not sample.
const EmptyTextureOffset = 0xffffffff

// Sphere is a compiled sphere in its GPU layout.
// Size: 32 bytes. The center is a vec4 to sidestep vec3 alignment rules.
type Sphere struct {
	Center      [4]float32 // offset  0
	Radius      float32    // offset 16
	MaterialIdx uint32     // offset 20
	pad         [2]uint32  // offset 24
}

// NewSphere returns a sphere at center with the given radius and material index.
func NewSphere(center common.Vec3, radius float32, materialIdx uint32) Sphere {
	return Sphere{
		Center:      center.Vec4(0),
		Radius:      radius,
		MaterialIdx: materialIdx,
	}
}

// Size returns the size of the Sphere struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (s *Sphere) Size() int {
	return int(unsafe.Sizeof(*s))
}

// Marshal serializes the sphere for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (s *Sphere) Marshal() []byte {
	buf := make([]byte, s.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s.Center[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(s.Radius))
	binary.LittleEndian.PutUint32(buf[20:], s.MaterialIdx)
	binary.LittleEndian.PutUint32(buf[24:], 0)
	binary.LittleEndian.PutUint32(buf[28:], 0)
	return buf
}

// TextureDescriptor locates one texture inside the flattened global texel buffer.
// Size: 12 bytes.
type TextureDescriptor struct {
	Width  uint32 // offset 0
	Height uint32 // offset 4
	Offset uint32 // offset 8: first texel index, EmptyTextureOffset when unused
}

// EmptyTextureDescriptor returns the descriptor for an unused texture slot.
func EmptyTextureDescriptor() TextureDescriptor {
	return TextureDescriptor{Offset: EmptyTextureOffset}
}

func (d TextureDescriptor) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], d.Width)
	binary.LittleEndian.PutUint32(buf[4:], d.Height)
	binary.LittleEndian.PutUint32(buf[8:], d.Offset)
}

// GPUMaterial is the GPU-aligned representation of a material.
// Size: 32 bytes.
type GPUMaterial struct {
	ID    uint32            // offset  0: MaterialKind
	Desc1 TextureDescriptor // offset  4
	Desc2 TextureDescriptor // offset 16
	X     float32           // offset 28: fuzz or refraction index
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.ID)
	g.Desc1.put(buf[4:])
	g.Desc2.put(buf[16:])
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.X))
	return buf
}

// NewGPUMaterial maps a compiled material onto its GPU form using the per-texture descriptors.
//
// Parameters:
//   - m: the compiled material
//   - descs: one descriptor per scene texture, in scene order
//
// Returns:
//   - GPUMaterial: the GPU material
func NewGPUMaterial(m Material, descs []TextureDescriptor) GPUMaterial {
	g := GPUMaterial{
		ID:    uint32(m.Kind),
		Desc1: EmptyTextureDescriptor(),
		Desc2: EmptyTextureDescriptor(),
	}
	switch m.Kind {
	case MaterialLambertian:
		g.Desc1 = descs[m.Albedo]
	case MaterialMetal:
		g.Desc1 = descs[m.Albedo]
		g.X = m.Fuzz
	case MaterialDielectric:
		g.X = m.RefractionIndex
	case MaterialCheckerboard:
		// The shader samples desc1 on odd cells.
		g.Desc1 = descs[m.Odd]
		g.Desc2 = descs[m.Even]
	case MaterialEmissive:
		g.Desc1 = descs[m.Emit]
	}
	return g
}

// GPUSceneBuffers is a scene serialized into the four storage buffers of the scene bind group.
type GPUSceneBuffers struct {
	Spheres   []byte // binding 0: array<Sphere>
	Materials []byte // binding 1: array<Material>
	Textures  []byte // binding 2: array<vec3<f32>> packed as 3 floats per texel
	Lights    []byte // binding 3: array<u32> of emissive sphere indices

	SphereCount   int
	MaterialCount int
	TexelCount    int
	LightCount    int
}

// Pack flattens the scene into GPU buffers. Textures are concatenated into one texel buffer
// and each material refers to its textures by descriptor.
// The scene must pass Validate.
//
// Returns:
//   - GPUSceneBuffers: the serialized buffers
func (s *Scene) Pack() GPUSceneBuffers {
	descs := make([]TextureDescriptor, len(s.Textures))
	texels := make([][3]float32, 0, s.TexelCount())
	for i, t := range s.Textures {
		descs[i] = TextureDescriptor{
			Width:  t.Texture.Width,
			Height: t.Texture.Height,
			Offset: uint32(len(texels)),
		}
		texels = append(texels, t.Texture.Data...)
	}

	out := GPUSceneBuffers{
		SphereCount:   len(s.Spheres),
		MaterialCount: len(s.Materials),
		TexelCount:    len(texels),
	}

	for i := range s.Spheres {
		out.Spheres = append(out.Spheres, s.Spheres[i].Marshal()...)
	}
	for _, m := range s.Materials {
		g := NewGPUMaterial(m, descs)
		out.Materials = append(out.Materials, g.Marshal()...)
	}

	out.Textures = make([]byte, 0, len(texels)*12)
	for _, texel := range texels {
		for _, c := range texel {
			out.Textures = binary.LittleEndian.AppendUint32(out.Textures, math.Float32bits(c))
		}
	}

	lights := s.LightIndices()
	out.LightCount = len(lights)
	out.Lights = make([]byte, 0, len(lights)*4)
	for _, l := range lights {
		out.Lights = binary.LittleEndian.AppendUint32(out.Lights, l)
	}
	return out
}
