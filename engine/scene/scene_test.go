package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

func f32(buf []byte, off int) float32 {
	return math.Float32frombits(u32(buf, off))
}

func TestStub(t *testing.T) {
	s := Stub()
	require.NoError(t, s.Validate())
	assert.Len(t, s.Textures, 1)
	assert.Equal(t, []Material{Lambertian(0), Emissive(0)}, s.Materials)
	require.Len(t, s.Spheres, 2)
	assert.Equal(t, uint32(1), s.Spheres[1].MaterialIdx)
	assert.Equal(t, float32(0), s.Spheres[0].Radius)
	assert.Equal(t, []uint32{1}, s.LightIndices())
}

func TestGPUSizes(t *testing.T) {
	var sp Sphere
	var m GPUMaterial
	assert.Equal(t, 32, sp.Size())
	assert.Equal(t, 32, m.Size())
	assert.Contains(t, GPUSceneSource, "struct Material")
}

func TestPackFlattensTextures(t *testing.T) {
	b := NewBuilder()
	red := b.AddTexture(NewTextureData(texture.NewFromColor(common.Vec3{1, 0, 0})))
	big := b.AddTexture(NewFileTextureData(texture.Texture{Width: 2, Height: 1, Data: [][3]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}}, "earth.png", 1))
	b.AddMaterial(Metal(big, 0.4))
	b.AddMaterial(Dielectric(1.5))
	b.AddMaterial(Checkerboard(red, big))
	b.AddMaterial(Emissive(red))
	b.AddSphere(NewSphere(common.Vec3{1, 2, 3}, 0.5, 0))
	b.AddSphere(NewSphere(common.Vec3{}, 1, 3))
	s := b.Build()
	require.NoError(t, s.Validate())

	out := s.Pack()
	assert.Equal(t, 2, out.SphereCount)
	assert.Equal(t, 4, out.MaterialCount)
	assert.Equal(t, 3, out.TexelCount)
	assert.Len(t, out.Textures, 3*12)
	assert.Equal(t, []byte{1, 0, 0, 0}, out.Lights)

	// sphere 0
	assert.Equal(t, float32(1), f32(out.Spheres, 0))
	assert.Equal(t, float32(3), f32(out.Spheres, 8))
	assert.Equal(t, float32(0.5), f32(out.Spheres, 16))
	assert.Equal(t, uint32(3), u32(out.Spheres, 32+20))

	// metal: id 1, desc1 = big texture at texel offset 1
	metal := out.Materials[0:32]
	assert.Equal(t, uint32(MaterialMetal), u32(metal, 0))
	assert.Equal(t, uint32(2), u32(metal, 4))
	assert.Equal(t, uint32(1), u32(metal, 12))
	assert.Equal(t, uint32(EmptyTextureOffset), u32(metal, 24))
	assert.InDelta(t, 0.4, f32(metal, 28), 1e-6)

	// dielectric has no textures
	diel := out.Materials[32:64]
	assert.Equal(t, uint32(EmptyTextureOffset), u32(diel, 12))
	assert.Equal(t, uint32(EmptyTextureOffset), u32(diel, 24))
	assert.Equal(t, float32(1.5), f32(diel, 28))

	// checkerboard stores odd first
	check := out.Materials[64:96]
	assert.Equal(t, uint32(1), u32(check, 12))
	assert.Equal(t, uint32(0), u32(check, 24))
}

func TestValidateDanglingIndices(t *testing.T) {
	s := &Scene{Materials: []Material{Lambertian(2)}}
	assert.ErrorIs(t, s.Validate(), ErrIndexOutOfRange)

	s = &Scene{Spheres: []Sphere{NewSphere(common.Vec3{}, 1, 0)}}
	assert.ErrorIs(t, s.Validate(), ErrIndexOutOfRange)
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBuilder()
	b.AddTexture(NewFileTextureData(texture.NewFromColor(common.Vec3{1, 1, 1}), "sun.jpg", 50))
	b.AddMaterial(Emissive(0))
	b.AddSphere(NewSphere(common.Vec3{0, 1, 0}, 2, 0))
	s := b.Build()

	c := s.Clone()
	assert.Equal(t, s.Materials, c.Materials)
	assert.Equal(t, s.Spheres, c.Spheres)
	require.NotNil(t, c.Textures[0].Key)
	assert.Equal(t, "sun.jpg", *c.Textures[0].Key)

	c.Spheres[0].Radius = 9
	*c.Textures[0].Key = "moon.jpg"
	assert.Equal(t, float32(2), s.Spheres[0].Radius)
	assert.Equal(t, "sun.jpg", *s.Textures[0].Key)
}

func TestTakeTexture(t *testing.T) {
	s := &Scene{Textures: []TextureData{
		NewTextureData(texture.NewFromColor(common.Vec3{})),
		NewFileTextureData(texture.NewFromColor(common.Vec3{}), "a.png", 1),
		NewFileTextureData(texture.NewFromColor(common.Vec3{}), "a.png", 2),
	}}

	_, ok := s.TakeTexture("a.png", 3)
	assert.False(t, ok)

	got, ok := s.TakeTexture("a.png", 2)
	require.True(t, ok)
	assert.Equal(t, float32(2), got.Scale)
	assert.Len(t, s.Textures, 2)

	var nilScene *Scene
	_, ok = nilScene.TakeTexture("a.png", 1)
	assert.False(t, ok)
}
