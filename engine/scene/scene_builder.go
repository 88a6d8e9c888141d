package scene

// Builder accumulates a scene in dependency order. Indices returned by the Add methods are stable for the
// lifetime of the builder.
type Builder struct {
	scene *Scene
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{scene: &Scene{}}
}

// AddTexture appends a texture and returns its index.
func (b *Builder) AddTexture(t TextureData) int {
	b.scene.Textures = append(b.scene.Textures, t)
	return len(b.scene.Textures) - 1
}

// FindTexture returns the index of the first texture loaded from path at scale.
func (b *Builder) FindTexture(path string, scale float32) (int, bool) {
	return b.scene.findTexture(path, scale)
}

// AddMaterial appends a material and returns its index.
func (b *Builder) AddMaterial(m Material) int {
	b.scene.Materials = append(b.scene.Materials, m)
	return len(b.scene.Materials) - 1
}

// AddSphere appends a sphere and returns its index.
func (b *Builder) AddSphere(s Sphere) int {
	b.scene.Spheres = append(b.scene.Spheres, s)
	return len(b.scene.Spheres) - 1
}

// Build returns the accumulated scene. The builder must not be used afterwards.
func (b *Builder) Build() *Scene {
	s := b.scene
	b.scene = nil
	return s
}

func (s *Scene) findTexture(path string, scale float32) (int, bool) {
	for i, t := range s.Textures {
		if t.Matches(path, scale) {
			return i, true
		}
	}
	return -1, false
}

// TakeTexture removes and returns the first texture loaded from path at scale.
// Later texture indices shift down by one, so TakeTexture is only meant for scenes being dismantled.
//
// Parameters:
//   - path: the texture file path
//   - scale: the texture scale
//
// Returns:
//   - TextureData: the removed entry
//   - bool: false if no entry matched
func (s *Scene) TakeTexture(path string, scale float32) (TextureData, bool) {
	if s == nil {
		return TextureData{}, false
	}
	i, ok := s.findTexture(path, scale)
	if !ok {
		return TextureData{}, false
	}
	t := s.Textures[i]
	s.Textures = append(s.Textures[:i], s.Textures[i+1:]...)
	return t, true
}
