package graph

// TextureNode is an image file sampled by materials. Scale multiplies every texel.
type TextureNode struct {
	subject
	Path  string
	Scale float32
}

// NewTextureNode returns a texture node for path at scale 1.
func NewTextureNode(path string) *TextureNode {
	return &TextureNode{Path: path, Scale: 1}
}

func (*TextureNode) Name() string { return "Texture" }
func (*TextureNode) Inputs() []NodeFlags { return []NodeFlags{FlagTypicalNumberInput} }
func (*TextureNode) Outputs() []NodeFlags { return []NodeFlags{FlagTexture | FlagString} }
func (*TextureNode) node() {}

func (n *TextureNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	if pin == 0 {
		return g.pullNumber(&n.Scale, source)
	}
	return false
}

func (*TextureNode) disconnectInput(*Graph, NodeID, int) bool { return false }

// SetPath points a texture node at another file.
//
// Returns:
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) SetPath(id NodeID, path string) error {
	return update(g, id, func(n *TextureNode) bool {
		if n.Path == path {
			return false
		}
		n.Path = path
		return true
	})
}

// SetScale sets the intensity multiplier of a texture node.
func (g *Graph) SetScale(id NodeID, scale float32) error {
	return update(g, id, func(n *TextureNode) bool { return setFloat(&n.Scale, scale) })
}
