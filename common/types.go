// package common contains common types that are used throughout reactor. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// Viewport is the size in pixels of the surface a frame is rendered into.
type Viewport struct {
	// Width is the horizontal pixel count.
	Width uint32 `toml:"width" yaml:"width"`
	// Height is the vertical pixel count.
	Height uint32 `toml:"height" yaml:"height"`
}

// IsZero reports whether either dimension is zero.
func (v Viewport) IsZero() bool {
	return v.Width == 0 || v.Height == 0
}

// Aspect returns width / height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Pixels returns the number of pixels covered by the viewport.
func (v Viewport) Pixels() uint32 {
	return v.Width * v.Height
}

// WorkGroups returns the 2D dispatch size covering the viewport with square groups of the given edge.
//
// Parameters:
//   - groupSize: the workgroup edge length in pixels
//
// Returns:
//   - [3]uint32: the x, y and z workgroup counts
func (v Viewport) WorkGroups(groupSize uint32) [3]uint32 {
	return [3]uint32{
		(v.Width + groupSize - 1) / groupSize,
		(v.Height + groupSize - 1) / groupSize,
		1,
	}
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}
