package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/chewxy/math32"
)

// GPUCameraSource is the canonical WGSL definition of the Camera uniform struct.
// Matches GPUCamera layout exactly (96 bytes).
//
//go:embed assets/camera.wgsl
var GPUCameraSource string

// GPUCamera is the GPU-aligned thin-lens camera uniform consumed by the ray generator.
// Size: 96 bytes, every vec3 padded to 16.
type GPUCamera struct {
	Eye             common.Vec3 // offset  0
	_pad1           float32     // offset 12
	Horizontal      common.Vec3 // offset 16: full image-plane width vector
	_pad2           float32     // offset 28
	Vertical        common.Vec3 // offset 32: full image-plane height vector
	_pad3           float32     // offset 44
	U               common.Vec3 // offset 48: lens right axis
	_pad4           float32     // offset 60
	V               common.Vec3 // offset 64: lens up axis
	LensRadius      float32     // offset 76
	LowerLeftCorner common.Vec3 // offset 80
	_pad5           float32     // offset 92
}

// NewGPUCamera projects a camera onto a viewport.
//
// Parameters:
//   - c: the world-space camera
//   - viewport: the render target size, used for the aspect ratio
//
// Returns:
//   - GPUCamera: the uniform data
func NewGPUCamera(c Camera, viewport common.Viewport) GPUCamera {
	lensRadius := 0.5 * c.Aperture
	halfHeight := c.FocusDistance * math32.Tan(0.5*c.VFov)
	halfWidth := viewport.Aspect() * halfHeight

	w := c.EyeDir.Normalize()
	v := c.Up.Normalize()
	u := w.Cross(v)

	lowerLeft := c.EyePos.
		Add(w.Scale(c.FocusDistance)).
		Sub(u.Scale(halfWidth)).
		Sub(v.Scale(halfHeight))

	return GPUCamera{
		Eye:             c.EyePos,
		Horizontal:      u.Scale(2 * halfWidth),
		Vertical:        v.Scale(2 * halfHeight),
		U:               u,
		V:               v,
		LensRadius:      lensRadius,
		LowerLeftCorner: lowerLeft,
	}
}

// Size returns the size of the GPUCamera struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUCamera) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCamera struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCamera) Marshal() []byte {
	buf := make([]byte, g.Size())
	putVec := func(off int, v common.Vec3, w float32) {
		for i := range 3 {
			binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(v[i]))
		}
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(w))
	}
	putVec(0, g.Eye, 0)
	putVec(16, g.Horizontal, 0)
	putVec(32, g.Vertical, 0)
	putVec(48, g.U, 0)
	putVec(64, g.V, g.LensRadius)
	putVec(80, g.LowerLeftCorner, 0)
	return buf
}
