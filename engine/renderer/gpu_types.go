package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/Carmen-Shannon/reactor/engine/renderer/shader"
	"github.com/Carmen-Shannon/reactor/engine/scene"
)

// WorkGroupSize is the edge length of the square compute workgroup declared in the ray tracing shader.
const WorkGroupSize = 8

// ImageTexelSize is the byte size of one accumulated pixel (vec4<f32>).
const ImageTexelSize = 16

//go:embed assets/raytrace.wgsl
var raytraceSource string

//go:embed assets/present.wgsl
var presentSource string

//go:embed assets/frame.wgsl
var frameSource string

// shaderIncludes are the shared WGSL definitions the renderer's shaders include by name.
var shaderIncludes = map[string]string{
	"frame":  frameSource,
	"camera": camera.GPUCameraSource,
	"scene":  scene.GPUSceneSource,
}

// ComputeShader returns the ray tracing compute shader with its includes expanded.
func ComputeShader() (shader.Shader, error) {
	return shader.NewShader("raytrace.wgsl", raytraceSource, shader.NewPreProcessor(shaderIncludes))
}

// PresentShader returns the shader that blits the accumulated image to the surface.
func PresentShader() (shader.Shader, error) {
	return shader.NewShader("present.wgsl", presentSource, shader.NewPreProcessor(shaderIncludes))
}

// GPUSamplingParams is the per-frame sampling uniform.
// Size: 16 bytes.
type GPUSamplingParams struct {
	NumSamplesPerPixel         uint32 // offset  0: samples traced this frame
	NumBounces                 uint32 // offset  4
	AccumulatedSamplesPerPixel uint32 // offset  8: total after this frame
	ClearAccumulatedSamples    uint32 // offset 12: 1 to discard previous samples
}

// Size returns the size of the GPUSamplingParams struct in bytes.
func (g *GPUSamplingParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSamplingParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSamplingParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.NumSamplesPerPixel)
	binary.LittleEndian.PutUint32(buf[4:], g.NumBounces)
	binary.LittleEndian.PutUint32(buf[8:], g.AccumulatedSamplesPerPixel)
	binary.LittleEndian.PutUint32(buf[12:], g.ClearAccumulatedSamples)
	return buf
}

// GPUSky is the sky uniform.
// Size: 32 bytes.
type GPUSky struct {
	SunDirection [4]float32 // offset  0
	Albedo       [3]float32 // offset 16: ground reflectance
	Turbidity    float32    // offset 28
}

// NewGPUSky converts validated sky parameters to their uniform form.
func NewGPUSky(s SkyParams) GPUSky {
	return GPUSky{
		SunDirection: s.SunDirection(),
		Albedo:       s.Albedo,
		Turbidity:    s.Turbidity,
	}
}

// Size returns the size of the GPUSky struct in bytes.
func (g *GPUSky) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSky struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSky) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.SunDirection[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Albedo[i]))
	}
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.Turbidity))
	return buf
}

// GPUFrameData is the per-frame image uniform.
// Size: 16 bytes.
type GPUFrameData struct {
	Width       uint32 // offset  0
	Height      uint32 // offset  4
	FrameNumber uint32 // offset  8: seeds the per-pixel random generator
	_pad        uint32 // offset 12
}

// Size returns the size of the GPUFrameData struct in bytes.
func (g *GPUFrameData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameData) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.Width)
	binary.LittleEndian.PutUint32(buf[4:], g.Height)
	binary.LittleEndian.PutUint32(buf[8:], g.FrameNumber)
	return buf
}

// GPUSceneInfo carries the element counts of the scene storage buffers, which are padded and cannot be sized with
// arrayLength.
// Size: 16 bytes.
type GPUSceneInfo struct {
	SphereCount   uint32
	MaterialCount uint32
	LightCount    uint32
	TexelCount    uint32
}

// NewGPUSceneInfo reads the counts from packed scene buffers.
func NewGPUSceneInfo(b scene.GPUSceneBuffers) GPUSceneInfo {
	return GPUSceneInfo{
		SphereCount:   uint32(b.SphereCount),
		MaterialCount: uint32(b.MaterialCount),
		LightCount:    uint32(b.LightCount),
		TexelCount:    uint32(b.TexelCount),
	}
}

// Size returns the size of the GPUSceneInfo struct in bytes.
func (g *GPUSceneInfo) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSceneInfo struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSceneInfo) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.SphereCount)
	binary.LittleEndian.PutUint32(buf[4:], g.MaterialCount)
	binary.LittleEndian.PutUint32(buf[8:], g.LightCount)
	binary.LittleEndian.PutUint32(buf[12:], g.TexelCount)
	return buf
}
