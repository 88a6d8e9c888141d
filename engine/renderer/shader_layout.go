package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/reactor/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/reactor/engine/renderer/shader"
)

// ErrShaderLayout is returned when a shader declares a binding the bind groups cannot satisfy.
var ErrShaderLayout = errors.New("renderer: shader layout mismatch")

// CheckShaderLayout verifies that every buffer binding sh declares exists in groups, indexed by @group, with the
// same kind and at least the declared size.
//
// Parameters:
//   - sh: the parsed shader
//   - groups: the bind group providers in pipeline layout order
//
// Returns:
//   - error: ErrShaderLayout wrapped with the first offending binding
func CheckShaderLayout(sh shader.Shader, groups []bind_group_provider.BindGroupProvider) error {
	for _, b := range sh.Bindings() {
		kind, ok := b.Kind()
		if !ok {
			return fmt.Errorf("%w: %s declares non-buffer binding %s", ErrShaderLayout, sh.Label(), b.Name)
		}
		if b.Group >= len(groups) {
			return fmt.Errorf("%w: %s binds %s to missing group %d", ErrShaderLayout, sh.Label(), b.Name, b.Group)
		}
		entry, ok := groups[b.Group].Entry(b.Binding)
		switch {
		case !ok:
			return fmt.Errorf("%w: %s: %s has no entry %d", ErrShaderLayout, sh.Label(), groups[b.Group].Label(), b.Binding)
		case entry.Kind != kind:
			return fmt.Errorf("%w: %s: %s is %s, %s/%d is %s", ErrShaderLayout, sh.Label(), b.Name, kind,
				groups[b.Group].Label(), b.Binding, entry.Kind)
		case entry.Size < b.MinSize:
			return fmt.Errorf("%w: %s: %s needs %d bytes, %s/%d has %d", ErrShaderLayout, sh.Label(), b.Name, b.MinSize,
				groups[b.Group].Label(), b.Binding, entry.Size)
		}
	}
	return nil
}

// checkShaders parses both renderer shaders and checks them against the renderer's bind groups. The present
// pipeline only sees the image and parameter groups.
func checkShaders(groups []bind_group_provider.BindGroupProvider) error {
	compute, err := ComputeShader()
	if err != nil {
		return err
	}
	if size := compute.WorkGroupSize(); size != [3]uint32{WorkGroupSize, WorkGroupSize, 1} {
		return fmt.Errorf("%w: %s workgroup size is %v", ErrShaderLayout, compute.Label(), size)
	}
	if err := CheckShaderLayout(compute, groups); err != nil {
		return err
	}

	present, err := PresentShader()
	if err != nil {
		return err
	}
	return CheckShaderLayout(present, groups[:2])
}
