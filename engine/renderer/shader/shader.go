package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/reactor/engine/renderer/bind_group_provider"
)

// ErrNoEntryPoint is returned for a source without any @compute, @vertex or @fragment function.
var ErrNoEntryPoint = errors.New("shader: no entry point")

// Stage identifies the pipeline stage of an entry point.
type Stage int

const (
	// StageCompute is a @compute entry point.
	StageCompute Stage = iota

	// StageVertex is a @vertex entry point.
	StageVertex

	// StageFragment is a @fragment entry point.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageCompute:
		return "compute"
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return "unknown"
}

// Binding is one @group(N) @binding(M) resource declaration.
type Binding struct {
	Group   int
	Binding int
	// AddressSpace is the var<> qualifier, e.g. "uniform" or "storage, read". Empty for handle types.
	AddressSpace string
	Name         string
	Type         string
	// MinSize is the byte size of Type, or the element stride for a runtime-sized array.
	// Zero when the type could not be resolved.
	MinSize uint64
}

// Kind maps the address space onto the buffer binding kinds of a bind group provider.
//
// Returns:
//   - bind_group_provider.BindingKind: the buffer kind
//   - bool: false for handle types such as textures and samplers
func (b Binding) Kind() (bind_group_provider.BindingKind, bool) {
	space := strings.ReplaceAll(b.AddressSpace, " ", "")
	switch {
	case space == "uniform":
		return bind_group_provider.BindingUniform, true
	case space == "storage,read_write":
		return bind_group_provider.BindingStorage, true
	case space == "storage" || space == "storage,read":
		return bind_group_provider.BindingReadOnlyStorage, true
	}
	return 0, false
}

// shader is the implementation of the Shader interface.
type shader struct {
	label         string
	source        string
	entryPoints   map[Stage]string
	workGroupSize [3]uint32
	structs       map[string]wgslTypeLayout
	bindings      []Binding
}

// Shader is a pre-processed WGSL source together with the layout facts parsed from it. Pipelines take their
// entry points from it and the renderer checks its bindings against the bind groups it allocates.
type Shader interface {
	// Label returns the debug label, usually the asset file name.
	Label() string

	// Source returns the WGSL source with includes expanded.
	Source() string

	// EntryPoint returns the first entry point declared for the given stage.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - string: the function name
	//   - bool: false if the stage has no entry point
	EntryPoint(stage Stage) (string, bool)

	// WorkGroupSize returns the @workgroup_size of the compute entry point. Omitted dimensions are 1.
	WorkGroupSize() [3]uint32

	// StructSize returns the host-shareable byte size of a struct declared in the source.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - uint64: the size in bytes, rounded up to the struct alignment
	//   - bool: false if the struct is unknown or one of its fields could not be resolved
	StructSize(name string) (uint64, bool)

	// Bindings returns every resource declaration ordered by group then binding.
	Bindings() []Binding

	// Binding returns the declaration at the given slot.
	Binding(group, binding int) (Binding, bool)
}

var _ Shader = &shader{}

// NewShader expands source with pp, when non-nil, and parses the result.
//
// Parameters:
//   - label: a debug label for the shader
//   - source: the raw WGSL source
//   - pp: the pre-processor resolving include directives, or nil
//
// Returns:
//   - Shader: the parsed shader
//   - error: a pre-processing error or ErrNoEntryPoint
func NewShader(label, source string, pp PreProcessor) (Shader, error) {
	if pp != nil {
		var err error
		if source, err = pp.Process(source); err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
	}

	cleaned := stripComments(source)
	entryPoints := parseEntryPoints(cleaned)
	if len(entryPoints) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoEntryPoint, label)
	}
	structs := computeStructSizes(parseStructBlocks(cleaned))

	return &shader{
		label:         label,
		source:        source,
		entryPoints:   entryPoints,
		workGroupSize: parseWorkgroupSize(cleaned),
		structs:       structs,
		bindings:      parseBindings(cleaned, structs),
	}, nil
}

// LoadShader reads a WGSL file and parses it with NewShader, labeled with the file name.
func LoadShader(path string, pp PreProcessor) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewShader(filepath.Base(path), string(data), pp)
}

func (s *shader) Label() string {
	return s.label
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage Stage) (string, bool) {
	name, ok := s.entryPoints[stage]
	return name, ok
}

func (s *shader) WorkGroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) StructSize(name string) (uint64, bool) {
	layout, ok := s.structs[name]
	return layout.size, ok
}

func (s *shader) Bindings() []Binding {
	out := make([]Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

func (s *shader) Binding(group, binding int) (Binding, bool) {
	for _, b := range s.bindings {
		if b.Group == group && b.Binding == binding {
			return b, true
		}
	}
	return Binding{}, false
}
