// pre_processor.go resolves include directives in WGSL sources. A directive is a whole line of the form
//
//	// #include <name>
//
// and is replaced by the registered source of that name. Registered sources may include others. Every name is
// emitted at most once per Process call, so a shared struct can be pulled in from several places.
package shader

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// ErrUnknownInclude is returned when a directive names a source that was never registered.
var ErrUnknownInclude = errors.New("shader: unknown include")

// includeRegex matches an include directive and captures the name.
var includeRegex = regexp.MustCompile(`^\s*//\s*#include\s+([\w.-]+)\s*$`)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// registry maps include names to their WGSL source.
	registry map[string]string
}

// PreProcessor expands include directives in WGSL source code.
type PreProcessor interface {
	// Process replaces every include directive in source with the registered source it names.
	// Names already emitted during the call expand to nothing.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: ErrUnknownInclude wrapped with the line of the offending directive
	Process(source string) (string, error)

	// Includes returns the registered include names in sorted order.
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor over the given include registry. The map is copied.
//
// Parameters:
//   - includes: WGSL sources keyed by the name used in directives
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(includes map[string]string) PreProcessor {
	registry := make(map[string]string, len(includes))
	maps.Copy(registry, includes)
	return &preProcessor{registry: registry}
}

func (p *preProcessor) Process(source string) (string, error) {
	var out []string
	if err := p.expand("", source, make(map[string]bool), &out); err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []string {
	return slices.Sorted(maps.Keys(p.registry))
}

// expand appends the lines of source to out, recursing into directives. from names the include being
// expanded, empty for the top level source.
func (p *preProcessor) expand(from, source string, seen map[string]bool, out *[]string) error {
	for i, line := range strings.Split(source, "\n") {
		match := includeRegex.FindStringSubmatch(line)
		if match == nil {
			*out = append(*out, line)
			continue
		}

		name := match[1]
		if seen[name] {
			continue
		}
		included, ok := p.registry[name]
		if !ok {
			if from != "" {
				return fmt.Errorf("%w %q (%s line %d)", ErrUnknownInclude, name, from, i+1)
			}
			return fmt.Errorf("%w %q (line %d)", ErrUnknownInclude, name, i+1)
		}
		seen[name] = true
		if err := p.expand(name, included, seen, out); err != nil {
			return err
		}
	}
	return nil
}
