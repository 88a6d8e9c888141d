// Package script builds node graphs from scene scripts written in a small Lisp dialect evaluated by zygomys.
//
// A script calls builtins that add nodes and wires to a fresh graph:
//
//	(def ground (sphere :center [0 -1000 0] :radius 1000 :material (checkerboard :even [0.2 0.3 0.1])))
//	(def cam (camera :position [-10 2 -4] :vfov 30))
//	(output (xrays :camera cam :scene (scene (collection ground))) :target "main")
package script

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Carmen-Shannon/reactor/engine/graph"
	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/Carmen-Shannon/reactor/log"
	zygo "github.com/glycerine/zygomys/zygo"
)

var (
	// ErrBadArgument is returned when a builtin receives an argument of the wrong kind.
	ErrBadArgument = errors.New("script: bad argument")
	// ErrTimeout is returned when a script runs longer than the evaluation timeout.
	ErrTimeout = errors.New("script: evaluation timed out")
)

const defaultTimeout = 5 * time.Second

// Result is the outcome of a successful evaluation.
type Result struct {
	// Graph holds every node and wire the script created.
	Graph *graph.Graph
	// Output is the first output node the script declared, or graph.NoNode.
	Output graph.NodeID
	// Named maps the :name given to a builtin to the node it created.
	Named map[string]graph.NodeID
}

// EvalError is a script failure with the source line it was reported on, 0 when unknown.
type EvalError struct {
	Line    int
	Message string
	// Err is the builtin error behind the failure, if any.
	Err error
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("script: line %d: %s", e.Line, e.Message)
	}
	return "script: " + e.Message
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

type evaluator struct {
	loader   texture.Loader
	logger   log.Logger
	timeout  time.Duration
	debounce time.Duration
	sampling renderer.SamplingParams
	sky      renderer.SkyParams
}

func newEvaluator(options []EvalBuilderOption) *evaluator {
	e := &evaluator{
		logger:   log.New("script"),
		timeout:  defaultTimeout,
		debounce: 100 * time.Millisecond,
		sampling: renderer.DefaultSamplingParams(),
		sky:      renderer.DefaultSkyParams(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

type evalResult struct {
	res *Result
	err error
}

// Eval runs a scene script in a fresh sandbox and returns the graph it built.
//
// Parameters:
//   - src: the script source
//   - options: functional options for the evaluation
//
// Returns:
//   - *Result: the built graph
//   - error: an *EvalError for script failures, ErrTimeout when the script did not finish in time
func Eval(src string, options ...EvalBuilderOption) (*Result, error) {
	return newEvaluator(options).eval(src)
}

// EvalFile reads and evaluates the script at path.
func EvalFile(path string, options ...EvalBuilderOption) (*Result, error) {
	return newEvaluator(options).evalFile(path)
}

func (e *evaluator) evalFile(path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	return e.eval(string(src))
}

func (e *evaluator) eval(src string) (*Result, error) {
	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: &EvalError{Message: fmt.Sprintf("panic during evaluation: %v", r)}}
			}
		}()
		res, err := e.run(src)
		ch <- evalResult{res: res, err: err}
	}()

	if e.timeout <= 0 {
		r := <-ch
		return r.res, r.err
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.res, r.err
	case <-timer.C:
		e.logger.Warningf("script did not finish within %v", e.timeout)
		return nil, ErrTimeout
	}
}

func (e *evaluator) run(src string) (*Result, error) {
	g := graph.NewGraph(graph.WithTextureLoader(e.loader))
	b := &builder{g: g, named: make(map[string]graph.NodeID), sampling: e.sampling, sky: e.sky}

	if strings.TrimSpace(src) == "" {
		return b.result(), nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	b.register(env)

	if err := env.LoadString(preprocess(src)); err != nil {
		return nil, b.fail(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, b.fail(err)
	}

	res := b.result()
	e.logger.Debugf("script built %d nodes, %d wires", g.Len(), len(g.Wires()))
	return res, nil
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// parseError extracts the line number zygomys embeds in its error messages.
func parseError(err error) *EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return &EvalError{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	return &EvalError{Message: strings.TrimSpace(msg)}
}

// kwPrefix marks a string literal produced from a :keyword.
const kwPrefix = "__kw_"

// preprocess rewrites reactor script syntax into plain zygomys: `:name` keywords become "__kw_name" strings,
// `;` comments become `//` comments and kebab-case identifiers become snake_case. String literals are left alone.
func preprocess(src string) string {
	in := []byte(src)
	out := make([]byte, 0, len(in)+len(in)/4)

	for i := 0; i < len(in); {
		c := in[i]
		switch {
		case c == '"' || c == '`':
			end := skipString(in, i)
			out = append(out, in[i:end]...)
			i = end

		case c == ';':
			out = append(out, '/', '/')
			for i < len(in) && in[i] == ';' {
				i++
			}
			for i < len(in) && in[i] != '\n' {
				out = append(out, in[i])
				i++
			}

		case c == ':' && i+1 < len(in) && in[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(in) && isLetter(in[i+1]):
			j := i + 1
			for j < len(in) && isKeywordChar(in[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, in[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(in) && isIdentChar(in[i-1]) && isLetter(in[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipString returns the index just past the string literal opening at start. Backslash escapes apply to
// double-quoted strings only.
func skipString(in []byte, start int) int {
	quote := in[start]
	i := start + 1
	for i < len(in) && in[i] != quote {
		if quote == '"' && in[i] == '\\' {
			i++
		}
		i++
	}
	return min(i+1, len(in))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKeywordChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
