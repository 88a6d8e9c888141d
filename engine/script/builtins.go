package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/graph"
	"github.com/Carmen-Shannon/reactor/engine/renderer"
	zygo "github.com/glycerine/zygomys/zygo"
)

// sexpNode carries a graph node between builtins.
type sexpNode struct {
	id   graph.NodeID
	kind string
}

func (n *sexpNode) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", n.kind, n.id)
}

func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

type valueKind int

const (
	kindNumber valueKind = iota
	kindVector
	kindString
	// kindRef accepts only node references.
	kindRef
)

// property is one named setting of a node kind. A node argument is wired into pin; a literal is stored by
// assign. Properties with a negative pin cannot be wired, properties with a nil assign cannot take literals.
type property struct {
	pin    int
	kind   valueKind
	assign func(n graph.Node, v literal) bool
}

type literal struct {
	num float32
	vec common.Vec3
	str string
}

func number(pin int, field func(graph.Node) *float32) property {
	return property{pin: pin, kind: kindNumber, assign: func(n graph.Node, v literal) bool {
		return assignFloat(field(n), v.num)
	}}
}

func vector(pin int, field func(graph.Node) *common.Vec3) property {
	return property{pin: pin, kind: kindVector, assign: func(n graph.Node, v literal) bool {
		return assignVec(field(n), v.vec)
	}}
}

func count(pin int, field func(graph.Node) *uint32) property {
	return property{pin: pin, kind: kindNumber, assign: func(n graph.Node, v literal) bool {
		c := uint32(max(v.num, 0))
		dst := field(n)
		if *dst == c {
			return false
		}
		*dst = c
		return true
	}}
}

func reference(pin int) property {
	return property{pin: pin, kind: kindRef}
}

func assignFloat(dst *float32, v float32) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func assignVec(dst *common.Vec3, v common.Vec3) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

// properties lists the settable properties of each node kind, keyed by the node's Name.
var properties = map[string]map[string]property{
	"Number": {
		"value": number(-1, func(n graph.Node) *float32 { return &n.(*graph.NumberNode).Value }),
	},
	"Vector": {
		"value": vector(-1, func(n graph.Node) *common.Vec3 { return &n.(*graph.VectorNode).Value }),
	},
	"Color": {
		"value": vector(-1, func(n graph.Node) *common.Vec3 { return &n.(*graph.ColorNode).Value }),
	},
	"Texture": {
		"path": {pin: -1, kind: kindString, assign: func(n graph.Node, v literal) bool {
			t := n.(*graph.TextureNode)
			if t.Path == v.str {
				return false
			}
			t.Path = v.str
			return true
		}},
		"scale": number(0, func(n graph.Node) *float32 { return &n.(*graph.TextureNode).Scale }),
	},
	"Lambertian": {
		"albedo":  vector(0, func(n graph.Node) *common.Vec3 { return &n.(*graph.LambertianNode).Albedo }),
		"texture": reference(1),
	},
	"Metal": {
		"albedo":  vector(0, func(n graph.Node) *common.Vec3 { return &n.(*graph.MetalNode).Albedo }),
		"fuzz":    number(1, func(n graph.Node) *float32 { return &n.(*graph.MetalNode).Fuzz }),
		"texture": reference(2),
	},
	"Dielectric": {
		"ior": number(0, func(n graph.Node) *float32 { return &n.(*graph.DielectricNode).RefractionIndex }),
	},
	"Emissive": {
		"emit":    vector(0, func(n graph.Node) *common.Vec3 { return &n.(*graph.EmissiveNode).Emit }),
		"texture": reference(1),
	},
	"Checkerboard": {
		"even": vector(0, func(n graph.Node) *common.Vec3 { return &n.(*graph.CheckerboardNode).Even }),
		"odd":  vector(1, func(n graph.Node) *common.Vec3 { return &n.(*graph.CheckerboardNode).Odd }),
	},
	"Sphere": {
		"center":   vector(0, func(n graph.Node) *common.Vec3 { return &n.(*graph.SphereNode).Center }),
		"radius":   number(1, func(n graph.Node) *float32 { return &n.(*graph.SphereNode).Radius }),
		"material": reference(2),
	},
	"Scene": {
		"data": reference(0),
	},
	"Camera": {
		"position": vector(0, func(n graph.Node) *common.Vec3 { return &n.(*graph.CameraNode).Position }),
		"yaw":      number(1, func(n graph.Node) *float32 { return &n.(*graph.CameraNode).Yaw }),
		"pitch":    number(2, func(n graph.Node) *float32 { return &n.(*graph.CameraNode).Pitch }),
		"vfov":     number(3, func(n graph.Node) *float32 { return &n.(*graph.CameraNode).VFov }),
		"aperture": number(4, func(n graph.Node) *float32 { return &n.(*graph.CameraNode).Aperture }),
		"focus":    number(5, func(n graph.Node) *float32 { return &n.(*graph.CameraNode).Focus }),
	},
	"Xrays Render": {
		"max_samples": count(0, func(n graph.Node) *uint32 {
			return &n.(*graph.XraysRenderNode).Sampling.MaxSamplesPerPixel
		}),
		"samples": count(1, func(n graph.Node) *uint32 {
			return &n.(*graph.XraysRenderNode).Sampling.NumSamplesPerPixel
		}),
		"bounces": count(2, func(n graph.Node) *uint32 {
			return &n.(*graph.XraysRenderNode).Sampling.NumBounces
		}),
		"camera": reference(3),
		"scene":  reference(4),
		"azimuth": number(-1, func(n graph.Node) *float32 {
			return &n.(*graph.XraysRenderNode).Sky.AzimuthDegrees
		}),
		"zenith": number(-1, func(n graph.Node) *float32 {
			return &n.(*graph.XraysRenderNode).Sky.ZenithDegrees
		}),
		"turbidity": number(-1, func(n graph.Node) *float32 {
			return &n.(*graph.XraysRenderNode).Sky.Turbidity
		}),
		"ground": vector(-1, func(n graph.Node) *common.Vec3 {
			return (*common.Vec3)(&n.(*graph.XraysRenderNode).Sky.Albedo)
		}),
	},
	"Triangle Render": {
		"angle": number(0, func(n graph.Node) *float32 { return &n.(*graph.TriangleRenderNode).Angle }),
	},
}

// builder is the graph a running script writes into.
type builder struct {
	g        *graph.Graph
	output   graph.NodeID
	named    map[string]graph.NodeID
	sampling renderer.SamplingParams
	sky      renderer.SkyParams
	// err is the first builtin failure. zygomys reports it as text, so it is kept for errors.Is.
	err error
}

func (b *builder) result() *Result {
	return &Result{Graph: b.g, Output: b.output, Named: b.named}
}

func (b *builder) fail(err error) error {
	e := parseError(err)
	if b.err != nil {
		e.Err = b.err
	}
	return e
}

type builtin func(args []zygo.Sexp) (zygo.Sexp, error)

func (b *builder) add(env *zygo.Zlisp, name string, fn builtin) {
	env.AddFunction(name, func(_ *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		res, err := fn(args)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
			if b.err == nil {
				b.err = err
			}
			return zygo.SexpNull, err
		}
		return res, nil
	})
}

// register installs the reactor builtins into env.
func (b *builder) register(env *zygo.Zlisp) {
	b.add(env, "number", b.value(func() graph.Node { return &graph.NumberNode{} }, 1))
	b.add(env, "vec3", b.value(func() graph.Node { return &graph.VectorNode{} }, 3))
	b.add(env, "color", b.value(func() graph.Node { return &graph.ColorNode{} }, 3))

	b.add(env, "texture", b.node(func() graph.Node { return graph.NewTextureNode("") }, "path"))
	b.add(env, "lambertian", b.node(func() graph.Node { return graph.NewLambertianNode() }))
	b.add(env, "metal", b.node(func() graph.Node { return graph.NewMetalNode() }))
	b.add(env, "dielectric", b.node(func() graph.Node { return graph.NewDielectricNode() }, "ior"))
	b.add(env, "emissive", b.node(func() graph.Node { return graph.NewEmissiveNode() }))
	b.add(env, "checkerboard", b.node(func() graph.Node { return graph.NewCheckerboardNode() }))
	b.add(env, "sphere", b.node(func() graph.Node { return graph.NewSphereNode() }))
	b.add(env, "scene", b.node(func() graph.Node { return graph.NewSceneNode() }, "data"))
	b.add(env, "camera", b.node(func() graph.Node { return graph.NewCameraNode() }))
	b.add(env, "xrays", b.node(func() graph.Node {
		n := graph.NewXraysRenderNode()
		n.Sampling, n.Sky = b.sampling, b.sky
		return n
	}))
	b.add(env, "triangle", b.node(func() graph.Node { return graph.NewTriangleRenderNode() }))

	b.add(env, "collection", b.collection)
	b.add(env, "output", b.outputNode)
	b.add(env, "connect", b.connect)
	b.add(env, "assign", b.assign)
}

// value builds a constant node from width numeric arguments. A single argument broadcasts.
func (b *builder) value(mk func() graph.Node, width int) builtin {
	return func(args []zygo.Sexp) (zygo.Sexp, error) {
		kw, pos := splitArgs(args)
		n := mk()
		id := b.g.Add(n)

		var v literal
		switch {
		case len(pos) == width:
			for i, a := range pos {
				f, err := toFloat(a)
				if err != nil {
					return nil, err
				}
				v.vec[i] = f
			}
			v.num = v.vec[0]
		case len(pos) == 1:
			f, err := toFloat(pos[0])
			if err != nil {
				return nil, err
			}
			v.num, v.vec = f, common.Vec3{f, f, f}
		case len(pos) != 0:
			return nil, fmt.Errorf("%w: want %d values, got %d", ErrBadArgument, width, len(pos))
		}
		if len(pos) > 0 {
			properties[n.Name()]["value"].assign(n, v)
		}
		return b.finish(id, n, kw)
	}
}

// node builds a node and applies keyword properties. Positional arguments fill the named properties in order.
func (b *builder) node(mk func() graph.Node, positional ...string) builtin {
	return func(args []zygo.Sexp) (zygo.Sexp, error) {
		kw, pos := splitArgs(args)
		if len(pos) > len(positional) {
			return nil, fmt.Errorf("%w: %d unexpected positional arguments", ErrBadArgument, len(pos)-len(positional))
		}
		named := make([]kwArg, 0, len(pos)+len(kw))
		for i, a := range pos {
			named = append(named, kwArg{key: positional[i], val: a})
		}
		kw = append(named, kw...)

		n := mk()
		id := b.g.Add(n)
		return b.finish(id, n, kw)
	}
}

func (b *builder) finish(id graph.NodeID, n graph.Node, kw []kwArg) (zygo.Sexp, error) {
	if err := b.apply(id, n, kw); err != nil {
		return nil, err
	}
	return &sexpNode{id: id, kind: n.Name()}, nil
}

// apply sets keyword properties on an existing node. :name records the node in the result.
func (b *builder) apply(id graph.NodeID, n graph.Node, kw []kwArg) error {
	props := properties[n.Name()]
	for _, a := range kw {
		if a.key == "name" {
			name, err := toString(a.val)
			if err != nil {
				return err
			}
			b.named[name] = id
			continue
		}

		p, ok := props[a.key]
		if !ok {
			return fmt.Errorf("%w: %s has no property %q", ErrBadArgument, n.Name(), a.key)
		}
		if err := b.set(id, p, a); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) set(id graph.NodeID, p property, a kwArg) error {
	if ref, ok := a.val.(*sexpNode); ok {
		if p.pin < 0 {
			return fmt.Errorf("%w: %s cannot be wired", ErrBadArgument, a.key)
		}
		if err := b.g.Connect(graph.OutPin{Node: ref.id}, graph.InPin{Node: id, Input: p.pin}); err != nil {
			return fmt.Errorf("%s: %w", a.key, err)
		}
		return nil
	}
	if p.assign == nil {
		return fmt.Errorf("%w: %s needs a node, got %s", ErrBadArgument, a.key, a.val.SexpString(nil))
	}

	v, err := toLiteral(p.kind, a.val)
	if err != nil {
		return fmt.Errorf("%s: %w", a.key, err)
	}
	return b.g.Update(id, func(n graph.Node) bool { return p.assign(n, v) })
}

// (collection a b c) wires every argument into a new collection in order.
func (b *builder) collection(args []zygo.Sexp) (zygo.Sexp, error) {
	kw, pos := splitArgs(args)
	n := graph.NewCollectionNode()
	id := b.g.Add(n)
	for i, a := range pos {
		ref, err := toNode(a)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if err := b.g.Connect(graph.OutPin{Node: ref}, graph.InPin{Node: id, Input: i}); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return b.finish(id, n, kw)
}

// (output render :target "main") declares a presentation target.
func (b *builder) outputNode(args []zygo.Sexp) (zygo.Sexp, error) {
	kw, pos := splitArgs(args)
	if len(pos) != 1 {
		return nil, fmt.Errorf("%w: want a render node", ErrBadArgument)
	}
	src, err := toNode(pos[0])
	if err != nil {
		return nil, err
	}

	target := ""
	rest := kw[:0]
	for _, a := range kw {
		if a.key != "target" {
			rest = append(rest, a)
			continue
		}
		if target, err = toString(a.val); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
	}

	n := graph.NewOutputNode(target)
	id := b.g.Add(n)
	if err := b.g.Connect(graph.OutPin{Node: src}, graph.InPin{Node: id}); err != nil {
		return nil, err
	}
	if b.output == graph.NoNode {
		b.output = id
	}
	return b.finish(id, n, rest)
}

// (connect from to pin) wires output 0 of from into input pin of to. :output picks another output.
func (b *builder) connect(args []zygo.Sexp) (zygo.Sexp, error) {
	kw, pos := splitArgs(args)
	if len(pos) != 3 {
		return nil, fmt.Errorf("%w: want (connect from to pin)", ErrBadArgument)
	}
	from, err := toNode(pos[0])
	if err != nil {
		return nil, err
	}
	to, err := toNode(pos[1])
	if err != nil {
		return nil, err
	}
	pin, err := toFloat(pos[2])
	if err != nil {
		return nil, err
	}

	out := 0
	for _, a := range kw {
		if a.key != "output" {
			return nil, fmt.Errorf("%w: unknown option %q", ErrBadArgument, a.key)
		}
		f, err := toFloat(a.val)
		if err != nil {
			return nil, err
		}
		out = int(f)
	}

	if err := b.g.Connect(graph.OutPin{Node: from, Output: out}, graph.InPin{Node: to, Input: int(pin)}); err != nil {
		return nil, err
	}
	return pos[1], nil
}

// (assign node :prop value ...) changes properties of an existing node.
func (b *builder) assign(args []zygo.Sexp) (zygo.Sexp, error) {
	kw, pos := splitArgs(args)
	if len(pos) != 1 {
		return nil, fmt.Errorf("%w: want (assign node :prop value)", ErrBadArgument)
	}
	id, err := toNode(pos[0])
	if err != nil {
		return nil, err
	}
	n, ok := b.g.Node(id)
	if !ok {
		return nil, graph.ErrNodeNotFound
	}
	if err := b.apply(id, n, kw); err != nil {
		return nil, err
	}
	return pos[0], nil
}

type kwArg struct {
	key string
	val zygo.Sexp
}

// splitArgs separates keyword pairs from positional arguments. Keyword names are snake_cased.
func splitArgs(args []zygo.Sexp) ([]kwArg, []zygo.Sexp) {
	var (
		kw  []kwArg
		pos []zygo.Sexp
	)
	for i := 0; i < len(args); i++ {
		key, ok := keyword(args[i])
		if !ok {
			pos = append(pos, args[i])
			continue
		}
		var val zygo.Sexp = zygo.SexpNull
		if i+1 < len(args) {
			i++
			val = args[i]
		}
		kw = append(kw, kwArg{key: strings.ReplaceAll(key, "-", "_"), val: val})
	}
	return kw, pos
}

func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

func toFloat(s zygo.Sexp) (float32, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float32(v.Val), nil
	case *zygo.SexpFloat:
		return float32(v.Val), nil
	}
	return 0, fmt.Errorf("%w: expected number, got %s", ErrBadArgument, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
		return str.S, nil
	}
	return "", fmt.Errorf("%w: expected string, got %s", ErrBadArgument, s.SexpString(nil))
}

func toNode(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNode); ok {
		return ref.id, nil
	}
	return graph.NoNode, fmt.Errorf("%w: expected node, got %s", ErrBadArgument, s.SexpString(nil))
}

// toVec accepts [x y z] arrays, (x y z) lists and single numbers, which broadcast.
func toVec(s zygo.Sexp) (common.Vec3, error) {
	if f, err := toFloat(s); err == nil {
		return common.Vec3{f, f, f}, nil
	}

	var items []zygo.Sexp
	switch v := s.(type) {
	case *zygo.SexpArray:
		items = v.Val
	case *zygo.SexpPair:
		list, err := zygo.ListToArray(v)
		if err != nil {
			return common.Vec3{}, err
		}
		items = list
	}
	if len(items) != 3 {
		return common.Vec3{}, fmt.Errorf("%w: expected [x y z], got %s", ErrBadArgument, s.SexpString(nil))
	}

	var out common.Vec3
	for i, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return common.Vec3{}, err
		}
		out[i] = f
	}
	return out, nil
}

func toLiteral(kind valueKind, s zygo.Sexp) (literal, error) {
	var (
		v   literal
		err error
	)
	switch kind {
	case kindNumber:
		v.num, err = toFloat(s)
	case kindVector:
		v.vec, err = toVec(s)
	case kindString:
		v.str, err = toString(s)
	default:
		err = errors.New("unsupported property kind")
	}
	return v, err
}
