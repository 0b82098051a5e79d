package engine

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/chazu/meshkernel/pkg/tessellate"
	zygo "github.com/glycerine/zygomys/zygo"
)

// kwPrefix marks keyword arguments once preprocess has run.
const kwPrefix = "__kw_"

// preprocess rewrites a script for zygomys. Keywords (:size) become the
// string literals "__kw_size" and ; comments become // comments. String
// literals and comment text pass through untouched.
func preprocess(source string) string {
	var b strings.Builder
	b.Grow(len(source) + len(source)/4)
	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"' || c == '`':
			j := stringEnd(source, i)
			b.WriteString(source[i:j])
			i = j
		case c == ';':
			j := i
			for j < len(source) && source[j] == ';' {
				j++
			}
			end := strings.IndexByte(source[j:], '\n')
			if end < 0 {
				end = len(source)
			} else {
				end += j
			}
			b.WriteString("//")
			b.WriteString(source[j:end])
			i = end
		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKeywordChar(source[j]) {
				j++
			}
			b.WriteString(strconv.Quote(kwPrefix + source[i+1:j]))
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// stringEnd returns the index just past the string literal opening at i.
// Unterminated literals run to the end of the source.
func stringEnd(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch {
		case quote == '"' && s[j] == '\\':
			j++
		case s[j] == quote:
			return j + 1
		}
	}
	return len(s)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKeywordChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// sexpNode carries a scene node between builtins.
type sexpNode struct {
	node tessellate.Node
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	if n.node.Shape == tessellate.ShapeNone {
		return fmt.Sprintf("(group %q %d children)", n.node.Name, len(n.node.Children))
	}
	s := n.node.Size
	return fmt.Sprintf("(%s %q %gx%gx%g)", n.node.Shape, n.node.Name, s[0], s[1], s[2])
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec [3]float64
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// kwArgs is an argument list split into keyword and positional arguments.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		str, ok := args[i].(*zygo.SexpStr)
		if !ok || !strings.HasPrefix(str.S, kwPrefix) {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		name := str.S[len(kwPrefix):]
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i++
		} else {
			pa.kw[name] = zygo.SexpNull
		}
	}
	return pa
}

// allow rejects keywords outside the given set.
func (pa kwArgs) allow(known ...string) error {
	for _, k := range slices.Sorted(maps.Keys(pa.kw)) {
		if !slices.Contains(known, k) {
			return fmt.Errorf("unknown keyword :%s", k)
		}
	}
	return nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %s", s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

func toVec3(s zygo.Sexp) ([3]float64, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return [3]float64{}, fmt.Errorf("expected vec3, got %s", s.SexpString(nil))
}

func toNode(s zygo.Sexp) (tessellate.Node, error) {
	if n, ok := s.(*sexpNode); ok {
		return n.node, nil
	}
	return tessellate.Node{}, fmt.Errorf("expected cube, cylinder, group or place, got %s", s.SexpString(nil))
}

// name reads the optional :name keyword.
func (pa kwArgs) name(builtin string) (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return "", nil
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", builtin, err)
	}
	return s, nil
}

// registerBuiltins installs the scene builtins. Roots passed to (scene ...)
// are appended to s. Scripts must go through preprocess first so that
// keywords are recognizable.
func registerBuiltins(env *zygo.Zlisp, s *tessellate.Scene) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v sexpVec3
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %g is not finite", "xyz"[i], f)
			}
			v.vec[i] = f
		}
		return &v, nil
	})

	// (cube :name "shelf" :size (vec3 600 300 18))
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.allow("name", "size"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: %w", err)
		}
		n := tessellate.Node{Shape: tessellate.ShapeCube}
		var err error
		if n.Name, err = pa.name("cube"); err != nil {
			return zygo.SexpNull, err
		}
		v, ok := pa.kw["size"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("cube requires :size")
		}
		if n.Size, err = toVec3(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: size: %w", err)
		}
		return &sexpNode{node: n}, nil
	})

	// (cylinder :name "leg" :diameter 30 :height 700 :segments 24)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.allow("name", "diameter", "height", "segments"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		n := tessellate.Node{Shape: tessellate.ShapeCylinder}
		var err error
		if n.Name, err = pa.name("cylinder"); err != nil {
			return zygo.SexpNull, err
		}
		var dims [2]float64
		for i, key := range []string{"diameter", "height"} {
			v, ok := pa.kw[key]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("cylinder requires :%s", key)
			}
			if dims[i], err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %s: %w", key, err)
			}
		}
		n.Size = [3]float64{dims[0], dims[0], dims[1]}
		if v, ok := pa.kw["segments"]; ok {
			if n.Segments, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
		}
		return &sexpNode{node: n}, nil
	})

	// (group :name "frame" child ...)
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.allow("name"); err != nil {
			return zygo.SexpNull, fmt.Errorf("group: %w", err)
		}
		var n tessellate.Node
		var err error
		if n.Name, err = pa.name("group"); err != nil {
			return zygo.SexpNull, err
		}
		for i, a := range pa.positional {
			child, err := toNode(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("group: child %d: %w", i+1, err)
			}
			n.Children = append(n.Children, child)
		}
		return &sexpNode{node: n}, nil
	})

	// (place node :rotate (vec3 0 0 90) :at (vec3 10 0 0))
	//
	// The result is an unnamed group around node, so placements nest
	// instead of replacing transforms node already carries.
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.allow("rotate", "at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires exactly one node, got %d", len(pa.positional))
		}
		child, err := toNode(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		n := tessellate.Node{Children: []tessellate.Node{child}}
		if v, ok := pa.kw["rotate"]; ok {
			r, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			n.Rotate = &r
		}
		if v, ok := pa.kw["at"]; ok {
			t, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			n.Translate = &t
		}
		return &sexpNode{node: n}, nil
	})

	// (scene node ...)
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for i, a := range args {
			n, err := toNode(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scene: root %d: %w", i+1, err)
			}
			s.Nodes = append(s.Nodes, n)
		}
		return zygo.SexpNull, nil
	})
}
