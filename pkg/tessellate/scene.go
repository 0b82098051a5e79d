package tessellate

import (
	"bytes"
	"io"
	"math"

	"github.com/chazu/meshkernel/pkg/kernel"
	"gopkg.in/yaml.v3"
)

// Shape names a primitive a scene node can hold.
type Shape string

const (
	ShapeNone     Shape = ""
	ShapeCube     Shape = "cube"
	ShapeCylinder Shape = "cylinder"
)

// defaultSegments is used for cylinders that do not name a side count.
const defaultSegments = 32

// Node is one entry of a scene tree. A node with a Shape is a part; a node
// without one groups its children. Rotate (Euler degrees, X then Y then Z)
// and then Translate apply to the node's own part and to every descendant,
// after the descendant's own transforms.
type Node struct {
	Name      string      `yaml:"name"`
	Shape     Shape       `yaml:"shape,omitempty"`
	Size      [3]float64  `yaml:"size,omitempty,flow"`
	Segments  int         `yaml:"segments,omitempty"`
	Rotate    *[3]float64 `yaml:"rotate,omitempty,flow"`
	Translate *[3]float64 `yaml:"translate,omitempty,flow"`
	Children  []Node      `yaml:"children,omitempty"`
}

// Scene is a forest of nodes.
type Scene struct {
	Nodes []Node `yaml:"nodes"`
}

// ParseScene decodes a YAML scene. Unknown keys are rejected.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, kernel.UserErrorf("tessellate.ParseScene", "%v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every node: known shapes, positive sizes, enough
// cylinder sides.
func (s *Scene) Validate() error {
	for i := range s.Nodes {
		if err := s.Nodes[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) validate() error {
	const op = "tessellate.Validate"
	switch n.Shape {
	case ShapeNone:
	case ShapeCube, ShapeCylinder:
		for _, x := range n.Size {
			if !(x > 0) || math.IsInf(x, 1) {
				return kernel.UserErrorf(op, "node %q: size %v must be positive and finite", n.Name, n.Size)
			}
		}
		if n.Shape == ShapeCylinder && n.Segments != 0 && n.Segments < 3 {
			return kernel.UserErrorf(op, "node %q: need at least 3 segments, got %d", n.Name, n.Segments)
		}
	default:
		return kernel.UserErrorf(op, "node %q: unknown shape %q", n.Name, n.Shape)
	}
	for _, v := range []*[3]float64{n.Rotate, n.Translate} {
		if v != nil && !finite(*v) {
			return kernel.UserErrorf(op, "node %q: transform %v must be finite", n.Name, *v)
		}
	}
	for i := range n.Children {
		if err := n.Children[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func finite(v [3]float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
