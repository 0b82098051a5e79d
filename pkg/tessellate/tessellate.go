// Package tessellate walks a scene of placed primitives and produces one
// triangle mesh per part using a geometry kernel, optionally lifting each
// mesh into a half-edge solid. Parts are independent, so they are built
// concurrently.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/chazu/meshkernel/pkg/manifold"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// placement is one level of transforms between a part and the scene root.
type placement struct {
	rotate    *[3]float64
	translate *[3]float64
}

// transformStack accumulates placements during scene traversal, innermost
// last.
type transformStack struct {
	levels []placement
}

func (ts *transformStack) push(n *Node) {
	ts.levels = append(ts.levels, placement{rotate: n.Rotate, translate: n.Translate})
}

func (ts *transformStack) pop() {
	if len(ts.levels) > 0 {
		ts.levels = ts.levels[:len(ts.levels)-1]
	}
}

// snapshot copies the stack so a part can be built after traversal moves on.
func (ts *transformStack) snapshot() []placement {
	return append([]placement(nil), ts.levels...)
}

// part is a primitive found during traversal, with every placement above it.
type part struct {
	node   *Node
	levels []placement
}

// collect flattens the scene into parts in depth-first order.
func collect(s *Scene) []part {
	var parts []part
	ts := &transformStack{}
	var walk func(n *Node)
	walk = func(n *Node) {
		ts.push(n)
		if n.Shape != ShapeNone {
			parts = append(parts, part{node: n, levels: ts.snapshot()})
		}
		for i := range n.Children {
			walk(&n.Children[i])
		}
		ts.pop()
	}
	for i := range s.Nodes {
		walk(&s.Nodes[i])
	}
	return parts
}

// build creates the part's solid and applies its placements from the
// innermost level outward: each level rotates, then translates.
func (p part) build(k kernel.Kernel) kernel.Solid {
	n := p.node
	var solid kernel.Solid
	switch n.Shape {
	case ShapeCube:
		solid = k.Box(n.Size[0], n.Size[1], n.Size[2])
	case ShapeCylinder:
		segments := n.Segments
		if segments == 0 {
			segments = defaultSegments
		}
		solid = k.Cylinder(n.Size[2], n.Size[0]/2, segments)
	}
	for i := len(p.levels) - 1; i >= 0; i-- {
		if r := p.levels[i].rotate; r != nil && *r != [3]float64{} {
			solid = k.Rotate(solid, r[0], r[1], r[2])
		}
		if t := p.levels[i].translate; t != nil && *t != [3]float64{} {
			solid = k.Translate(solid, t[0], t[1], t[2])
		}
	}
	return solid
}

func (p part) name(i int) string {
	if p.node.Name != "" {
		return p.node.Name
	}
	return fmt.Sprintf("part-%d", i)
}

// warnDuplicateNames reports part names used more than once. Meshes are
// still produced for every part; only lookups by name become ambiguous.
func warnDuplicateNames(parts []part, params kernel.ExecutionParams) {
	counts := make(map[string]int)
	var order []string
	for i, p := range parts {
		name := p.name(i)
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	for _, name := range order {
		if counts[name] > 1 {
			params.Warn("duplicate part name", zap.String("name", name), zap.Int("parts", counts[name]))
		}
	}
}

// mesh builds and tessellates the part. Kernels panic on input they cannot
// build; the panic is returned as an error so one bad part cannot take the
// process down.
func (p part) mesh(k kernel.Kernel, i int) (mesh *kernel.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = fmt.Errorf("tessellate: part %s: %w", p.name(i), rerr)
			} else {
				err = fmt.Errorf("tessellate: part %s: %v", p.name(i), r)
			}
		}
	}()
	mesh, err = k.ToMesh(p.build(k))
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for part %s: %w", p.name(i), err)
	}
	return mesh, nil
}

// Tessellate walks the scene and produces one triangle mesh per part,
// in depth-first order, using the provided geometry kernel. The scene is
// validated first and never mutated.
func Tessellate(ctx context.Context, s *Scene, k kernel.Kernel, params kernel.ExecutionParams) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	parts := collect(s)
	warnDuplicateNames(parts, params)
	meshes := make([]*kernel.Mesh, len(parts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mesh, err := p.mesh(k, i)
			if err != nil {
				return err
			}
			mesh.PartName = p.name(i)
			meshes[i] = mesh
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	params.Info("scene tessellated", zap.Int("parts", len(meshes)))
	return meshes, nil
}

// Part is a tessellated part lifted into half-edge form.
type Part struct {
	Name  string
	Mesh  *kernel.Mesh
	Solid *manifold.Manifold
}

// Solids tessellates the scene and lifts every mesh with manifold.NewOpen.
// The first failure cancels the remaining work.
func Solids(ctx context.Context, s *Scene, k kernel.Kernel, params kernel.ExecutionParams) ([]Part, error) {
	meshes, err := Tessellate(ctx, s, k, params)
	if err != nil {
		return nil, err
	}
	out := make([]Part, len(meshes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, mesh := range meshes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := manifold.NewOpen(mesh, params)
			if err != nil {
				return fmt.Errorf("tessellate: part %s: %w", mesh.PartName, err)
			}
			out[i] = Part{Name: mesh.PartName, Mesh: mesh, Solid: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
