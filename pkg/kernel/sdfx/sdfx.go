// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Solids are signed distance
// fields; ToMesh tessellates them with marching cubes.
package sdfx

import (
	"fmt"
	"math"
	"time"

	"github.com/chazu/meshkernel/pkg/bbox"
	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box of the distance field.
func (s *sdfxSolid) BoundingBox() bbox.Box {
	return bbox.FromBox3(s.s.BoundingBox())
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells  int
	params kernel.ExecutionParams
}

// New returns a new SdfxKernel at the default resolution.
func New(params kernel.ExecutionParams) *SdfxKernel {
	return NewWithCells(defaultMeshCells, params)
}

// NewWithCells returns an SdfxKernel whose marching cubes grid has cells
// cells along the longest side of each solid. Values below 1 select the
// default.
func NewWithCells(cells int, params kernel.ExecutionParams) *SdfxKernel {
	if cells < 1 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells, params: params}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions, centered at the origin like
// the native kernel's.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder with the given height and radius.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// weldTolerance is the distance, relative to the largest coordinate of the
// solid, within which marching-cubes corners are merged.
const weldTolerance = 1e-6

// welder merges points closer than tol. Points are bucketed on a grid of
// pitch tol, so a lookup only has to scan the 27 buckets around a point.
type welder struct {
	tol     float64
	pos     []v3.Vec
	buckets map[[3]int64][]int
}

func newWelder(tol float64, sizeHint int) *welder {
	return &welder{tol: tol, buckets: make(map[[3]int64][]int, sizeHint)}
}

func (w *welder) key(p v3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}

// index returns the index of the welded point for p, adding p if no point
// lies within tol of it.
func (w *welder) index(p v3.Vec) int {
	k := w.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.buckets[[3]int64{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if w.pos[i].Sub(p).Length() <= w.tol {
						return i
					}
				}
			}
		}
	}
	i := len(w.pos)
	w.pos = append(w.pos, p)
	w.buckets[k] = append(w.buckets[k], i)
	return i
}

// weldTol picks the merge distance for a solid: weldTolerance of its
// largest coordinate, but never more than a thousandth of a cell.
func (k *SdfxKernel) weldTol(box bbox.Box) float64 {
	tol := weldTolerance * box.Scale()
	if cell := box.Size().MaxComponent() / float64(k.cells); cell > 0 {
		tol = math.Min(tol, cell/1000)
	}
	if !(tol > 0) || math.IsInf(tol, 0) {
		return 1e-12
	}
	return tol
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
// Marching cubes emits every triangle with its own three corners, and
// neighboring cells can compute the same corner a few ulps apart. Corners
// within the weld tolerance are merged so triangles share vertices and the
// result can be lifted into half-edge form. Vertex normals average the
// face normals around each welded vertex.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	start := time.Now()
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	w := newWelder(k.weldTol(bbox.FromBox3(sdf3.BoundingBox())), len(triangles)/2)
	mesh := &kernel.Mesh{TriVerts: make([][3]int, 0, len(triangles))}
	var normalSum []v3.Vec

	for _, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()

		var idx [3]int
		for j := 0; j < 3; j++ {
			idx[j] = w.index(tri[j])
			for len(normalSum) < len(w.pos) {
				normalSum = append(normalSum, v3.Vec{})
			}
		}
		// Marching cubes can emit slivers whose corners weld together.
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			continue
		}
		for _, i := range idx {
			normalSum[i] = normalSum[i].Add(n)
		}
		mesh.TriVerts = append(mesh.TriVerts, idx)
	}
	mesh.VertPos = w.pos

	mesh.VertNormal = make([]v3.Vec, len(normalSum))
	for i, n := range normalSum {
		if l := n.Length(); l > 0 {
			mesh.VertNormal[i] = n.DivScalar(l)
		}
	}

	dropped := len(triangles) - len(mesh.TriVerts)
	if dropped > 0 {
		k.params.Warn("dropped collapsed triangles", zap.Int("count", dropped))
	}
	k.params.Info("sdfx tessellated",
		zap.Int("cells", k.cells),
		zap.Int("triangles", len(mesh.TriVerts)),
		zap.Int("vertices", len(mesh.VertPos)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mesh, nil
}
