package kernel

import (
	"math"

	"github.com/chazu/meshkernel/pkg/bbox"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float64
}

// Tangent is a half-edge tangent for curved-surface export: a direction in
// XYZ and a weight in W.
type Tangent struct {
	X, Y, Z, W float64
}

// Mesh is the flat exchange form of a triangle mesh. Positions are indexed
// by vertex; TriVerts holds one counter-clockwise index triple per
// triangle. The kernel works in a Z-up frame; axis conversion belongs to
// whatever reads or writes files.
//
// The optional arrays are either empty or exactly as long as their
// companion: VertNormal and VertColor match VertPos, HalfedgeTangent has
// one entry per half-edge (3 per triangle).
type Mesh struct {
	VertPos         []v3.Vec  `json:"vertPos"`
	VertNormal      []v3.Vec  `json:"vertNormal,omitempty"`
	VertColor       []Color   `json:"vertColor,omitempty"`
	TriVerts        [][3]int  `json:"triVerts"`
	HalfedgeTangent []Tangent `json:"halfedgeTangent,omitempty"`
	PartName        string    `json:"partName,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.VertPos)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.TriVerts)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.VertPos) == 0
}

// Bounds returns the bounding box of the vertex positions.
func (m *Mesh) Bounds() bbox.Box {
	return bbox.FromVertices(m.VertPos)
}

// Validate checks the length contracts between arrays, that every index is
// in range and that every position is finite. Failures are KindUserInput.
func (m *Mesh) Validate() error {
	const op = "kernel.Mesh.Validate"
	n := len(m.VertPos)
	if len(m.VertNormal) != 0 && len(m.VertNormal) != n {
		return UserErrorf(op, "vertNormal has %d entries, want 0 or %d (len(vertPos))", len(m.VertNormal), n)
	}
	if len(m.VertColor) != 0 && len(m.VertColor) != n {
		return UserErrorf(op, "vertColor has %d entries, want 0 or %d (len(vertPos))", len(m.VertColor), n)
	}
	if nh := 3 * len(m.TriVerts); len(m.HalfedgeTangent) != 0 && len(m.HalfedgeTangent) != nh {
		return UserErrorf(op, "halfedgeTangent has %d entries, want 0 or %d (3 per triangle)", len(m.HalfedgeTangent), nh)
	}
	for i, p := range m.VertPos {
		if !finite(p) {
			return UserErrorf(op, "vertex %d has non-finite position %v", i, p)
		}
	}
	for t, tri := range m.TriVerts {
		for _, v := range tri {
			if v < 0 || v >= n {
				return UserErrorf(op, "triangle %d references vertex %d, mesh has %d vertices", t, v, n)
			}
		}
	}
	return nil
}

func finite(p v3.Vec) bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) &&
		!math.IsInf(p.Y, 0) && !math.IsNaN(p.Y) &&
		!math.IsInf(p.Z, 0) && !math.IsNaN(p.Z)
}

// Material describes how an exported mesh should be shaded.
type Material struct {
	Roughness float64
	Metalness float64
	Color     Color
	VertColor []Color
}

// ExportOptions are the knobs an exporter honours. The exporter itself lives
// outside the kernel; Validate enforces the array contracts it relies on.
type ExportOptions struct {
	// Faceted exports flat shading and ignores vertex normals.
	Faceted bool
	Mat     Material
}

// DefaultExportOptions returns smooth shading with a plain white material.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Mat: Material{Roughness: 0.2, Metalness: 1, Color: Color{R: 1, G: 1, B: 1, A: 1}},
	}
}

// Validate checks that m carries what o needs.
func (o ExportOptions) Validate(m *Mesh) error {
	const op = "kernel.ExportOptions.Validate"
	if !o.Faceted && len(m.VertNormal) != len(m.VertPos) {
		return UserErrorf(op, "vertNormal must be the same length as vertPos when faceted is false (%d != %d)",
			len(m.VertNormal), len(m.VertPos))
	}
	if len(o.Mat.VertColor) != 0 && len(o.Mat.VertColor) != len(m.VertPos) {
		return UserErrorf(op, "if present, vertColor must be the same length as vertPos (%d != %d)",
			len(o.Mat.VertColor), len(m.VertPos))
	}
	return nil
}
