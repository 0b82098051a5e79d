// Package manifold composes the kernel's building blocks into a solid: a
// vertex array, its half-edge topology, a cached bounding box and the
// provenance relation of every triangle.
//
// A Manifold is immutable. Transforms return a new value, and any number of
// goroutines may query one concurrently.
package manifold

import (
	"math"
	"time"

	"github.com/chazu/meshkernel/pkg/bbox"
	"github.com/chazu/meshkernel/pkg/geom"
	"github.com/chazu/meshkernel/pkg/halfedge"
	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/chazu/meshkernel/pkg/relation"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// Compile-time interface check.
var _ kernel.Solid = (*Manifold)(nil)

// Manifold is an oriented triangle surface with validated connectivity.
type Manifold struct {
	vertPos    []v3.Vec
	vertNormal []v3.Vec
	topo       *halfedge.Topology
	box        bbox.Box
	rel        relation.MeshRelation
	meshID     int
	params     kernel.ExecutionParams
}

// New builds a closed solid from m. Every edge must be shared by exactly two
// consistently wound triangles; an open boundary is a KindTopology error.
// Missing normals are computed from the faces.
func New(m *kernel.Mesh, params kernel.ExecutionParams) (*Manifold, error) {
	return build("manifold.New", m, params, true)
}

// NewOpen is New for surfaces that are intentionally open. Boundary edges
// are allowed and reported through params.
func NewOpen(m *kernel.Mesh, params kernel.ExecutionParams) (*Manifold, error) {
	return build("manifold.NewOpen", m, params, false)
}

func build(op string, m *kernel.Mesh, params kernel.ExecutionParams, closed bool) (*Manifold, error) {
	start := time.Now()
	if m == nil {
		return nil, kernel.UserErrorf(op, "nil mesh")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	topo, err := halfedge.Build(m.TriVerts, len(m.VertPos), params)
	if err != nil {
		return nil, err
	}
	if closed && !topo.IsClosed() {
		return nil, kernel.TopologyErrorf(op, "mesh has %d boundary edges; use NewOpen for open surfaces", topo.NumBoundary())
	}

	pos := append([]v3.Vec(nil), m.VertPos...)
	normals := append([]v3.Vec(nil), m.VertNormal...)
	if len(normals) == 0 {
		normals = vertexNormals(pos, topo)
	}

	id := relation.NextMeshID()
	out := &Manifold{
		vertPos:    pos,
		vertNormal: normals,
		topo:       topo,
		box:        bbox.FromVertices(pos),
		rel:        relation.Identity(id, topo.NumTri()),
		meshID:     id,
		params:     params,
	}

	if params.IntermediateChecks {
		if err := out.Check(); err != nil {
			return nil, err
		}
	}
	params.Info("manifold built",
		zap.String("op", op),
		zap.Int("meshID", id),
		zap.Int("vertices", len(pos)),
		zap.Int("triangles", topo.NumTri()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// NumVert returns the number of vertices.
func (m *Manifold) NumVert() int { return len(m.vertPos) }

// NumTri returns the number of triangles.
func (m *Manifold) NumTri() int { return m.topo.NumTri() }

// NumEdge returns the number of undirected edges.
func (m *Manifold) NumEdge() int { return m.topo.NumEdge() }

// Genus returns the genus of the surface.
func (m *Manifold) Genus() int { return m.topo.Genus() }

// IsEmpty reports whether the solid has no triangles.
func (m *Manifold) IsEmpty() bool { return m.topo.NumTri() == 0 }

// BoundingBox returns the cached bounding box.
func (m *Manifold) BoundingBox() bbox.Box { return m.box }

// Topology returns the half-edge connectivity. It is shared, not copied.
func (m *Manifold) Topology() *halfedge.Topology { return m.topo }

// Relation returns a copy of the provenance relation.
func (m *Manifold) Relation() relation.MeshRelation { return m.rel.Clone() }

// MeshID returns the id this solid's triangles are tagged with when it is
// an original.
func (m *Manifold) MeshID() int { return m.meshID }

// Position returns the position of vertex v.
func (m *Manifold) Position(v int) v3.Vec { return m.vertPos[v] }

// GetMesh returns the solid in exchange form.
func (m *Manifold) GetMesh() *kernel.Mesh {
	return &kernel.Mesh{
		VertPos:    append([]v3.Vec(nil), m.vertPos...),
		VertNormal: append([]v3.Vec(nil), m.vertNormal...),
		TriVerts:   m.topo.Triangles(),
	}
}

// Properties are integral measures of a solid.
type Properties struct {
	SurfaceArea float64
	// Volume is signed: positive for outward-facing winding.
	Volume float64
}

// GetProperties integrates area and volume over every triangle.
func (m *Manifold) GetProperties() Properties {
	var p Properties
	for t := 0; t < m.topo.NumTri(); t++ {
		a, b, c := m.corners(t)
		cross := b.Sub(a).Cross(c.Sub(a))
		p.SurfaceArea += cross.Length() / 2
		p.Volume += a.Dot(b.Cross(c)) / 6
	}
	return p
}

// DegenerateTriangles returns the indices of triangles whose corners are
// collinear within tol, relative to their size. A non-empty result is
// logged as a warning.
func (m *Manifold) DegenerateTriangles(tol float64) []int {
	var out []int
	for t := 0; t < m.topo.NumTri(); t++ {
		a, b, c := m.corners(t)
		if geom.Degenerate3D(a, b, c, tol) {
			out = append(out, t)
		}
	}
	if len(out) > 0 {
		m.params.Warn("degenerate triangles", zap.Int("meshID", m.meshID), zap.Ints("triangles", out))
	}
	return out
}

// SetAsOriginal returns a copy that is its own source: a fresh mesh id and
// an identity relation.
func (m *Manifold) SetAsOriginal() *Manifold {
	out := m.clone()
	out.meshID = relation.NextMeshID()
	out.rel = relation.Identity(out.meshID, out.topo.NumTri())
	return out
}

// Check runs every internal-consistency check: the half-edge invariants,
// the relation, and that the cached box bounds every vertex. Failures are
// KindGeometry.
func (m *Manifold) Check() error {
	const op = "manifold.Check"
	if err := m.topo.Check(); err != nil {
		return err
	}
	if m.topo.NumVert() != len(m.vertPos) {
		return kernel.GeometryErrorf(op, "topology built for %d vertices, solid has %d", m.topo.NumVert(), len(m.vertPos))
	}
	if len(m.vertNormal) != len(m.vertPos) {
		return kernel.GeometryErrorf(op, "%d normals for %d vertices", len(m.vertNormal), len(m.vertPos))
	}
	if len(m.rel.TriBary) != m.topo.NumTri() {
		return kernel.GeometryErrorf(op, "relation covers %d triangles, solid has %d", len(m.rel.TriBary), m.topo.NumTri())
	}
	if err := m.rel.Validate(); err != nil {
		return err
	}
	for v, p := range m.vertPos {
		if !m.box.ContainsPoint(p) {
			return kernel.GeometryErrorf(op, "vertex %d at %v lies outside the cached box %v", v, p, m.box)
		}
	}
	return nil
}

// Transform maps the solid through a. A mirroring transform (negative
// determinant) reverses every triangle so the surface stays outward
// facing; the relation follows the reordered corners.
func (m *Manifold) Transform(a geom.Affine) *Manifold {
	out := m.clone()
	for i, p := range m.vertPos {
		out.vertPos[i] = a.Apply(p)
	}

	if a.IsAxisAligned() {
		out.box = m.box.Transform(a)
	} else {
		out.box = bbox.FromVertices(out.vertPos)
	}

	if a.Determinant() < 0 {
		out.topo = m.topo.Flip()
		for t := range out.rel.TriBary {
			vb := &out.rel.TriBary[t].VertBary
			vb[1], vb[2] = vb[2], vb[1]
		}
	}

	if nm, ok := a.NormalMatrix(); ok {
		for i, n := range m.vertNormal {
			out.vertNormal[i] = normalize(nm.ApplyVector(n))
		}
	} else {
		out.vertNormal = vertexNormals(out.vertPos, out.topo)
	}
	return out
}

// Translate moves the solid by v.
func (m *Manifold) Translate(v v3.Vec) *Manifold {
	return m.Transform(geom.Translation(v))
}

// Scale scales the solid about the origin. Negative components mirror.
func (m *Manifold) Scale(s v3.Vec) *Manifold {
	return m.Transform(geom.Scaling(s))
}

// Rotate rotates the solid by Euler angles in degrees, X first, then Y,
// then Z. Multiples of 90 are exact.
func (m *Manifold) Rotate(xDeg, yDeg, zDeg float64) *Manifold {
	return m.Transform(geom.Rotation(xDeg, yDeg, zDeg))
}

func (m *Manifold) clone() *Manifold {
	return &Manifold{
		vertPos:    append([]v3.Vec(nil), m.vertPos...),
		vertNormal: append([]v3.Vec(nil), m.vertNormal...),
		topo:       m.topo,
		box:        m.box,
		rel:        m.rel.Clone(),
		meshID:     m.meshID,
		params:     m.params,
	}
}

func (m *Manifold) corners(t int) (a, b, c v3.Vec) {
	tri := m.topo.Triangle(t)
	return m.vertPos[tri[0]], m.vertPos[tri[1]], m.vertPos[tri[2]]
}

// vertexNormals averages the area-weighted face normals around each vertex.
func vertexNormals(pos []v3.Vec, topo *halfedge.Topology) []v3.Vec {
	normals := make([]v3.Vec, len(pos))
	for t := 0; t < topo.NumTri(); t++ {
		tri := topo.Triangle(t)
		a, b, c := pos[tri[0]], pos[tri[1]], pos[tri[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, v := range tri {
			normals[v] = normals[v].Add(n)
		}
	}
	for i, n := range normals {
		normals[i] = normalize(n)
	}
	return normals
}

func normalize(v v3.Vec) v3.Vec {
	l := v.Length()
	if l < 1e-12 || math.IsNaN(l) {
		return v3.Vec{}
	}
	return v.DivScalar(l)
}
