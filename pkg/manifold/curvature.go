package manifold

import (
	"math"

	"github.com/chazu/meshkernel/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Curvature holds discrete per-vertex curvature densities.
//
// Gaussian curvature is the angle defect 2π - Σθ divided by the vertex
// area; mean curvature is Σ |e|·φe / 4 over the incident edges, divided by
// the same area, where φe is the signed dihedral angle (positive on convex
// edges). VertArea is one third of the area of the incident triangles, so
// Σ VertGaussianCurvature[v]·VertArea[v] = 2π·χ.
type Curvature struct {
	MaxMeanCurvature, MinMeanCurvature         float64
	MaxGaussianCurvature, MinGaussianCurvature float64
	VertMeanCurvature, VertGaussianCurvature   []float64
	VertArea                                   []float64
}

// GetCurvature computes the curvature of every vertex. Only closed solids
// have a well-defined angle defect; an open one is a KindTopology error.
func (m *Manifold) GetCurvature() (Curvature, error) {
	if !m.topo.IsClosed() {
		return Curvature{}, kernel.TopologyErrorf("manifold.GetCurvature",
			"curvature needs a closed surface, found %d boundary edges", m.topo.NumBoundary())
	}
	n := len(m.vertPos)
	angleSum := make([]float64, n)
	area := make([]float64, n)
	mean := make([]float64, n)

	for t := 0; t < m.topo.NumTri(); t++ {
		tri := m.topo.Triangle(t)
		a, b, c := m.corners(t)
		triArea := b.Sub(a).Cross(c.Sub(a)).Length() / 2
		pts := [3]v3.Vec{a, b, c}
		for i, p := range pts {
			angleSum[tri[i]] += angle(pts[(i+1)%3].Sub(p), pts[(i+2)%3].Sub(p))
			area[tri[i]] += triArea / 3
		}
	}

	for e := range m.topo.CanonicalEdges() {
		h := m.topo.At(e)
		phi := m.dihedral(e)
		l := m.vertPos[h.EndVert].Sub(m.vertPos[h.StartVert]).Length()
		mean[h.StartVert] += l * phi / 4
		mean[h.EndVert] += l * phi / 4
	}

	c := Curvature{
		VertMeanCurvature:     make([]float64, n),
		VertGaussianCurvature: make([]float64, n),
		VertArea:              area,
	}
	if n == 0 {
		return c, nil
	}
	c.MaxMeanCurvature, c.MinMeanCurvature = math.Inf(-1), math.Inf(1)
	c.MaxGaussianCurvature, c.MinGaussianCurvature = math.Inf(-1), math.Inf(1)
	for v := range n {
		if area[v] > 0 {
			c.VertGaussianCurvature[v] = (2*math.Pi - angleSum[v]) / area[v]
			c.VertMeanCurvature[v] = mean[v] / area[v]
		}
		c.MaxMeanCurvature = math.Max(c.MaxMeanCurvature, c.VertMeanCurvature[v])
		c.MinMeanCurvature = math.Min(c.MinMeanCurvature, c.VertMeanCurvature[v])
		c.MaxGaussianCurvature = math.Max(c.MaxGaussianCurvature, c.VertGaussianCurvature[v])
		c.MinGaussianCurvature = math.Min(c.MinGaussianCurvature, c.VertGaussianCurvature[v])
	}
	return c, nil
}

// dihedral returns the signed angle between the faces on either side of
// half-edge e: zero when flat, positive when the edge is convex. Boundary
// edges are flat.
func (m *Manifold) dihedral(e int) float64 {
	p := m.topo.Pair(e)
	if p < 0 {
		return 0
	}
	n1, n2 := m.faceNormal(e/3), m.faceNormal(p/3)
	h := m.topo.At(e)
	dir := normalize(m.vertPos[h.EndVert].Sub(m.vertPos[h.StartVert]))
	return math.Atan2(n1.Cross(n2).Dot(dir), n1.Dot(n2))
}

func (m *Manifold) faceNormal(t int) v3.Vec {
	a, b, c := m.corners(t)
	return normalize(b.Sub(a).Cross(c.Sub(a)))
}

// angle returns the unsigned angle between u and w.
func angle(u, w v3.Vec) float64 {
	return math.Atan2(u.Cross(w).Length(), u.Dot(w))
}

// Smoothness marks a half-edge for smooth refinement: 0 keeps the edge
// sharp, 1 rounds it fully.
type Smoothness struct {
	Halfedge   int
	Smoothness float64
}

// SharpenEdges returns a Smoothness entry for both half-edges of every edge
// whose dihedral angle is at least minSharpAngle degrees.
func (m *Manifold) SharpenEdges(minSharpAngle, smoothness float64) []Smoothness {
	limit := minSharpAngle * math.Pi / 180
	var out []Smoothness
	for e := range m.topo.CanonicalEdges() {
		if math.Abs(m.dihedral(e)) < limit {
			continue
		}
		out = append(out, Smoothness{Halfedge: e, Smoothness: smoothness})
		if p := m.topo.Pair(e); p >= 0 {
			out = append(out, Smoothness{Halfedge: p, Smoothness: smoothness})
		}
	}
	return out
}

// CheckSmoothness reports entries that name a half-edge outside the solid
// or a smoothness outside [0, 1] as KindUserInput errors.
func (m *Manifold) CheckSmoothness(s []Smoothness) error {
	const op = "manifold.CheckSmoothness"
	for i, sm := range s {
		if sm.Halfedge < 0 || sm.Halfedge >= m.topo.Len() {
			return kernel.UserErrorf(op, "entry %d: half-edge %d out of range [0, %d)", i, sm.Halfedge, m.topo.Len())
		}
		if !(sm.Smoothness >= 0 && sm.Smoothness <= 1) {
			return kernel.UserErrorf(op, "entry %d: smoothness %g outside [0, 1]", i, sm.Smoothness)
		}
	}
	return nil
}
