package halfedge

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/chazu/meshkernel/pkg/kernel"
	"go.uber.org/zap"
)

// Topology is the half-edge array of a triangle mesh plus the counts
// derived from it.
type Topology struct {
	halfedges   []Halfedge
	numVert     int
	numUsedVert int
	numBoundary int
}

// Build lifts a triangle list into half-edge form.
//
// Construction has two phases. Every triangle first emits its three
// half-edges in place. A permutation of the array is then sorted by
// undirected edge, which groups the two halves of each edge next to each
// other, and the pairs are written back into the unsorted array so that
// triangle t keeps half-edges 3t..3t+2.
//
// A group of one is an open boundary. A group of two must run in opposite
// directions. Anything else is a KindTopology error. Out-of-range or
// repeated vertex indices are KindUserInput errors. On error no Topology is
// returned.
func Build(triVerts [][3]int, numVert int, params kernel.ExecutionParams) (*Topology, error) {
	const op = "halfedge.Build"
	start := time.Now()

	if numVert < 0 {
		return nil, kernel.UserErrorf(op, "negative vertex count %d", numVert)
	}

	used := make([]bool, numVert)
	hs := make([]Halfedge, 3*len(triVerts))
	for t, tri := range triVerts {
		for _, v := range tri {
			if v < 0 || v >= numVert {
				return nil, kernel.UserErrorf(op, "triangle %d references vertex %d, mesh has %d vertices", t, v, numVert)
			}
			used[v] = true
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			return nil, kernel.UserErrorf(op, "triangle %d %v repeats a vertex", t, tri)
		}
		for i := 0; i < 3; i++ {
			hs[3*t+i] = Halfedge{
				StartVert:      tri[i],
				EndVert:        tri[(i+1)%3],
				PairedHalfedge: NoPair,
				Face:           t,
			}
		}
	}

	order := make([]int, len(hs))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		ka, kb := hs[a].key(), hs[b].key()
		switch {
		case ka.Less(kb):
			return -1
		case kb.Less(ka):
			return 1
		}
		return cmp.Compare(a, b)
	})

	numBoundary := 0
	for i := 0; i < len(order); {
		k := hs[order[i]].key()
		j := i + 1
		for j < len(order) && hs[order[j]].key() == k {
			j++
		}
		switch j - i {
		case 1:
			numBoundary++
		case 2:
			a, b := order[i], order[i+1]
			if hs[a].StartVert != hs[b].EndVert {
				return nil, kernel.TopologyErrorf(op,
					"edge (%d, %d) runs the same direction in triangles %d and %d; their winding is inconsistent",
					k.StartVert, k.EndVert, hs[a].Face, hs[b].Face)
			}
			hs[a].PairedHalfedge = b
			hs[b].PairedHalfedge = a
		default:
			faces := make([]int, 0, j-i)
			for _, e := range order[i:j] {
				faces = append(faces, hs[e].Face)
			}
			return nil, kernel.TopologyErrorf(op,
				"edge (%d, %d) is shared by %d triangles %v; a manifold edge borders at most 2",
				k.StartVert, k.EndVert, j-i, faces)
		}
		i = j
	}

	numUsed := 0
	for _, u := range used {
		if u {
			numUsed++
		}
	}

	topo := &Topology{
		halfedges:   hs,
		numVert:     numVert,
		numUsedVert: numUsed,
		numBoundary: numBoundary,
	}

	if numBoundary > 0 {
		params.Warn("mesh has open boundary", zap.Int("boundaryHalfedges", numBoundary))
	}
	params.Info("halfedges built",
		zap.Int("triangles", len(triVerts)),
		zap.Int("halfedges", len(hs)),
		zap.Int("boundary", numBoundary),
		zap.Duration("elapsed", time.Since(start)),
	)

	if params.IntermediateChecks {
		if err := topo.Check(); err != nil {
			return nil, err
		}
	}
	return topo, nil
}

// flipSlot maps a half-edge's position in triangle (a, b, c) to the
// position of its reverse in (a, c, b).
var flipSlot = [3]int{2, 1, 0}

// Flip returns the topology of the same triangles with every winding
// reversed: triangle (a, b, c) becomes (a, c, b). Pairing carries over, so
// no rebuild is needed.
func (t *Topology) Flip() *Topology {
	hs := make([]Halfedge, len(t.halfedges))
	for e, h := range t.halfedges {
		tri, i := e/3, e%3
		f := 3*tri + flipSlot[i]
		hs[f] = Halfedge{
			StartVert:      h.EndVert,
			EndVert:        h.StartVert,
			PairedHalfedge: NoPair,
			Face:           tri,
		}
		if p := h.PairedHalfedge; p != NoPair {
			hs[f].PairedHalfedge = 3*(p/3) + flipSlot[p%3]
		}
	}
	return &Topology{
		halfedges:   hs,
		numVert:     t.numVert,
		numUsedVert: t.numUsedVert,
		numBoundary: t.numBoundary,
	}
}

// Len returns the number of half-edges, 3 per triangle.
func (t *Topology) Len() int {
	return len(t.halfedges)
}

// NumTri returns the number of triangles.
func (t *Topology) NumTri() int {
	return len(t.halfedges) / 3
}

// NumVert returns the vertex count the topology was built against.
func (t *Topology) NumVert() int {
	return t.numVert
}

// NumEdge returns the number of undirected edges.
func (t *Topology) NumEdge() int {
	return (len(t.halfedges) + t.numBoundary) / 2
}

// NumBoundary returns the number of unpaired half-edges, which is the
// number of boundary edges.
func (t *Topology) NumBoundary() int {
	return t.numBoundary
}

// IsClosed reports whether every half-edge is paired.
func (t *Topology) IsClosed() bool {
	return t.numBoundary == 0
}

// At returns half-edge e.
func (t *Topology) At(e int) Halfedge {
	return t.halfedges[e]
}

// Pair returns the partner of e, or NoPair on a boundary.
func (t *Topology) Pair(e int) int {
	return t.halfedges[e].PairedHalfedge
}

// Halfedges returns a copy of the half-edge array.
func (t *Topology) Halfedges() []Halfedge {
	return slices.Clone(t.halfedges)
}

// Triangle returns the vertex triple of triangle tri.
func (t *Topology) Triangle(tri int) [3]int {
	return [3]int{
		t.halfedges[3*tri].StartVert,
		t.halfedges[3*tri+1].StartVert,
		t.halfedges[3*tri+2].StartVert,
	}
}

// Triangles returns the triangle list the topology encodes.
func (t *Topology) Triangles() [][3]int {
	out := make([][3]int, t.NumTri())
	for i := range out {
		out[i] = t.Triangle(i)
	}
	return out
}

// All yields every half-edge with its index in storage order.
func (t *Topology) All() iter.Seq2[int, Halfedge] {
	return func(yield func(int, Halfedge) bool) {
		for i, h := range t.halfedges {
			if !yield(i, h) {
				return
			}
		}
	}
}

// CanonicalEdges yields one half-edge per undirected edge: the forward half
// of each interior edge and every boundary half-edge. The result does not
// depend on the order triangles were supplied in beyond their indices.
func (t *Topology) CanonicalEdges() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, h := range t.halfedges {
			if h.IsBoundary() || h.IsForward() {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// BoundaryEdges yields every unpaired half-edge.
func (t *Topology) BoundaryEdges() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, h := range t.halfedges {
			if h.IsBoundary() {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// EulerCharacteristic returns V - E + F, counting only vertices referenced
// by some triangle.
func (t *Topology) EulerCharacteristic() int {
	return t.numUsedVert - t.NumEdge() + t.NumTri()
}

// Genus returns the genus of a closed, connected surface: 0 for a sphere,
// 1 for a torus. For open or multi-component meshes the value is the
// Euler-characteristic estimate and not meaningful on its own.
func (t *Topology) Genus() int {
	return 1 - t.EulerCharacteristic()/2
}

// Check re-verifies every invariant of the half-edge array. It never fails
// on a Topology produced by Build; a failure means memory was corrupted or
// a bug slipped in, and is reported as KindGeometry.
func (t *Topology) Check() error {
	const op = "halfedge.Check"
	hs := t.halfedges
	if len(hs)%3 != 0 {
		return kernel.GeometryErrorf(op, "%d half-edges is not a multiple of 3", len(hs))
	}
	boundary := 0
	canonical := make(map[Halfedge]int, len(hs)/2)
	for e, h := range hs {
		if h.Face != e/3 {
			return kernel.GeometryErrorf(op, "half-edge %d has face %d, want %d", e, h.Face, e/3)
		}
		if h.StartVert < 0 || h.StartVert >= t.numVert || h.EndVert < 0 || h.EndVert >= t.numVert {
			return kernel.GeometryErrorf(op, "half-edge %d (%v) has a vertex out of range [0, %d)", e, h, t.numVert)
		}
		if h.StartVert == h.EndVert {
			return kernel.GeometryErrorf(op, "half-edge %d is a loop at vertex %d", e, h.StartVert)
		}
		if hs[Next(e)].StartVert != h.EndVert {
			return kernel.GeometryErrorf(op, "half-edge %d ends at %d but its successor starts at %d",
				e, h.EndVert, hs[Next(e)].StartVert)
		}
		if h.IsBoundary() {
			boundary++
		} else {
			p := h.PairedHalfedge
			if p < 0 || p >= len(hs) || p == e {
				return kernel.GeometryErrorf(op, "half-edge %d has invalid pair %d", e, p)
			}
			if hs[p].PairedHalfedge != e {
				return kernel.GeometryErrorf(op, "pairing is not an involution: %d -> %d -> %d", e, p, hs[p].PairedHalfedge)
			}
			if hs[p].StartVert != h.EndVert || hs[p].EndVert != h.StartVert {
				return kernel.GeometryErrorf(op, "paired half-edges %d (%d->%d) and %d (%d->%d) are not opposite",
					e, h.StartVert, h.EndVert, p, hs[p].StartVert, hs[p].EndVert)
			}
		}
		if h.IsBoundary() || h.IsForward() {
			k := h.key()
			if prev, dup := canonical[k]; dup {
				return kernel.GeometryErrorf(op, "edge (%d, %d) has two representatives, half-edges %d and %d",
					k.StartVert, k.EndVert, prev, e)
			}
			canonical[k] = e
		}
	}
	if boundary != t.numBoundary {
		return kernel.GeometryErrorf(op, "counted %d boundary half-edges, recorded %d", boundary, t.numBoundary)
	}
	return nil
}
