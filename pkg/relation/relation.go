// Package relation tracks where each triangle of a derived mesh came from,
// so attributes of the original surface (normals, colors, UVs, material)
// can be recovered after triangles are split and merged.
//
// Each output triangle carries a BaryRef naming its source mesh and source
// triangle, and for each of its corners either the original corner it
// still sits on or an index into a shared table of barycentric
// coordinates. The table is append-only: indices already handed out stay
// valid, and many triangles may point at the same entry.
package relation

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/chazu/meshkernel/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var meshIDs atomic.Int64

// NextMeshID returns a mesh id not returned before in this process.
func NextMeshID() int {
	return int(meshIDs.Add(1) - 1)
}

type baryKind uint8

const (
	kindInvalid baryKind = iota
	kindOriginal
	kindInterpolated
)

// VertBary says where one corner of an output triangle lies on its source
// triangle. It is either Original, sitting exactly on a source corner, or
// Interpolated, pointing into MeshRelation.Barycentric. The zero value is
// neither and fails validation.
type VertBary struct {
	kind  baryKind
	index int
}

// Original returns a VertBary on corner 0, 1 or 2 of the source triangle.
func Original(corner int) VertBary {
	return VertBary{kind: kindOriginal, index: corner}
}

// Interpolated returns a VertBary reading its coordinates from table entry
// idx.
func Interpolated(idx int) VertBary {
	return VertBary{kind: kindInterpolated, index: idx}
}

// FromSentinel decodes the packed integer form: -3, -2, -1 are corners 0,
// 1, 2 and non-negative values are table indices. Values below -3 decode to
// an invalid VertBary.
func FromSentinel(s int) VertBary {
	switch {
	case s >= 0:
		return Interpolated(s)
	case s >= -3:
		return Original(s + 3)
	default:
		return VertBary{index: s}
	}
}

// Sentinel encodes b in the packed integer form accepted by FromSentinel.
func (b VertBary) Sentinel() int {
	if b.kind == kindOriginal {
		return b.index - 3
	}
	return b.index
}

// Corner returns the source corner and true when b is Original.
func (b VertBary) Corner() (int, bool) {
	return b.index, b.kind == kindOriginal
}

// TableIndex returns the table index and true when b is Interpolated.
func (b VertBary) TableIndex() (int, bool) {
	return b.index, b.kind == kindInterpolated
}

func (b VertBary) String() string {
	switch b.kind {
	case kindOriginal:
		return fmt.Sprintf("corner(%d)", b.index)
	case kindInterpolated:
		return fmt.Sprintf("bary[%d]", b.index)
	default:
		return fmt.Sprintf("invalid(%d)", b.index)
	}
}

// BaryRef ties an output triangle to triangle Tri of mesh MeshID.
type BaryRef struct {
	MeshID   int
	Tri      int
	VertBary [3]VertBary
}

// IdentityRef returns the BaryRef of a triangle that is its own source.
func IdentityRef(meshID, tri int) BaryRef {
	return BaryRef{
		MeshID:   meshID,
		Tri:      tri,
		VertBary: [3]VertBary{Original(0), Original(1), Original(2)},
	}
}

func (r BaryRef) String() string {
	return fmt.Sprintf("meshID: %d, tri: %d, uvw idx: %d, %d, %d",
		r.MeshID, r.Tri, r.VertBary[0].Sentinel(), r.VertBary[1].Sentinel(), r.VertBary[2].Sentinel())
}

// MeshRelation is the provenance of every triangle of one mesh. TriBary is
// indexed by output triangle. Writers need exclusive access; readers may
// share.
type MeshRelation struct {
	Barycentric []v3.Vec
	TriBary     []BaryRef
}

// Identity returns the relation of a freshly created mesh: every triangle
// is its own source.
func Identity(meshID, numTri int) MeshRelation {
	r := MeshRelation{TriBary: make([]BaryRef, numTri)}
	for t := range r.TriBary {
		r.TriBary[t] = IdentityRef(meshID, t)
	}
	return r
}

// Clone returns a deep copy.
func (r *MeshRelation) Clone() MeshRelation {
	return MeshRelation{
		Barycentric: append([]v3.Vec(nil), r.Barycentric...),
		TriBary:     append([]BaryRef(nil), r.TriBary...),
	}
}

// AddBarycentric appends uvw to the shared table and returns its index.
// uvw must be finite and sum to 1 within kernel tolerance.
func (r *MeshRelation) AddBarycentric(uvw v3.Vec) (int, error) {
	if err := checkBarycentric("relation.AddBarycentric", uvw); err != nil {
		return 0, err
	}
	r.Barycentric = append(r.Barycentric, uvw)
	return len(r.Barycentric) - 1, nil
}

// AddTriangle appends the provenance of the next output triangle and
// returns its index.
func (r *MeshRelation) AddTriangle(ref BaryRef) (int, error) {
	if err := r.checkRef("relation.AddTriangle", len(r.TriBary), ref); err != nil {
		return 0, err
	}
	r.TriBary = append(r.TriBary, ref)
	return len(r.TriBary) - 1, nil
}

// UVW returns the barycentric coordinates of corner slot of output
// triangle tri on its source triangle. The result always sums to 1.
//
// An out-of-range tri or slot, an invalid VertBary, or a table index past
// the end can only come from a bug in whatever filled the relation, and is
// reported as KindGeometry.
func (r *MeshRelation) UVW(tri, slot int) (v3.Vec, error) {
	const op = "relation.UVW"
	if tri < 0 || tri >= len(r.TriBary) {
		return v3.Vec{}, kernel.GeometryErrorf(op, "triangle %d out of range [0, %d)", tri, len(r.TriBary))
	}
	if slot < 0 || slot > 2 {
		return v3.Vec{}, kernel.GeometryErrorf(op, "vertex slot %d out of range [0, 3)", slot)
	}
	b := r.TriBary[tri].VertBary[slot]
	switch b.kind {
	case kindOriginal:
		switch b.index {
		case 0:
			return v3.Vec{X: 1}, nil
		case 1:
			return v3.Vec{Y: 1}, nil
		case 2:
			return v3.Vec{Z: 1}, nil
		}
		return v3.Vec{}, kernel.GeometryErrorf(op, "triangle %d slot %d names corner %d", tri, slot, b.index)
	case kindInterpolated:
		if b.index < 0 || b.index >= len(r.Barycentric) {
			return v3.Vec{}, kernel.GeometryErrorf(op, "triangle %d slot %d names table entry %d, table has %d",
				tri, slot, b.index, len(r.Barycentric))
		}
		uvw := r.Barycentric[b.index]
		if err := checkBarycentric(op, uvw); err != nil {
			return v3.Vec{}, err
		}
		return uvw, nil
	default:
		return v3.Vec{}, kernel.GeometryErrorf(op, "triangle %d slot %d has %v", tri, slot, b)
	}
}

// Interpolate blends per-corner values of the source triangle at corner
// slot of output triangle tri. corners holds the attribute (a normal, a
// color, a UV in X/Y) at source corners 0, 1 and 2.
func (r *MeshRelation) Interpolate(tri, slot int, corners [3]v3.Vec) (v3.Vec, error) {
	uvw, err := r.UVW(tri, slot)
	if err != nil {
		return v3.Vec{}, err
	}
	return corners[0].MulScalar(uvw.X).
		Add(corners[1].MulScalar(uvw.Y)).
		Add(corners[2].MulScalar(uvw.Z)), nil
}

// Validate checks every reference and every table entry.
func (r *MeshRelation) Validate() error {
	const op = "relation.Validate"
	for i, uvw := range r.Barycentric {
		if err := checkBarycentric(op, uvw); err != nil {
			return fmt.Errorf("table entry %d: %w", i, err)
		}
	}
	for t, ref := range r.TriBary {
		if err := r.checkRef(op, t, ref); err != nil {
			return err
		}
	}
	return nil
}

func (r *MeshRelation) checkRef(op string, t int, ref BaryRef) error {
	if ref.MeshID < 0 {
		return kernel.GeometryErrorf(op, "triangle %d has negative mesh id %d", t, ref.MeshID)
	}
	if ref.Tri < 0 {
		return kernel.GeometryErrorf(op, "triangle %d has negative source triangle %d", t, ref.Tri)
	}
	for slot, b := range ref.VertBary {
		switch b.kind {
		case kindOriginal:
			if b.index < 0 || b.index > 2 {
				return kernel.GeometryErrorf(op, "triangle %d slot %d names corner %d", t, slot, b.index)
			}
		case kindInterpolated:
			if b.index < 0 || b.index >= len(r.Barycentric) {
				return kernel.GeometryErrorf(op, "triangle %d slot %d names table entry %d, table has %d",
					t, slot, b.index, len(r.Barycentric))
			}
		default:
			return kernel.GeometryErrorf(op, "triangle %d slot %d has %v", t, slot, b)
		}
	}
	return nil
}

func checkBarycentric(op string, uvw v3.Vec) error {
	for _, c := range [3]float64{uvw.X, uvw.Y, uvw.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return kernel.GeometryErrorf(op, "non-finite barycentric %v", uvw)
		}
	}
	if sum := uvw.X + uvw.Y + uvw.Z; math.Abs(sum-1) > barycentricTolerance {
		return kernel.GeometryErrorf(op, "barycentric %v sums to %g, want 1", uvw, sum)
	}
	return nil
}

const barycentricTolerance = 1e-5
