// Package bbox implements axis-aligned bounding box algebra, the primitive
// broad-phase queries are built from.
//
// Boxes are plain values. Every operation except Extend returns a new box,
// so a box can be shared freely between goroutines once built.
package bbox

import (
	"fmt"
	"math"

	"github.com/chazu/meshkernel/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Box is an axis-aligned box. A non-empty box has Min <= Max on every axis.
//
// The zero value is the degenerate box holding only the origin. Use Empty
// for the box that holds nothing.
type Box struct {
	Min, Max v3.Vec
}

// Empty returns the identity of Union: Min is +Inf and Max is -Inf on every
// axis. It contains no point and overlaps nothing. Unioning it with any box
// returns that box unchanged.
func Empty() Box {
	inf := math.Inf(1)
	return Box{
		Min: v3.Vec{X: inf, Y: inf, Z: inf},
		Max: v3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// FromPoints returns the smallest box containing p1 and p2.
func FromPoints(p1, p2 v3.Vec) Box {
	return Box{Min: p1.Min(p2), Max: p1.Max(p2)}
}

// FromVertices returns the smallest box containing every point in pts, or
// Empty when pts is empty.
func FromVertices(pts []v3.Vec) Box {
	b := Empty()
	for _, p := range pts {
		b.Extend(p)
	}
	return b
}

// FromBox3 converts an sdfx box.
func FromBox3(b sdf.Box3) Box {
	return Box{Min: b.Min, Max: b.Max}
}

// Box3 converts the box to its sdfx form.
func (b Box) Box3() sdf.Box3 {
	return sdf.Box3{Min: b.Min, Max: b.Max}
}

// IsEmpty reports whether the box contains no point, i.e. Min > Max on some
// axis. Empty() is empty; so is any box with NaN corners.
func (b Box) IsEmpty() bool {
	return !(b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z)
}

// Size returns the extent along each axis.
func (b Box) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() v3.Vec {
	return b.Max.Add(b.Min).MulScalar(0.5)
}

// Scale returns the largest absolute coordinate of either corner. It is
// used to pick tolerances relative to the size of the geometry. For Empty
// it is +Inf, so callers must check IsFinite first.
func (b Box) Scale() float64 {
	return b.Min.Abs().Max(b.Max.Abs()).MaxComponent()
}

// Contains reports whether o lies entirely inside b, boundary included.
// Every box contains itself, and every box contains Empty.
func (b Box) Contains(o Box) bool {
	return o.Min.X >= b.Min.X && o.Min.Y >= b.Min.Y && o.Min.Z >= b.Min.Z &&
		b.Max.X >= o.Max.X && b.Max.Y >= o.Max.Y && b.Max.Z >= o.Max.Z
}

// ContainsPoint reports whether p lies inside b, boundary included.
func (b Box) ContainsPoint(p v3.Vec) bool {
	return b.Contains(Box{Min: p, Max: p})
}

// Extend grows b in place to include p. Start from Empty, not the zero
// Box: the zero Box already holds the origin, so extending it yields a box
// that reaches back to (0, 0, 0).
//
//	b := bbox.Empty()
//	for _, p := range pts {
//		b.Extend(p)
//	}
func (b *Box) Extend(p v3.Vec) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union returns the smallest box containing both b and o. It is
// commutative and associative, with Empty as identity.
func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Add returns b shifted by v.
func (b Box) Add(v v3.Vec) Box {
	if b.IsEmpty() {
		return b
	}
	return Box{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

// Mul returns b scaled componentwise by s. Negative factors mirror the box;
// the corners are re-sorted so the result stays well-formed.
func (b Box) Mul(s v3.Vec) Box {
	if b.IsEmpty() {
		return b
	}
	return FromPoints(b.Min.Mul(s), b.Max.Mul(s))
}

// Transform maps b through the affine map a by transforming both corners
// and re-sorting them.
//
// The caller must ensure a is axis-aligned (rotations restricted to
// multiples of 90 degrees, see geom.Rotation). This is not checked: for any
// other map the result no longer bounds the transformed geometry.
func (b Box) Transform(a geom.Affine) Box {
	if b.IsEmpty() {
		return Empty()
	}
	return FromPoints(a.Apply(b.Min), a.Apply(b.Max))
}

// DoesOverlap reports whether b and o intersect, touching included.
func (b Box) DoesOverlap(o Box) bool {
	return b.Min.X <= o.Max.X && b.Min.Y <= o.Max.Y && b.Min.Z <= o.Max.Z &&
		b.Max.X >= o.Min.X && b.Max.Y >= o.Min.Y && b.Max.Z >= o.Min.Z
}

// DoesOverlapPoint reports whether p, projected along Z, falls within the
// XY extent of b, boundary included.
func (b Box) DoesOverlapPoint(p v3.Vec) bool {
	return p.X <= b.Max.X && p.X >= b.Min.X && p.Y <= b.Max.Y && p.Y >= b.Min.Y
}

// IsFinite reports whether every coordinate of both corners is finite.
func (b Box) IsFinite() bool {
	for _, x := range [6]float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return false
		}
	}
	return true
}

func (b Box) String() string {
	return fmt.Sprintf("min: %g, %g, %g, max: %g, %g, %g",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}
