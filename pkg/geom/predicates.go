// Package geom holds the numerically robust predicates and the affine
// algebra the rest of the kernel builds on. Everything here is a pure
// function over value types: no allocation, no hidden state, safe to call
// from any number of goroutines.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerance is the default relative tolerance for orientation decisions.
const Tolerance = 1e-5

// Signum returns -1, 0 or +1 according to the sign of x. NaN maps to 0.
func Signum(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Orientation reports which side of the directed line p0->p1 the point p2
// lies on: +1 for counter-clockwise, -1 for clockwise, 0 when the three
// points are collinear within tol.
//
// The tolerance is relative. The triangle is degenerate when
// area² <= tol² * max(|p1-p0|², |p2-p0|²), so the answer does not change
// when all three points are scaled or translated together.
func Orientation(p0, p1, p2 v2.Vec, tol float64) int {
	ax, ay := p1.X-p0.X, p1.Y-p0.Y
	bx, by := p2.X-p0.X, p2.Y-p0.Y
	area := ax*by - ay*bx
	base2 := math.Max(ax*ax+ay*ay, bx*bx+by*by)
	if area*area <= base2*tol*tol {
		return 0
	}
	if area > 0 {
		return 1
	}
	return -1
}

// DominantAxis returns the index (0, 1 or 2) of the component of n with the
// largest magnitude. Ties resolve toward the lower index.
func DominantAxis(n v3.Vec) int {
	a := n.Abs()
	switch {
	case a.X >= a.Y && a.X >= a.Z:
		return 0
	case a.Y >= a.Z:
		return 1
	default:
		return 2
	}
}

// Project drops the given axis from p, keeping a right-handed order of the
// remaining two so that projected winding matches the winding seen from
// the positive side of that axis.
func Project(p v3.Vec, axis int) v2.Vec {
	switch axis {
	case 0:
		return v2.Vec{X: p.Y, Y: p.Z}
	case 1:
		return v2.Vec{X: p.Z, Y: p.X}
	default:
		return v2.Vec{X: p.X, Y: p.Y}
	}
}

// Degenerate3D reports whether the 3D triangle p0, p1, p2 is degenerate
// within tol. The triangle is projected onto the coordinate plane most
// perpendicular to its normal and handed to Orientation, so the same
// relative tolerance governs 2D and 3D decisions.
func Degenerate3D(p0, p1, p2 v3.Vec, tol float64) bool {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	axis := DominantAxis(n)
	return Orientation(Project(p0, axis), Project(p1, axis), Project(p2, axis), tol) == 0
}
