package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Affine is a 3D affine map stored as four columns: the images of the X, Y
// and Z unit vectors followed by the translation. A point p maps to
// a[0]*p.X + a[1]*p.Y + a[2]*p.Z + a[3].
type Affine [4]v3.Vec

// Identity returns the identity map.
func Identity() Affine {
	return Affine{
		{X: 1},
		{Y: 1},
		{Z: 1},
		{},
	}
}

// Translation returns the map p -> p + v.
func Translation(v v3.Vec) Affine {
	a := Identity()
	a[3] = v
	return a
}

// Scaling returns the componentwise scaling p -> p * s.
func Scaling(s v3.Vec) Affine {
	return Affine{
		{X: s.X},
		{Y: s.Y},
		{Z: s.Z},
		{},
	}
}

// Rotation returns a rotation by the given Euler angles in degrees, applied
// about X first, then Y, then Z. Angles that are multiples of 90 produce a
// matrix whose entries are exactly -1, 0 or 1.
func Rotation(xDeg, yDeg, zDeg float64) Affine {
	sx, cx := SinDegrees(xDeg), CosDegrees(xDeg)
	sy, cy := SinDegrees(yDeg), CosDegrees(yDeg)
	sz, cz := SinDegrees(zDeg), CosDegrees(zDeg)
	rx := Affine{
		{X: 1},
		{Y: cx, Z: sx},
		{Y: -sx, Z: cx},
		{},
	}
	ry := Affine{
		{X: cy, Z: -sy},
		{Y: 1},
		{X: sy, Z: cy},
		{},
	}
	rz := Affine{
		{X: cz, Y: sz},
		{X: -sz, Y: cz},
		{Z: 1},
		{},
	}
	return rz.Mul(ry).Mul(rx)
}

// RotateUp returns the rotation that turns up onto +Z along the shortest
// path. up need not be normalized but must be non-zero.
func RotateUp(up v3.Vec) Affine {
	up = up.Normalize()
	z := v3.Vec{Z: 1}
	axis := up.Cross(z)
	s := axis.Length()
	angle := math.Asin(math.Min(s, 1))
	if up.Dot(z) < 0 {
		angle = math.Pi - angle
	}
	if s == 0 {
		if angle == 0 {
			return Identity()
		}
		// up is -Z: any horizontal axis works.
		axis = v3.Vec{X: 1}
	} else {
		axis = axis.DivScalar(s)
	}
	return axisAngle(axis, angle)
}

// axisAngle builds a rotation about the unit vector k by angle radians.
func axisAngle(k v3.Vec, angle float64) Affine {
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return Affine{
		{X: t*k.X*k.X + c, Y: t*k.X*k.Y + s*k.Z, Z: t*k.X*k.Z - s*k.Y},
		{X: t*k.X*k.Y - s*k.Z, Y: t*k.Y*k.Y + c, Z: t*k.Y*k.Z + s*k.X},
		{X: t*k.X*k.Z + s*k.Y, Y: t*k.Y*k.Z - s*k.X, Z: t*k.Z*k.Z + c},
		{},
	}
}

// Apply maps the point p.
func (a Affine) Apply(p v3.Vec) v3.Vec {
	return a.ApplyVector(p).Add(a[3])
}

// ApplyVector maps the direction v, ignoring the translation column.
func (a Affine) ApplyVector(v v3.Vec) v3.Vec {
	return a[0].MulScalar(v.X).Add(a[1].MulScalar(v.Y)).Add(a[2].MulScalar(v.Z))
}

// Mul returns the composition a∘b: b is applied first.
func (a Affine) Mul(b Affine) Affine {
	return Affine{
		a.ApplyVector(b[0]),
		a.ApplyVector(b[1]),
		a.ApplyVector(b[2]),
		a.Apply(b[3]),
	}
}

// Determinant of the linear part. Negative means the map mirrors, which
// reverses triangle winding.
func (a Affine) Determinant() float64 {
	return a[0].Dot(a[1].Cross(a[2]))
}

// Inverse returns the inverse map. ok is false when the linear part is
// singular, in which case the returned value is meaningless.
func (a Affine) Inverse() (inv Affine, ok bool) {
	det := a.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Affine{}, false
	}
	// Rows of the inverse are the cross products of the columns.
	r0 := a[1].Cross(a[2]).DivScalar(det)
	r1 := a[2].Cross(a[0]).DivScalar(det)
	r2 := a[0].Cross(a[1]).DivScalar(det)
	inv = Affine{
		{X: r0.X, Y: r1.X, Z: r2.X},
		{X: r0.Y, Y: r1.Y, Z: r2.Y},
		{X: r0.Z, Y: r1.Z, Z: r2.Z},
		{},
	}
	inv[3] = inv.ApplyVector(a[3]).Neg()
	return inv, true
}

// NormalMatrix returns the inverse-transpose of the linear part, the map
// that keeps surface normals perpendicular to transformed surfaces. The
// result is not normalized. ok is false for singular maps.
func (a Affine) NormalMatrix() (Affine, bool) {
	inv, ok := a.Inverse()
	if !ok {
		return Affine{}, false
	}
	return Affine{
		{X: inv[0].X, Y: inv[1].X, Z: inv[2].X},
		{X: inv[0].Y, Y: inv[1].Y, Z: inv[2].Y},
		{X: inv[0].Z, Y: inv[1].Z, Z: inv[2].Z},
		{},
	}, true
}

// IsAxisAligned reports whether every column of the linear part lies on a
// coordinate axis, i.e. the map sends axis-aligned boxes to axis-aligned
// boxes. Box transforms never call this; it is for callers and checks.
func (a Affine) IsAxisAligned() bool {
	var seen [3]bool
	for _, c := range a[:3] {
		nonZero := 0
		axis := 0
		for i, x := range [3]float64{c.X, c.Y, c.Z} {
			if x != 0 {
				nonZero++
				axis = i
			}
		}
		if nonZero != 1 || seen[axis] {
			return false
		}
		seen[axis] = true
	}
	return true
}

// String prints the matrix row by row.
func (a Affine) String() string {
	return fmt.Sprintf("[%g %g %g %g]\n[%g %g %g %g]\n[%g %g %g %g]",
		a[0].X, a[1].X, a[2].X, a[3].X,
		a[0].Y, a[1].Y, a[2].Y, a[3].Y,
		a[0].Z, a[1].Z, a[2].Z, a[3].Z)
}
