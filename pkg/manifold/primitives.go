package manifold

import (
	"math"

	"github.com/chazu/meshkernel/pkg/geom"
	"github.com/chazu/meshkernel/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// unitCubeTris are the 12 outward triangles over the corners of [0,1]^3,
// indexed bottom ring 0..3 then top ring 4..7.
var unitCubeTris = [][3]int{
	{0, 2, 1}, {0, 3, 2},
	{4, 5, 6}, {4, 6, 7},
	{0, 1, 5}, {0, 5, 4},
	{3, 7, 6}, {3, 6, 2},
	{0, 4, 7}, {0, 7, 3},
	{1, 2, 6}, {1, 6, 5},
}

var unitCubeVerts = []v3.Vec{
	{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
}

// Cube returns a box with the given edge lengths, spanning [0, size] or,
// when center is set, [-size/2, size/2]. Sizes must be positive and finite.
func Cube(size v3.Vec, center bool, params kernel.ExecutionParams) (*Manifold, error) {
	const op = "manifold.Cube"
	if !positive(size.X) || !positive(size.Y) || !positive(size.Z) {
		return nil, kernel.UserErrorf(op, "size %v must be positive and finite", size)
	}
	offset := v3.Vec{}
	if center {
		offset = size.DivScalar(2)
	}
	pos := make([]v3.Vec, len(unitCubeVerts))
	for i, c := range unitCubeVerts {
		pos[i] = c.Mul(size).Sub(offset)
	}
	return New(&kernel.Mesh{VertPos: pos, TriVerts: unitCubeTris}, params)
}

// Cylinder returns a closed prism with segments sides approximating a
// cylinder around the Z axis, spanning [0, height] or, when center is set,
// [-height/2, height/2]. segments must be at least 3.
func Cylinder(height, radius float64, segments int, center bool, params kernel.ExecutionParams) (*Manifold, error) {
	const op = "manifold.Cylinder"
	if !positive(height) || !positive(radius) {
		return nil, kernel.UserErrorf(op, "height %g and radius %g must be positive and finite", height, radius)
	}
	if segments < 3 {
		return nil, kernel.UserErrorf(op, "need at least 3 segments, got %d", segments)
	}
	z0 := 0.0
	if center {
		z0 = -height / 2
	}
	z1 := z0 + height

	n := segments
	pos := make([]v3.Vec, 2*n+2)
	for i := 0; i < n; i++ {
		deg := 360 * float64(i) / float64(n)
		x, y := radius*geom.CosDegrees(deg), radius*geom.SinDegrees(deg)
		pos[i] = v3.Vec{X: x, Y: y, Z: z0}
		pos[n+i] = v3.Vec{X: x, Y: y, Z: z1}
	}
	bottom, top := 2*n, 2*n+1
	pos[bottom] = v3.Vec{Z: z0}
	pos[top] = v3.Vec{Z: z1}

	tris := make([][3]int, 0, 4*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		tris = append(tris,
			[3]int{i, j, n + j},
			[3]int{i, n + j, n + i},
			[3]int{bottom, j, i},
			[3]int{top, n + i, n + j},
		)
	}
	return New(&kernel.Mesh{VertPos: pos, TriVerts: tris}, params)
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
