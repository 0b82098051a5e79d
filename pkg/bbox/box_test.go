package bbox

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chazu/meshkernel/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBox(r *rand.Rand) Box {
	p := v3.Vec{X: r.Float64()*200 - 100, Y: r.Float64()*200 - 100, Z: r.Float64()*200 - 100}
	q := v3.Vec{X: r.Float64()*200 - 100, Y: r.Float64()*200 - 100, Z: r.Float64()*200 - 100}
	return FromPoints(p, q)
}

func TestEmptyIsUnionIdentity(t *testing.T) {
	e := Empty()
	assert.True(t, e.IsEmpty())
	assert.False(t, e.IsFinite())
	assert.True(t, math.IsInf(e.Scale(), 1))

	b := FromPoints(v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: -1, Y: 5, Z: 0})
	assert.Equal(t, b, e.Union(b))
	assert.Equal(t, b, b.Union(e))
	assert.Equal(t, e, e.Union(e))

	assert.False(t, e.DoesOverlap(b))
	assert.False(t, b.DoesOverlap(e))
	assert.False(t, e.ContainsPoint(v3.Vec{}))
	assert.True(t, b.Contains(e))
}

func TestZeroValueIsOriginPoint(t *testing.T) {
	var b Box
	assert.False(t, b.IsEmpty())
	assert.True(t, b.ContainsPoint(v3.Vec{}))
	assert.Equal(t, v3.Vec{}, b.Size())
}

func TestFromVertices(t *testing.T) {
	b := FromVertices([]v3.Vec{
		{X: 10.1, Y: -20.2, Z: 3.3},
		{X: 1.1, Y: 2.2, Z: 4.3},
		{X: 15.1, Y: 21.2, Z: 0.3},
	})
	assert.Equal(t, v3.Vec{X: 1.1, Y: -20.2, Z: 0.3}, b.Min)
	assert.Equal(t, v3.Vec{X: 15.1, Y: 21.2, Z: 4.3}, b.Max)
	assert.True(t, FromVertices(nil).IsEmpty())
}

func TestSizeCenterScale(t *testing.T) {
	b := FromPoints(v3.Vec{X: 0, Y: -4, Z: 2}, v3.Vec{X: 10, Y: 20, Z: 30})
	assert.Equal(t, v3.Vec{X: 10, Y: 24, Z: 28}, b.Size())
	assert.Equal(t, v3.Vec{X: 5, Y: 8, Z: 16}, b.Center())
	assert.Equal(t, 30.0, b.Scale())

	b = FromPoints(v3.Vec{X: -50, Y: 1, Z: 1}, v3.Vec{X: 2, Y: 2, Z: 2})
	assert.Equal(t, 50.0, b.Scale())
}

func TestContains(t *testing.T) {
	outer := FromPoints(v3.Vec{}, v3.Vec{X: 10, Y: 10, Z: 10})
	tests := []struct {
		name  string
		inner Box
		want  bool
	}{
		{"itself", outer, true},
		{"strict inside", FromPoints(v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{X: 2, Y: 2, Z: 2}), true},
		{"sharing a face", FromPoints(v3.Vec{X: 5}, v3.Vec{X: 10, Y: 10, Z: 10}), true},
		{"poking out", FromPoints(v3.Vec{X: 5}, v3.Vec{X: 11, Y: 1, Z: 1}), false},
		{"disjoint", FromPoints(v3.Vec{X: 20}, v3.Vec{X: 21, Y: 1, Z: 1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outer.Contains(tt.inner))
		})
	}
}

func TestExtend(t *testing.T) {
	b := Empty()
	b.Extend(v3.Vec{X: 1, Y: 2, Z: 3})
	assert.Equal(t, FromPoints(v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}), b)
	b.Extend(v3.Vec{X: 4, Y: 5, Z: 6})
	b.Extend(v3.Vec{X: -1, Y: 0, Z: 2})
	assert.Equal(t, v3.Vec{X: -1, Y: 0, Z: 2}, b.Min)
	assert.Equal(t, v3.Vec{X: 4, Y: 5, Z: 6}, b.Max)
}

func TestExtendFromZeroValueKeepsOrigin(t *testing.T) {
	var zero Box
	fresh := Empty()
	for _, p := range []v3.Vec{{X: 2, Y: 3, Z: 4}, {X: 5, Y: 6, Z: 7}} {
		zero.Extend(p)
		fresh.Extend(p)
	}
	assert.Equal(t, v3.Vec{}, zero.Min)
	assert.Equal(t, v3.Vec{X: 2, Y: 3, Z: 4}, fresh.Min)
	assert.Equal(t, fresh.Max, zero.Max)
}

func TestUnionCommutativeAssociative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a, b, c := randomBox(r), randomBox(r), randomBox(r)
		require.Equal(t, a.Union(b), b.Union(a))
		require.Equal(t, a.Union(b).Union(c), a.Union(b.Union(c)))

		u := a.Union(b)
		require.True(t, u.Contains(a))
		require.True(t, u.Contains(b))
	}
}

func TestUnionOrderIndependentOverPoints(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	pts := make([]v3.Vec, 64)
	for i := range pts {
		pts[i] = v3.Vec{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64()}
	}
	forward := FromVertices(pts)

	backward := Empty()
	for i := len(pts) - 1; i >= 0; i-- {
		backward.Extend(pts[i])
	}
	assert.Equal(t, forward, backward)

	// Pairwise tree reduction, as a bottom-up spatial index would build it.
	boxes := make([]Box, len(pts))
	for i, p := range pts {
		boxes[i] = FromPoints(p, p)
	}
	for len(boxes) > 1 {
		next := boxes[:0:0]
		for i := 0; i < len(boxes); i += 2 {
			next = append(next, boxes[i].Union(boxes[i+1]))
		}
		boxes = next
	}
	assert.Equal(t, forward, boxes[0])
}

func TestDoesOverlap(t *testing.T) {
	unit := FromPoints(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	tests := []struct {
		name  string
		other Box
		want  bool
	}{
		{"identical", unit, true},
		{"partial on X", FromPoints(v3.Vec{X: 0.5}, v3.Vec{X: 2, Y: 1, Z: 1}), true},
		{"touching face", FromPoints(v3.Vec{X: 1}, v3.Vec{X: 2, Y: 1, Z: 1}), true},
		{"touching corner", FromPoints(v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{X: 2, Y: 2, Z: 2}), true},
		{"contained", FromPoints(v3.Vec{X: 0.2, Y: 0.2, Z: 0.2}, v3.Vec{X: 0.3, Y: 0.3, Z: 0.3}), true},
		{"separated on X", FromPoints(v3.Vec{X: 2}, v3.Vec{X: 3, Y: 1, Z: 1}), false},
		{"separated on Y", FromPoints(v3.Vec{Y: -3}, v3.Vec{X: 1, Y: -2, Z: 1}), false},
		{"separated on Z", FromPoints(v3.Vec{Z: 1.01}, v3.Vec{X: 1, Y: 1, Z: 2}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unit.DoesOverlap(tt.other))
			assert.Equal(t, tt.want, tt.other.DoesOverlap(unit), "symmetry")
		})
	}
}

func TestDoesOverlapSymmetricRandom(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		a, b := randomBox(r), randomBox(r)
		require.Equal(t, a.DoesOverlap(b), b.DoesOverlap(a))
		require.True(t, a.DoesOverlap(a))
	}
}

func TestDoesOverlapPointIgnoresZ(t *testing.T) {
	b := FromPoints(v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2})
	assert.True(t, b.DoesOverlapPoint(v3.Vec{X: 1, Y: 1, Z: 100}))
	assert.True(t, b.DoesOverlapPoint(v3.Vec{X: 2, Y: 0, Z: -100}))
	assert.False(t, b.DoesOverlapPoint(v3.Vec{X: 3, Y: 1, Z: 1}))
	assert.False(t, b.DoesOverlapPoint(v3.Vec{X: 1, Y: -0.1, Z: 1}))
}

func TestAddMul(t *testing.T) {
	b := FromPoints(v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 4, Y: 5, Z: 6})
	assert.Equal(t, FromPoints(v3.Vec{X: 2, Y: 2, Z: 2}, v3.Vec{X: 5, Y: 5, Z: 5}), b.Add(v3.Vec{X: 1, Z: -1}))
	assert.Equal(t, FromPoints(v3.Vec{X: 2, Y: 2, Z: 3}, v3.Vec{X: 8, Y: 5, Z: 6}), b.Mul(v3.Vec{X: 2, Y: 1, Z: 1}))

	m := b.Mul(v3.Vec{X: -1, Y: 1, Z: 1})
	assert.False(t, m.IsEmpty())
	assert.Equal(t, v3.Vec{X: -4, Y: 2, Z: 3}, m.Min)
	assert.Equal(t, v3.Vec{X: -1, Y: 5, Z: 6}, m.Max)

	assert.True(t, Empty().Add(v3.Vec{X: 1}).IsEmpty())
	assert.True(t, Empty().Mul(v3.Vec{}).IsEmpty())
}

func TestTransformAxisAlignedRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		b := randomBox(r)
		for _, angles := range [][3]float64{
			{90, 0, 0}, {0, 180, 0}, {0, 0, 270}, {90, 90, 0}, {-90, 180, 90},
		} {
			rot := geom.Translation(v3.Vec{X: 3, Y: -7, Z: 0.5}).
				Mul(geom.Rotation(angles[0], angles[1], angles[2])).
				Mul(geom.Scaling(v3.Vec{X: 2, Y: 0.5, Z: 4}))
			inv, ok := rot.Inverse()
			require.True(t, ok)

			got := b.Transform(rot).Transform(inv)
			require.InDelta(t, b.Min.X, got.Min.X, 1e-9)
			require.InDelta(t, b.Min.Y, got.Min.Y, 1e-9)
			require.InDelta(t, b.Min.Z, got.Min.Z, 1e-9)
			require.InDelta(t, b.Max.X, got.Max.X, 1e-9)
			require.InDelta(t, b.Max.Y, got.Max.Y, 1e-9)
			require.InDelta(t, b.Max.Z, got.Max.Z, 1e-9)
		}
	}
}

func TestTransformRotationBoundsPoints(t *testing.T) {
	pts := []v3.Vec{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 0, Z: 1}, {X: 2, Y: -2, Z: -2}}
	rot := geom.Rotation(0, 90, 90)
	got := FromVertices(pts).Transform(rot)

	want := Empty()
	for _, p := range pts {
		want.Extend(rot.Apply(p))
	}
	assert.Equal(t, want, got)
}

func TestTransformEmptyStaysEmpty(t *testing.T) {
	got := Empty().Transform(geom.Scaling(v3.Vec{}))
	assert.True(t, got.IsEmpty())
	assert.Equal(t, Empty(), got)
}

func TestIsFinite(t *testing.T) {
	assert.True(t, FromPoints(v3.Vec{}, v3.Vec{X: 1}).IsFinite())
	assert.False(t, Box{Max: v3.Vec{X: math.Inf(1)}}.IsFinite())
	assert.False(t, Box{Min: v3.Vec{Y: math.NaN()}}.IsFinite())
}

func TestBox3RoundTrip(t *testing.T) {
	b := FromPoints(v3.Vec{X: -1, Y: -2, Z: -3}, v3.Vec{X: 1, Y: 2, Z: 3})
	assert.Equal(t, b, FromBox3(b.Box3()))
	assert.Equal(t, b, FromBox3(sdf.Box3{Min: b.Min, Max: b.Max}))
}

func TestString(t *testing.T) {
	b := FromPoints(v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	assert.Equal(t, "min: -0.5, -0.5, -0.5, max: 0.5, 0.5, 0.5", b.String())
}
