package manifold

import (
	"math"
	"testing"

	"github.com/chazu/meshkernel/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// totals integrates the curvature densities back over the vertex areas.
func totals(c Curvature) (gaussian, mean float64) {
	for v, a := range c.VertArea {
		gaussian += c.VertGaussianCurvature[v] * a
		mean += c.VertMeanCurvature[v] * a
	}
	return gaussian, mean
}

func TestCubeCurvature(t *testing.T) {
	m := mustCube(t, v3.Vec{X: 1, Y: 1, Z: 1}, true)
	c, err := m.GetCurvature()
	require.NoError(t, err)
	require.Len(t, c.VertGaussianCurvature, 8)

	chi := m.Topology().EulerCharacteristic()
	gaussian, mean := totals(c)
	assert.InDelta(t, 2*math.Pi*float64(chi), gaussian, 1e-9, "Gauss-Bonnet")
	// Twelve edges of length 1 with a right-angle dihedral; the face
	// diagonals are flat.
	assert.InDelta(t, 3*math.Pi, mean, 1e-9)

	for v, a := range c.VertArea {
		assert.InDelta(t, math.Pi/2, c.VertGaussianCurvature[v]*a, 1e-9, "corner %d", v)
	}
	assert.Greater(t, c.MinGaussianCurvature, 0.0)
	assert.GreaterOrEqual(t, c.MinMeanCurvature, 0.0)
	assert.GreaterOrEqual(t, c.MaxMeanCurvature, c.MinMeanCurvature)
}

func TestCurvatureScales(t *testing.T) {
	m := mustCube(t, v3.Vec{X: 2, Y: 2, Z: 2}, false)
	c, err := m.GetCurvature()
	require.NoError(t, err)
	gaussian, mean := totals(c)
	assert.InDelta(t, 4*math.Pi, gaussian, 1e-9, "total Gaussian curvature is scale invariant")
	assert.InDelta(t, 6*math.Pi, mean, 1e-9, "total mean curvature grows with edge length")
}

func TestCylinderCurvature(t *testing.T) {
	m, err := Cylinder(4, 1, 32, true, checked)
	require.NoError(t, err)
	c, err := m.GetCurvature()
	require.NoError(t, err)

	gaussian, _ := totals(c)
	assert.InDelta(t, 4*math.Pi, gaussian, 1e-9)
	assert.GreaterOrEqual(t, c.MinMeanCurvature, -1e-12, "convex")
}

func TestMirroredCurvatureStaysConvex(t *testing.T) {
	m := mustCube(t, v3.Vec{X: 1, Y: 1, Z: 1}, true).Scale(v3.Vec{X: -1, Y: 1, Z: 1})
	c, err := m.GetCurvature()
	require.NoError(t, err)
	_, mean := totals(c)
	assert.InDelta(t, 3*math.Pi, mean, 1e-9)
}

func TestCurvatureNeedsClosedSurface(t *testing.T) {
	mesh := mustCube(t, v3.Vec{X: 1, Y: 1, Z: 1}, true).GetMesh()
	mesh.TriVerts = mesh.TriVerts[:10]
	open, err := NewOpen(mesh, kernel.ExecutionParams{SuppressErrors: true})
	require.NoError(t, err)

	_, err = open.GetCurvature()
	assert.ErrorIs(t, err, kernel.ErrTopology)
}

func TestSharpenEdges(t *testing.T) {
	cube := mustCube(t, v3.Vec{X: 1, Y: 1, Z: 1}, true)
	sharp := cube.SharpenEdges(60, 0)
	assert.Len(t, sharp, 24, "both halves of the 12 cube edges")
	require.NoError(t, cube.CheckSmoothness(sharp))
	for _, s := range sharp {
		assert.InDelta(t, math.Pi/2, cube.dihedral(s.Halfedge), 1e-12)
	}
	assert.Empty(t, cube.SharpenEdges(100, 0))

	cyl, err := Cylinder(4, 1, 32, true, checked)
	require.NoError(t, err)
	assert.Len(t, cyl.SharpenEdges(45, 0.5), 2*2*32, "the two rims")
	assert.Len(t, cyl.SharpenEdges(10, 0.5), 2*3*32, "rims and the vertical side edges")
}

func TestCheckSmoothness(t *testing.T) {
	cube := mustCube(t, v3.Vec{X: 1, Y: 1, Z: 1}, true)
	require.NoError(t, cube.CheckSmoothness(nil))
	require.NoError(t, cube.CheckSmoothness([]Smoothness{{Halfedge: 0, Smoothness: 0}, {Halfedge: 35, Smoothness: 1}}))

	for _, s := range []Smoothness{
		{Halfedge: 36},
		{Halfedge: -1},
		{Halfedge: 3, Smoothness: 1.5},
		{Halfedge: 3, Smoothness: -0.1},
		{Halfedge: 3, Smoothness: math.NaN()},
	} {
		err := cube.CheckSmoothness([]Smoothness{s})
		assert.ErrorIs(t, err, kernel.ErrUserInput, "%+v", s)
	}
}
