// Package native implements kernel.Kernel on the in-process half-edge
// solid from pkg/manifold. Primitives are exact polyhedra: a box has 8
// vertices and 12 triangles, and a cylinder is a prism with the requested
// number of sides.
package native

import (
	"fmt"

	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/chazu/meshkernel/pkg/manifold"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*NativeKernel)(nil)

// NativeKernel implements kernel.Kernel with pkg/manifold solids. Every
// solid it creates is built and checked with its params.
type NativeKernel struct {
	params kernel.ExecutionParams
}

// New returns a NativeKernel using params for every construction.
func New(params kernel.ExecutionParams) *NativeKernel {
	return &NativeKernel{params: params}
}

// unwrap extracts the *manifold.Manifold behind a kernel.Solid.
func unwrap(s kernel.Solid) *manifold.Manifold {
	return s.(*manifold.Manifold)
}

// Box creates a box with the given dimensions, centered at the origin.
func (k *NativeKernel) Box(x, y, z float64) kernel.Solid {
	m, err := manifold.Cube(v3.Vec{X: x, Y: y, Z: z}, true, k.params)
	if err != nil {
		panic(fmt.Errorf("native.Box: %w", err))
	}
	return m
}

// Cylinder creates a prism with segments sides around the Z axis, centered
// at the origin.
func (k *NativeKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	m, err := manifold.Cylinder(height, radius, segments, true, k.params)
	if err != nil {
		panic(fmt.Errorf("native.Cylinder: %w", err))
	}
	return m
}

// Translate moves the solid by (x, y, z).
func (k *NativeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return unwrap(s).Translate(v3.Vec{X: x, Y: y, Z: z})
}

// Rotate rotates the solid by Euler angles (in degrees) around the X, Y, Z axes.
func (k *NativeKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return unwrap(s).Rotate(x, y, z)
}

// ToMesh returns the solid in exchange form, with one smooth normal per
// vertex. With IntermediateChecks set the solid is re-checked first.
func (k *NativeKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	m := unwrap(s)
	if k.params.IntermediateChecks {
		if err := m.Check(); err != nil {
			return nil, fmt.Errorf("native: %w", err)
		}
	}
	mesh := m.GetMesh()
	if mesh.VertexCount() != m.NumVert() {
		return nil, fmt.Errorf("native: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), m.NumVert())
	}
	return mesh, nil
}
