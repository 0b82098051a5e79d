// Package kernel defines the shared vocabulary of the mesh kernel: the
// exchange Mesh, the execution parameters, the error kinds, and the
// abstract Solid/Kernel interfaces that primitive backends implement.
// Implementations (the native half-edge manifold, sdfx) sit behind these
// interfaces so callers can swap backends.
package kernel

import "github.com/chazu/meshkernel/pkg/bbox"

// Solid is an opaque handle to a backend solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() bbox.Box
}

// Kernel produces primitive solids and turns them into exchange meshes.
// Boolean operations are built on top of this layer, not inside it.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
