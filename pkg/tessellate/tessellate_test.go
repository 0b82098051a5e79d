package tessellate_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/chazu/meshkernel/pkg/bbox"
	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/chazu/meshkernel/pkg/kernel/native"
	"github.com/chazu/meshkernel/pkg/kernel/sdfx"
	"github.com/chazu/meshkernel/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newKernel returns a fresh native kernel for testing.
func newKernel() kernel.Kernel {
	return native.New(kernel.ExecutionParams{IntermediateChecks: true})
}

func vec(x, y, z float64) *[3]float64 {
	return &[3]float64{x, y, z}
}

// makeBoard creates a cube part with the given name and dimensions.
func makeBoard(name string, x, y, z float64) tessellate.Node {
	return tessellate.Node{Name: name, Shape: tessellate.ShapeCube, Size: [3]float64{x, y, z}}
}

func TestSingleBox(t *testing.T) {
	scene := &tessellate.Scene{Nodes: []tessellate.Node{makeBoard("shelf", 600, 300, 18)}}

	meshes, err := tessellate.Tessellate(context.Background(), scene, newKernel(), kernel.DefaultParams())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "shelf" {
		t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
	}
	if m.VertexCount() != 8 || m.TriangleCount() != 12 {
		t.Errorf("got %d vertices, %d triangles, want 8 and 12", m.VertexCount(), m.TriangleCount())
	}
}

func TestTwoPartsKeepOrder(t *testing.T) {
	scene := &tessellate.Scene{Nodes: []tessellate.Node{
		makeBoard("side-panel", 400, 300, 18),
		makeBoard("top-panel", 600, 300, 18),
		{Shape: tessellate.ShapeCylinder, Size: [3]float64{20, 20, 100}, Segments: 12},
	}}

	meshes, err := tessellate.Tessellate(context.Background(), scene, newKernel(), kernel.DefaultParams())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	want := []string{"side-panel", "top-panel", "part-2"}
	if len(meshes) != len(want) {
		t.Fatalf("expected %d meshes, got %d", len(want), len(meshes))
	}
	for i, m := range meshes {
		if m.PartName != want[i] {
			t.Errorf("mesh %d PartName = %q, want %q", i, m.PartName, want[i])
		}
	}
	if got := meshes[2].TriangleCount(); got != 48 {
		t.Errorf("12-sided cylinder has %d triangles, want 48", got)
	}
}

func TestPartWithTransform(t *testing.T) {
	board := makeBoard("shelf", 100, 50, 10)
	scene := &tessellate.Scene{Nodes: []tessellate.Node{{
		Name:      "place-shelf",
		Translate: vec(200, 100, 50),
		Children:  []tessellate.Node{board},
	}}}

	meshes, err := tessellate.Tessellate(context.Background(), scene, newKernel(), kernel.DefaultParams())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	// Boxes are centered, so a 100x50x10 board placed at (200,100,50)
	// spans (150,75,45)-(250,125,55).
	want := bbox.Box{Min: v3.Vec{X: 150, Y: 75, Z: 45}, Max: v3.Vec{X: 250, Y: 125, Z: 55}}
	if got := meshes[0].Bounds(); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
}

func TestNestedTransformsApplyInnermostFirst(t *testing.T) {
	// The child is rotated a quarter turn about Z, then moved along X by
	// its own level; the parent then rotates the whole assembly a quarter
	// turn about Z again. Summing Euler angles would place it elsewhere.
	scene := &tessellate.Scene{Nodes: []tessellate.Node{{
		Name:   "turntable",
		Rotate: vec(0, 0, 90),
		Children: []tessellate.Node{{
			Name:      "arm",
			Shape:     tessellate.ShapeCube,
			Size:      [3]float64{2, 4, 6},
			Rotate:    vec(0, 0, 90),
			Translate: vec(10, 0, 0),
		}},
	}}}

	meshes, err := tessellate.Tessellate(context.Background(), scene, newKernel(), kernel.DefaultParams())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	// Own level: 2x4x6 turned to 4x2x6, centered at (10,0,0).
	// Parent level: turned again to 2x4x6, centered at (0,10,0).
	want := bbox.Box{Min: v3.Vec{X: -1, Y: 8, Z: -3}, Max: v3.Vec{X: 1, Y: 12, Z: 3}}
	if got := meshes[0].Bounds(); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
}

func TestGroupOnlySceneHasNoMeshes(t *testing.T) {
	scene := &tessellate.Scene{Nodes: []tessellate.Node{{Name: "empty", Children: []tessellate.Node{{Name: "also-empty"}}}}}
	meshes, err := tessellate.Tessellate(context.Background(), scene, newKernel(), kernel.DefaultParams())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(meshes))
	}

	meshes, err = tessellate.Tessellate(context.Background(), nil, newKernel(), kernel.DefaultParams())
	if err != nil || meshes != nil {
		t.Errorf("Tessellate(nil) = %v, %v; want nil, nil", meshes, err)
	}
}

func TestSolids(t *testing.T) {
	scene := &tessellate.Scene{Nodes: []tessellate.Node{
		makeBoard("a", 1, 1, 1),
		{Name: "b", Shape: tessellate.ShapeCylinder, Size: [3]float64{2, 2, 2}, Translate: vec(5, 0, 0)},
	}}
	parts, err := tessellate.Solids(context.Background(), scene, newKernel(), kernel.ExecutionParams{IntermediateChecks: true})
	if err != nil {
		t.Fatalf("Solids failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	for _, p := range parts {
		if !p.Solid.Topology().IsClosed() {
			t.Errorf("part %s is not closed", p.Name)
		}
		if g := p.Solid.Genus(); g != 0 {
			t.Errorf("part %s genus = %d, want 0", p.Name, g)
		}
		if p.Mesh.PartName != p.Name {
			t.Errorf("part %s carries mesh %s", p.Name, p.Mesh.PartName)
		}
	}
	if v := parts[0].Solid.GetProperties().Volume; v != 1 {
		t.Errorf("unit cube volume = %f, want 1", v)
	}
}

func TestSdfxBackend(t *testing.T) {
	scene := &tessellate.Scene{Nodes: []tessellate.Node{makeBoard("shelf", 60, 30, 18)}}
	k := sdfx.NewWithCells(16, kernel.DefaultParams())
	meshes, err := tessellate.Tessellate(context.Background(), scene, k, kernel.DefaultParams())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if meshes[0].IsEmpty() || meshes[0].PartName != "shelf" {
		t.Errorf("unexpected mesh: empty=%v name=%q", meshes[0].IsEmpty(), meshes[0].PartName)
	}
}

func TestInvalidScene(t *testing.T) {
	tests := []struct {
		name  string
		scene *tessellate.Scene
	}{
		{"unknown shape", &tessellate.Scene{Nodes: []tessellate.Node{{Name: "x", Shape: "sphere", Size: [3]float64{1, 1, 1}}}}},
		{"zero size", &tessellate.Scene{Nodes: []tessellate.Node{makeBoard("flat", 1, 0, 1)}}},
		{"nested bad segments", &tessellate.Scene{Nodes: []tessellate.Node{{
			Name:     "group",
			Children: []tessellate.Node{{Name: "peg", Shape: tessellate.ShapeCylinder, Size: [3]float64{1, 1, 1}, Segments: 2}},
		}}}},
		{"infinite size", &tessellate.Scene{Nodes: []tessellate.Node{makeBoard("huge", math.Inf(1), 1, 1)}}},
		{"NaN translate", &tessellate.Scene{Nodes: []tessellate.Node{{
			Name:      "group",
			Translate: vec(0, math.NaN(), 0),
			Children:  []tessellate.Node{makeBoard("a", 1, 1, 1)},
		}}}},
		{"infinite rotate", &tessellate.Scene{Nodes: []tessellate.Node{{
			Name:   "a",
			Shape:  tessellate.ShapeCube,
			Size:   [3]float64{1, 1, 1},
			Rotate: vec(math.Inf(-1), 0, 0),
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tessellate.Tessellate(context.Background(), tt.scene, newKernel(), kernel.DefaultParams())
			if !errors.Is(err, kernel.ErrUserInput) {
				t.Errorf("Tessellate() error = %v, want a user input error", err)
			}
		})
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scene := &tessellate.Scene{Nodes: []tessellate.Node{makeBoard("a", 1, 1, 1)}}
	_, err := tessellate.Tessellate(ctx, scene, newKernel(), kernel.DefaultParams())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Tessellate() error = %v, want context.Canceled", err)
	}
}

func TestParseScene(t *testing.T) {
	data := []byte(`
nodes:
  - name: frame
    translate: [0, 0, 10]
    children:
      - name: leg
        shape: cylinder
        size: [2, 2, 20]
        segments: 8
      - name: top
        shape: cube
        size: [30, 30, 2]
        rotate: [0, 0, 90]
`)
	scene, err := tessellate.ParseScene(data)
	if err != nil {
		t.Fatalf("ParseScene failed: %v", err)
	}
	if len(scene.Nodes) != 1 || len(scene.Nodes[0].Children) != 2 {
		t.Fatalf("unexpected scene shape: %+v", scene)
	}
	leg := scene.Nodes[0].Children[0]
	if leg.Shape != tessellate.ShapeCylinder || leg.Segments != 8 || leg.Size != [3]float64{2, 2, 20} {
		t.Errorf("leg = %+v", leg)
	}
	if top := scene.Nodes[0].Children[1]; top.Rotate == nil || *top.Rotate != [3]float64{0, 0, 90} {
		t.Errorf("top rotate = %v", top.Rotate)
	}

	if _, err := tessellate.ParseScene([]byte("nodes:\n  - name: x\n    colour: red\n")); !errors.Is(err, kernel.ErrUserInput) {
		t.Errorf("unknown key: error = %v, want a user input error", err)
	}
	if _, err := tessellate.ParseScene([]byte("nodes:\n  - name: x\n    shape: cube\n")); !errors.Is(err, kernel.ErrUserInput) {
		t.Errorf("missing size: error = %v, want a user input error", err)
	}
	if _, err := tessellate.ParseScene([]byte("nodes:\n  - {name: a, shape: cube, size: [.inf, 1, 1]}\n")); !errors.Is(err, kernel.ErrUserInput) {
		t.Errorf("infinite size: error = %v, want a user input error", err)
	}
}

func TestDuplicateNamesWarn(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	params := kernel.DefaultParams().WithLogger(zap.New(core))
	scene := &tessellate.Scene{Nodes: []tessellate.Node{
		makeBoard("leg", 1, 1, 10),
		makeBoard("top", 10, 10, 1),
		makeBoard("leg", 1, 1, 10),
	}}

	meshes, err := tessellate.Tessellate(context.Background(), scene, newKernel(), params)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Errorf("expected 3 meshes, got %d", len(meshes))
	}
	entries := logs.FilterMessage("duplicate part name").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["name"] != "leg" || fields["parts"] != int64(2) {
		t.Errorf("unexpected warning fields %v", fields)
	}

	core, logs = observer.New(zapcore.WarnLevel)
	params = params.WithLogger(zap.New(core))
	params.SuppressErrors = true
	if _, err := tessellate.Tessellate(context.Background(), scene, newKernel(), params); err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("suppressed run logged %d entries", logs.Len())
	}
}

// failingKernel panics the way a kernel does on a primitive it cannot build.
type failingKernel struct {
	kernel.Kernel
}

func (failingKernel) Box(x, y, z float64) kernel.Solid {
	panic(fmt.Errorf("failing.Box: %w", kernel.UserErrorf("failing.Box", "cannot build %gx%gx%g", x, y, z)))
}

func TestKernelPanicBecomesError(t *testing.T) {
	scene := &tessellate.Scene{Nodes: []tessellate.Node{
		makeBoard("a", 1, 1, 1),
		{Name: "b", Shape: tessellate.ShapeCylinder, Size: [3]float64{1, 1, 1}},
	}}
	_, err := tessellate.Tessellate(context.Background(), scene, failingKernel{newKernel()}, kernel.DefaultParams())
	if !errors.Is(err, kernel.ErrUserInput) {
		t.Errorf("Tessellate() error = %v, want the kernel's user input error", err)
	}
}
