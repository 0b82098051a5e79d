package main

import (
	"fmt"
	"io"
	"math"

	"github.com/chazu/meshkernel/pkg/geom"
	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/chazu/meshkernel/pkg/kernel/native"
	"github.com/chazu/meshkernel/pkg/kernel/sdfx"
	"github.com/chazu/meshkernel/pkg/manifold"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type inspectOptions struct {
	shape     string
	backend   string
	size      []float64
	rotate    []float64
	translate []float64
	segments  int
	cells     int
	output    string
}

func newInspectCmd(root *rootOptions) *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Build a primitive and report its topology and properties",
		Long: `Builds a cube or cylinder, applies the requested rotation and
translation, converts it to a mesh and lifts that mesh into half-edge form.

A cylinder uses size as diameter x, diameter y (ignored), height.

Example:
  meshkernel inspect --shape cube --size 1,2,3 --rotate 90,0,0
  meshkernel inspect --shape cylinder --backend sdfx --cells 64 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := root.params(cmd)
			if err != nil {
				return err
			}
			report, err := runInspect(opts, params)
			if err != nil {
				return err
			}
			return report.write(cmd.OutOrStdout(), opts.output)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.shape, "shape", "cube", "primitive to build: cube or cylinder")
	f.StringVar(&opts.backend, "backend", "native", "kernel backend: native or sdfx")
	f.Float64SliceVar(&opts.size, "size", []float64{1, 1, 1}, "x,y,z extents")
	f.Float64SliceVar(&opts.rotate, "rotate", []float64{0, 0, 0}, "x,y,z rotation in degrees")
	f.Float64SliceVar(&opts.translate, "translate", []float64{0, 0, 0}, "x,y,z translation")
	f.IntVar(&opts.segments, "segments", 32, "sides of a native cylinder")
	f.IntVar(&opts.cells, "cells", 64, "marching cubes resolution of the sdfx backend")
	f.StringVarP(&opts.output, "output", "o", "text", "output format: text or yaml")
	return cmd
}

// inspectReport is what inspect prints.
type inspectReport struct {
	Shape       string     `yaml:"shape"`
	Backend     string     `yaml:"backend"`
	Vertices    int        `yaml:"vertices"`
	Triangles   int        `yaml:"triangles"`
	Halfedges   int        `yaml:"halfedges"`
	Edges       int        `yaml:"edges"`
	Boundary    int        `yaml:"boundaryEdges"`
	Closed      bool       `yaml:"closed"`
	Genus       *int       `yaml:"genus,omitempty"`
	BoundsMin   [3]float64 `yaml:"boundsMin,flow"`
	BoundsMax   [3]float64 `yaml:"boundsMax,flow"`
	SurfaceArea float64    `yaml:"surfaceArea"`
	Volume      float64    `yaml:"volume"`
	Degenerate  int        `yaml:"degenerateTriangles"`
}

func vec3Flag(name string, v []float64) ([3]float64, error) {
	var out [3]float64
	if len(v) != 3 {
		return out, kernel.UserErrorf("inspect", "--%s needs 3 values, got %d", name, len(v))
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return out, kernel.UserErrorf("inspect", "--%s has non-finite value %g", name, x)
		}
		out[i] = x
	}
	return out, nil
}

func runInspect(opts *inspectOptions, params kernel.ExecutionParams) (*inspectReport, error) {
	size, err := vec3Flag("size", opts.size)
	if err != nil {
		return nil, err
	}
	rot, err := vec3Flag("rotate", opts.rotate)
	if err != nil {
		return nil, err
	}
	move, err := vec3Flag("translate", opts.translate)
	if err != nil {
		return nil, err
	}
	for _, x := range size {
		if x <= 0 {
			return nil, kernel.UserErrorf("inspect", "--size must be positive, got %v", opts.size)
		}
	}

	var k kernel.Kernel
	switch opts.backend {
	case "native":
		k = native.New(params)
	case "sdfx":
		k = sdfx.NewWithCells(opts.cells, params)
	default:
		return nil, kernel.UserErrorf("inspect", "unknown backend %q (want native or sdfx)", opts.backend)
	}

	var s kernel.Solid
	switch opts.shape {
	case "cube":
		s = k.Box(size[0], size[1], size[2])
	case "cylinder":
		if opts.segments < 3 {
			return nil, kernel.UserErrorf("inspect", "--segments must be at least 3, got %d", opts.segments)
		}
		s = k.Cylinder(size[2], size[0]/2, opts.segments)
	default:
		return nil, kernel.UserErrorf("inspect", "unknown shape %q (want cube or cylinder)", opts.shape)
	}
	if rot != [3]float64{} {
		s = k.Rotate(s, rot[0], rot[1], rot[2])
	}
	if move != [3]float64{} {
		s = k.Translate(s, move[0], move[1], move[2])
	}

	mesh, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate %s: %w", opts.shape, err)
	}
	m, err := manifold.NewOpen(mesh, params)
	if err != nil {
		return nil, fmt.Errorf("lift %s mesh: %w", opts.backend, err)
	}

	topo := m.Topology()
	box := m.BoundingBox()
	props := m.GetProperties()
	r := &inspectReport{
		Shape:       opts.shape,
		Backend:     opts.backend,
		Vertices:    m.NumVert(),
		Triangles:   m.NumTri(),
		Halfedges:   topo.Len(),
		Edges:       topo.NumEdge(),
		Boundary:    topo.NumBoundary(),
		Closed:      topo.IsClosed(),
		BoundsMin:   [3]float64{box.Min.X, box.Min.Y, box.Min.Z},
		BoundsMax:   [3]float64{box.Max.X, box.Max.Y, box.Max.Z},
		SurfaceArea: props.SurfaceArea,
		Volume:      props.Volume,
		Degenerate:  len(m.DegenerateTriangles(geom.Tolerance)),
	}
	if r.Closed {
		g := m.Genus()
		r.Genus = &g
	}
	return r, nil
}

func (r *inspectReport) write(w io.Writer, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	case "text":
	default:
		return kernel.UserErrorf("inspect", "unknown output format %q (want text or yaml)", format)
	}

	fmt.Fprintf(w, "shape:      %s (%s)\n", r.Shape, r.Backend)
	fmt.Fprintf(w, "vertices:   %d\n", r.Vertices)
	fmt.Fprintf(w, "triangles:  %d\n", r.Triangles)
	fmt.Fprintf(w, "halfedges:  %d\n", r.Halfedges)
	fmt.Fprintf(w, "edges:      %d\n", r.Edges)
	fmt.Fprintf(w, "boundary:   %d\n", r.Boundary)
	if r.Genus != nil {
		fmt.Fprintf(w, "genus:      %d\n", *r.Genus)
	} else {
		fmt.Fprintf(w, "genus:      n/a (open)\n")
	}
	fmt.Fprintf(w, "bounds:     min: %g, %g, %g, max: %g, %g, %g\n",
		r.BoundsMin[0], r.BoundsMin[1], r.BoundsMin[2], r.BoundsMax[0], r.BoundsMax[1], r.BoundsMax[2])
	fmt.Fprintf(w, "area:       %g\n", r.SurfaceArea)
	fmt.Fprintf(w, "volume:     %g\n", r.Volume)
	fmt.Fprintf(w, "degenerate: %d\n", r.Degenerate)
	return nil
}
