package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/meshkernel/pkg/engine"
	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/chazu/meshkernel/pkg/kernel/native"
	"github.com/chazu/meshkernel/pkg/kernel/sdfx"
	"github.com/chazu/meshkernel/pkg/tessellate"
	"github.com/spf13/cobra"
)

func newSceneCmd(root *rootOptions) *cobra.Command {
	var backend string
	var cells int
	cmd := &cobra.Command{
		Use:   "scene [file.yaml|file.zy]",
		Short: "Tessellate every part of a scene and summarize each",
		Long: `Reads a scene of placed primitives, tessellates every part with the chosen
backend and lifts each mesh into half-edge form.

Scenes ending in .zy or .lisp are scripts; anything else is YAML.

Example YAML scene:
  nodes:
    - name: frame
      translate: [0, 0, 10]
      children:
        - {name: leg, shape: cylinder, size: [2, 2, 20], segments: 8}
        - {name: top, shape: cube, size: [30, 30, 2]}

The same scene as a script:
  (scene
    (place (group :name "frame"
             (cylinder :name "leg" :diameter 2 :height 20 :segments 8)
             (cube :name "top" :size (vec3 30 30 2)))
           :at (vec3 0 0 10)))`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := root.params(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read scene: %w", err)
			}
			var scene *tessellate.Scene
			switch filepath.Ext(args[0]) {
			case ".zy", ".lisp":
				scene, err = engine.NewEngine(params).Scene(cmd.Context(), string(data))
			default:
				scene, err = tessellate.ParseScene(data)
			}
			if err != nil {
				return fmt.Errorf("parse scene %s: %w", args[0], err)
			}

			var k kernel.Kernel
			switch backend {
			case "native":
				k = native.New(params)
			case "sdfx":
				k = sdfx.NewWithCells(cells, params)
			default:
				return kernel.UserErrorf("scene", "unknown backend %q (want native or sdfx)", backend)
			}

			parts, err := tessellate.Solids(cmd.Context(), scene, k, params)
			if err != nil {
				return err
			}
			writeParts(cmd.OutOrStdout(), parts)
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "native", "kernel backend: native or sdfx")
	cmd.Flags().IntVar(&cells, "cells", 64, "marching cubes resolution of the sdfx backend")
	return cmd
}

func writeParts(w io.Writer, parts []tessellate.Part) {
	fmt.Fprintf(w, "%-16s %8s %9s %8s %8s  %s\n", "PART", "VERTICES", "TRIANGLES", "BOUNDARY", "VOLUME", "BOUNDS")
	for _, p := range parts {
		s := p.Solid
		fmt.Fprintf(w, "%-16s %8d %9d %8d %8.4g  %v\n",
			p.Name, s.NumVert(), s.NumTri(), s.Topology().NumBoundary(), s.GetProperties().Volume, s.BoundingBox())
	}
}
