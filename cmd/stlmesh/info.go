package main

import (
	"errors"
	"fmt"

	stlmesh "github.com/flywave/go-stlmesh"
	"github.com/spf13/cobra"
)

var errNoMesh = errors.New("no mesh produced")

func newInfoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Display format, facet count and chunk layout of an STL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, flags, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, flags *rootFlags, filename string) error {
	format, err := stlmesh.DetectFormat(filename)
	if err != nil {
		return err
	}
	im, err := flags.importer(cmd)
	if err != nil {
		return err
	}
	chunks, err := im.Import(filename)
	if err != nil {
		return err
	}
	if chunks == nil {
		return fmt.Errorf("%s: %w", filename, errNoMesh)
	}

	out := cmd.OutOrStdout()
	triangles := 0
	for _, c := range chunks {
		triangles += c.TriangleCount()
	}
	fmt.Fprintf(out, "File: %s\n", filename)
	fmt.Fprintf(out, "Format: %s\n", format)
	fmt.Fprintf(out, "Facets: %d\n", triangles)
	fmt.Fprintf(out, "Chunks: %d\n", len(chunks))
	for i, c := range chunks {
		fmt.Fprintf(out, "  chunk %d: %d triangles, %d vertices\n", i, c.TriangleCount(), len(c.Vertices))
	}
	if triangles > 0 {
		bbox := stlmesh.ComputeBBox(chunks)
		fmt.Fprintf(out, "Bounds:\n")
		fmt.Fprintf(out, "  Min: %.6f %.6f %.6f\n", bbox.Min[0], bbox.Min[1], bbox.Min[2])
		fmt.Fprintf(out, "  Max: %.6f %.6f %.6f\n", bbox.Max[0], bbox.Max[1], bbox.Max[2])
	}
	return nil
}
