package main

import (
	"fmt"

	stlmesh "github.com/flywave/go-stlmesh"
	"github.com/spf13/cobra"
)

func newGltfCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "gltf [input.stl] [output.glb]",
		Short: "Write the chunked mesh of an STL file as binary glTF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGltf(cmd, flags, args[0], args[1])
		},
	}
}

func runGltf(cmd *cobra.Command, flags *rootFlags, input, output string) error {
	im, err := flags.importer(cmd)
	if err != nil {
		return err
	}
	chunks, err := im.Import(input)
	if err != nil {
		return err
	}
	if chunks == nil {
		return fmt.Errorf("%s: %w", input, errNoMesh)
	}
	if err := stlmesh.WriteGlb(output, chunks); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d chunks to %s\n", len(chunks), output)
	return nil
}
