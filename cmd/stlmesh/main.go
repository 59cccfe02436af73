package main

import (
	"fmt"
	"log"
	"os"

	stlmesh "github.com/flywave/go-stlmesh"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	config           string
	legacyChunks     bool
	propagate        bool
	recomputeNormals bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "stlmesh",
		Short:         "Convert STL files into bounded mesh buffers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.config, "config", "", "import options JSON file")
	root.PersistentFlags().BoolVar(&flags.legacyChunks, "legacy-chunks", false, "use len/T+1 chunk count")
	root.PersistentFlags().BoolVar(&flags.propagate, "propagate", false, "report binary decode failures as errors")
	root.PersistentFlags().BoolVar(&flags.recomputeNormals, "recompute-normals", false, "derive zero normals from vertex winding")

	root.AddCommand(newInfoCmd(flags), newGltfCmd(flags))
	return root
}

// importer 合并配置文件与命令行覆盖
func (f *rootFlags) importer(cmd *cobra.Command) (*stlmesh.Importer, error) {
	opts := stlmesh.DefaultOptions()
	if f.config != "" {
		var err error
		if opts, err = stlmesh.LoadOptions(f.config); err != nil {
			return nil, err
		}
	}
	if f.legacyChunks {
		opts.ChunkPolicy = stlmesh.ChunkPolicyLegacy
	}
	if f.propagate {
		opts.ErrorPolicy = stlmesh.ErrorPolicyPropagate
	}
	if f.recomputeNormals {
		opts.RecomputeNormals = true
	}
	im := stlmesh.NewImporter(opts)
	im.Logger = log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	return im, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
