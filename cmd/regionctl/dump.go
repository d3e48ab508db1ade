package main

import (
	"fmt"
	"os"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/spf13/cobra"

	"github.com/joshuapare/voxstore/region"
)

var dumpRaw bool

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <region> <cx> <cz>",
		Short: "Print the contents of one chunk",
		Long: `The dump command decompresses one chunk and prints its NBT tree as
JSON. With --raw the decompressed bytes are written to stdout unchanged.

Example:
  regionctl dump r.0.0.mca 4 7
  regionctl dump r.0.0.mca 4 7 --raw > chunk.nbt`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	cmd.Flags().BoolVar(&dumpRaw, "raw", false, "Write the decompressed payload without decoding")
	return cmd
}

func runDump(args []string) error {
	cx, cz, err := parseChunk(args[1:])
	if err != nil {
		return err
	}
	f, err := region.OpenFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to open region: %w", err)
	}
	defer f.Close()

	data, err := f.ReadChunk(cx, cz)
	if err != nil {
		return fmt.Errorf("chunk %d,%d: %w", cx, cz, err)
	}
	if dumpRaw {
		_, err := os.Stdout.Write(data)
		return err
	}

	tree, err := decodeTree(data)
	if err != nil {
		return fmt.Errorf("chunk %d,%d: %w", cx, cz, err)
	}
	return printJSON(tree)
}

// decodeTree decodes a little-endian NBT compound without a schema.
func decodeTree(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := nbt.UnmarshalEncoding(data, &tree, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("decode nbt: %w", err)
	}
	return tree, nil
}
