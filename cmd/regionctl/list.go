package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"

	"github.com/joshuapare/voxstore/region"
)

var listHash bool

func init() {
	rootCmd.AddCommand(newListCmd())
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <region>",
		Short: "List the chunks stored in a region",
		Long: `The list command prints every stored chunk with its sector range,
stored length, compression and write time. With --hash it also decompresses
each chunk and prints an xxh3 hash of the payload, which is stable across
recompression and compaction.

Example:
  regionctl list r.0.0.mca
  regionctl list r.0.0.mca --hash --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args)
		},
	}
	cmd.Flags().BoolVar(&listHash, "hash", false, "Print an xxh3 hash of each decompressed payload")
	return cmd
}

type chunkEntry struct {
	X           int32     `json:"x"`
	Z           int32     `json:"z"`
	Offset      uint32    `json:"offset"`
	Sectors     uint8     `json:"sectors"`
	Length      uint32    `json:"length"`
	Compression string    `json:"compression"`
	External    bool      `json:"external"`
	Timestamp   time.Time `json:"timestamp"`
	Hash        string    `json:"hash,omitempty"`
}

func runList(args []string) error {
	sum, err := region.Inspect(args[0])
	if err != nil {
		return fmt.Errorf("failed to open region: %w", err)
	}
	var f *region.File
	if listHash {
		if f, err = region.OpenFile(args[0]); err != nil {
			return fmt.Errorf("failed to open region: %w", err)
		}
		defer f.Close()
	}

	entries := make([]chunkEntry, 0, len(sum.Chunks))
	for _, info := range sum.Chunks {
		p := info.Pos
		e := chunkEntry{
			X:           p.X,
			Z:           p.Z,
			Offset:      info.Offset,
			Sectors:     info.Sectors,
			Length:      info.Length,
			Compression: info.Compression.String(),
			External:    info.External,
			Timestamp:   info.Timestamp,
		}
		if f != nil {
			data, err := f.ReadChunk(p.X, p.Z)
			if err != nil {
				return fmt.Errorf("chunk %d,%d: %w", p.X, p.Z, err)
			}
			e.Hash = fmt.Sprintf("%016x", xxh3.Hash(data))
		}
		entries = append(entries, e)
	}

	if jsonOut {
		return printJSON(entries)
	}
	for _, e := range entries {
		ext := ""
		if e.External {
			ext = " external"
		}
		printInfo("%6d %6d  sectors %d+%d  %d bytes  %s%s  %s",
			e.X, e.Z, e.Offset, e.Sectors, e.Length, e.Compression, ext,
			e.Timestamp.Format(time.RFC3339))
		if e.Hash != "" {
			printInfo("  %s", e.Hash)
		}
		printInfo("\n")
	}
	printVerbose("%d chunks\n", len(entries))
	return nil
}
