package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/voxstore/region"
)

func init() {
	rootCmd.AddCommand(newCompactCmd())
}

func newCompactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact <region>...",
		Short: "Rewrite region files without unused sectors",
		Long: `The compact command rewrites each region file with its chunks packed
back to back in header order. Payloads and timestamps are copied unchanged.
The file is replaced atomically once the copy is complete.

Example:
  regionctl compact world/region/r.0.0.mca`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(args)
		},
	}
	return cmd
}

type compactResult struct {
	File          string `json:"file"`
	SectorsBefore int    `json:"sectors_before"`
	SectorsAfter  int    `json:"sectors_after"`
	BytesSaved    int64  `json:"bytes_saved"`
}

func runCompact(args []string) error {
	var results []compactResult
	for _, path := range args {
		printVerbose("Compacting %s\n", path)
		before, after, err := region.Compact(path)
		if err != nil {
			return fmt.Errorf("failed to compact region: %w", err)
		}
		res := compactResult{
			File:          path,
			SectorsBefore: before.Sectors,
			SectorsAfter:  after.Sectors,
			BytesSaved:    before.Size - after.Size,
		}
		results = append(results, res)
		if !jsonOut {
			printInfo("%s: %d -> %d sectors, %s saved\n",
				path, res.SectorsBefore, res.SectorsAfter, formatSize(res.BytesSaved))
		}
	}
	if jsonOut {
		return printJSON(results)
	}
	return nil
}
