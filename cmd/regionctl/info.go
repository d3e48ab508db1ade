package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/voxstore/region"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <region>",
		Short: "Validate a region header and report sector usage",
		Long: `The info command opens a region file, validates its header and
displays sector usage and the number of stored chunks.

Example:
  regionctl info world/region/r.0.0.mca
  regionctl info r.-1.3.mca --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type infoOutput struct {
	File        string `json:"file"`
	RegionX     int32  `json:"region_x"`
	RegionZ     int32  `json:"region_z"`
	Size        int64  `json:"size"`
	Sectors     int    `json:"sectors"`
	UsedSectors int    `json:"used_sectors"`
	FreeSectors int    `json:"free_sectors"`
	Chunks      int    `json:"chunks"`
}

func runInfo(args []string) error {
	path := args[0]
	printVerbose("Opening region: %s\n", path)

	sum, err := region.Inspect(path)
	if err != nil {
		return fmt.Errorf("failed to open region: %w", err)
	}

	s := sum.Stats
	out := infoOutput{
		File:        path,
		RegionX:     sum.Pos.X,
		RegionZ:     sum.Pos.Z,
		Size:        s.Size,
		Sectors:     s.Sectors,
		UsedSectors: s.UsedSectors,
		FreeSectors: s.FreeSectors,
		Chunks:      s.Chunks,
	}
	if jsonOut {
		return printJSON(out)
	}

	printInfo("\n%s\n", headerStyle.Render("Region Information:"))
	printInfo("  File: %s\n", path)
	printInfo("  Region: %d, %d\n", out.RegionX, out.RegionZ)
	printInfo("  Size: %s\n", formatSize(out.Size))
	printInfo("  Sectors: %d (%d used, %d free)\n", out.Sectors, out.UsedSectors, out.FreeSectors)
	printInfo("  Chunks: %d\n", out.Chunks)
	return nil
}
