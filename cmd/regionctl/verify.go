package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/voxstore/region"
)

var (
	verifySections bool
	verifyRepair   bool
)

// errVerifyFailed is returned when any region has problems.
var errVerifyFailed = errors.New("verification failed")

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <region>...",
		Short: "Check region files for corruption",
		Long: `The verify command validates each region header, checks that no two
chunks share a sector and that every chunk decompresses. With --sections it
also decodes each chunk's NBT and checks that its section indices fall inside
the configured world height. With --repair, chunks that fail the sector and
decompression checks are removed from the region.

Example:
  regionctl verify world/region/*.mca
  regionctl verify r.0.0.mca --sections -c voxstore.toml
  regionctl verify r.0.0.mca --repair`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	cmd.Flags().BoolVar(&verifySections, "sections", false, "Decode chunks and check section heights")
	cmd.Flags().BoolVar(&verifyRepair, "repair", false, "Remove chunks that fail verification")
	return cmd
}

type verifyReport struct {
	File     string   `json:"file"`
	Chunks   int      `json:"chunks"`
	Problems []string `json:"problems"`
	Repaired []string `json:"repaired,omitempty"`
}

func runVerify(args []string) error {
	reports := make([]verifyReport, 0, len(args))
	failed := false
	for _, path := range args {
		r := verifyFile(path)
		failed = failed || len(r.Problems) > 0
		reports = append(reports, r)
	}

	if jsonOut {
		if err := printJSON(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			for _, c := range r.Repaired {
				printInfo("  removed chunk %s from %s\n", c, r.File)
			}
			if len(r.Problems) == 0 {
				printInfo("%s %s: %d chunks OK\n", okMark, r.File, r.Chunks)
				continue
			}
			printInfo("%s %s: %d problems\n", failMark, r.File, len(r.Problems))
			for _, p := range r.Problems {
				printInfo("    %s\n", p)
			}
		}
	}
	if failed {
		return errVerifyFailed
	}
	return nil
}

func verifyFile(path string) verifyReport {
	r := verifyReport{File: path}
	f, err := region.OpenFile(path)
	if err != nil {
		r.Problems = append(r.Problems, err.Error())
		return r
	}
	defer f.Close()
	printVerbose("Verifying %s\n", path)

	r.Chunks = f.Stats().Chunks
	problems, err := f.Verify()
	if err != nil {
		r.Problems = append(r.Problems, err.Error())
		return r
	}
	if verifyRepair && len(problems) > 0 {
		removed, err := f.Repair(problems)
		if err != nil {
			r.Problems = append(r.Problems, err.Error())
			return r
		}
		for _, p := range removed {
			r.Repaired = append(r.Repaired, fmt.Sprintf("%d,%d", p.X, p.Z))
		}
		r.Chunks = f.Stats().Chunks
		problems = nil
	}
	for _, p := range problems {
		r.Problems = append(r.Problems, p.Error())
	}
	if !verifySections {
		return r
	}

	minSection, maxSection := cfg.World.MinY>>4, cfg.World.MaxY>>4
	for p := range f.Chunks() {
		data, err := f.ReadChunk(p.X, p.Z)
		if err != nil {
			continue // already reported
		}
		for _, msg := range checkSections(data, minSection, maxSection) {
			r.Problems = append(r.Problems, fmt.Sprintf("chunk %d,%d: %s", p.X, p.Z, msg))
		}
	}
	return r
}

// checkSections reports sections whose Y lies outside [minSection, maxSection).
func checkSections(data []byte, minSection, maxSection int) []string {
	tree, err := decodeTree(data)
	if err != nil {
		return []string{err.Error()}
	}
	list, ok := tree["sections"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for i, v := range list {
		sec, ok := v.(map[string]any)
		if !ok {
			out = append(out, fmt.Sprintf("section %d is not a compound", i))
			continue
		}
		y, ok := sec["Y"].(int32)
		if !ok {
			out = append(out, fmt.Sprintf("section %d has no Y", i))
			continue
		}
		if int(y) < minSection || int(y) >= maxSection {
			out = append(out, fmt.Sprintf("section Y %d outside [%d,%d)", y, minSection, maxSection))
		}
	}
	return out
}
