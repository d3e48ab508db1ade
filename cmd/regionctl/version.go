package main

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/joshuapare/voxstore/internal/format"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

type versionOutput struct {
	Version     string `json:"version"`
	Module      string `json:"module,omitempty"`
	Revision    string `json:"revision,omitempty"`
	Modified    bool   `json:"modified,omitempty"`
	GoVersion   string `json:"go_version"`
	Compression string `json:"default_compression"`
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	})
}

func buildVersion() versionOutput {
	out := versionOutput{
		Version:     version,
		GoVersion:   runtime.Version(),
		Compression: format.DefaultCompression.String(),
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	out.Module = info.Main.Path
	if out.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Revision = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}
	return out
}

func runVersion() error {
	out := buildVersion()
	if jsonOut {
		return printJSON(out)
	}
	printInfo("regionctl %s (%s)\n", out.Version, out.GoVersion)
	if out.Module != "" {
		printInfo("  module: %s\n", out.Module)
	}
	if out.Revision != "" {
		dirty := ""
		if out.Modified {
			dirty = " (modified)"
		}
		printInfo("  revision: %s%s\n", out.Revision, dirty)
	}
	printInfo("  default compression: %s\n", out.Compression)
	return nil
}
