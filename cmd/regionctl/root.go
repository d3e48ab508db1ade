package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/voxstore/internal/config"
	"github.com/joshuapare/voxstore/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string

	// cfg is loaded before any command runs.
	cfg = config.Default()

	numbers = message.NewPrinter(language.English)
)

var rootCmd = &cobra.Command{
	Use:   "regionctl",
	Short: "Inspect and maintain chunk region files",
	Long: `regionctl inspects, verifies and compacts region files, the
sector-allocated containers holding 32x32 chunk columns, and reads or writes
single chunks through the storage worker.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

var closeLog = func() error { return nil }

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
}

// setup loads the configuration and starts logging.
func setup() error {
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	opts := cfg.LoggerOptions()
	if verbose && !opts.Enabled {
		opts.Enabled = true
		opts.Level = logger.ParseLevel("debug")
	}
	fn, err := logger.Init(opts)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	closeLog = fn
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		numbers.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// parseCoord parses a chunk coordinate argument.
func parseCoord(name, s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a chunk coordinate", name, s)
	}
	return int32(v), nil
}

// parseChunk parses the <cx> <cz> argument pair.
func parseChunk(args []string) (int32, int32, error) {
	cx, err := parseCoord("cx", args[0])
	if err != nil {
		return 0, 0, err
	}
	cz, err := parseCoord("cz", args[1])
	if err != nil {
		return 0, 0, err
	}
	return cx, cz, nil
}

// formatSize renders a byte count for humans.
func formatSize(size int64) string {
	switch {
	case size < 1024:
		return numbers.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return numbers.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return numbers.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
