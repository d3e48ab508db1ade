package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/voxstore/internal/logger"
	"github.com/joshuapare/voxstore/storage"
)

var (
	storageDir string
	getOutput  string
)

func init() {
	rootCmd.AddCommand(newGetCmd())
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <cx> <cz>",
		Short: "Read one chunk through the storage worker",
		Long: `The get command loads the decompressed payload of world chunk (cx, cz)
from the region directory and writes it to stdout or to --output.

Example:
  regionctl get 40 -3 --dir world/region -o chunk.nbt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVarP(&storageDir, "dir", "d", "", "Region directory (default from config)")
	cmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write the payload to this file")
	return cmd
}

// openWorker starts a storage worker for the configured or flagged directory.
func openWorker() (*storage.Worker, error) {
	opts, err := cfg.StorageOptions(logger.L)
	if err != nil {
		return nil, err
	}
	if storageDir != "" {
		opts.Dir = storageDir
	}
	return storage.New(opts)
}

// await returns the next result of w or the context's error.
func await(ctx context.Context, w *storage.Worker) (storage.Result, error) {
	select {
	case r, ok := <-w.Results():
		if !ok {
			return storage.Result{}, storage.ErrClosed
		}
		return r, nil
	case <-ctx.Done():
		return storage.Result{}, ctx.Err()
	}
}

func runGet(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cx, cz, err := parseChunk(args)
	if err != nil {
		return err
	}
	w, err := openWorker()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Load(ctx, cx, cz); err != nil {
		return err
	}
	r, err := await(ctx, w)
	if err != nil {
		return err
	}
	if r.Err != nil {
		return fmt.Errorf("chunk %d,%d: %w", cx, cz, r.Err)
	}

	if getOutput == "" {
		_, err = os.Stdout.Write(r.Data)
		return err
	}
	if err := os.WriteFile(getOutput, r.Data, 0o644); err != nil {
		return err
	}
	printVerbose("Wrote %d bytes to %s\n", len(r.Data), getOutput)
	return nil
}
