package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPutCmd())
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <cx> <cz> <file|->",
		Short: "Write one chunk through the storage worker",
		Long: `The put command stores the contents of a file, or stdin for "-", as
the payload of world chunk (cx, cz), compressed with the configured method.
The region file is created if needed.

Example:
  regionctl put 40 -3 chunk.nbt --dir world/region`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVarP(&storageDir, "dir", "d", "", "Region directory (default from config)")
	return cmd
}

func runPut(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cx, cz, err := parseChunk(args)
	if err != nil {
		return err
	}

	var data []byte
	if args[2] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[2])
	}
	if err != nil {
		return err
	}

	w, err := openWorker()
	if err != nil {
		return err
	}
	if err := w.Save(ctx, cx, cz, data); err != nil {
		_ = w.Close()
		return err
	}
	// Close drains the queue, so the save has completed once it returns.
	if err := w.Close(); err != nil {
		return err
	}
	r, ok := w.Poll()
	if !ok {
		return fmt.Errorf("chunk %d,%d: no result", cx, cz)
	}
	if r.Err != nil {
		return fmt.Errorf("chunk %d,%d: %w", cx, cz, r.Err)
	}
	printInfo("Stored %d bytes as chunk %d, %d\n", len(data), cx, cz)
	return nil
}
