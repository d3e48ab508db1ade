package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/voxstore/internal/config"
	"github.com/joshuapare/voxstore/region"
)

type testSection struct {
	Y int32 `nbt:"Y"`
}

type testColumn struct {
	XPos     int32         `nbt:"xPos"`
	ZPos     int32         `nbt:"zPos"`
	Sections []testSection `nbt:"sections"`
}

// resetFlags restores every global flag after the test.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		verbose, quiet, jsonOut, configPath = false, false, false, ""
		listHash, dumpRaw, verifySections, verifyRepair = false, false, false, false
		storageDir, getOutput = "", ""
		cfg = config.Default()
	})
}

// column encodes a chunk column with one section per y.
func column(t *testing.T, x, z int32, ys ...int32) []byte {
	t.Helper()
	col := testColumn{XPos: x, ZPos: z}
	for _, y := range ys {
		col.Sections = append(col.Sections, testSection{Y: y})
	}
	data, err := nbt.MarshalEncoding(col, nbt.LittleEndian)
	require.NoError(t, err)
	return data
}

// testRegion creates r.0.0.mca in a temp dir holding chunks (0,0), (1,0)
// and (2,5).
func testRegion(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	f, err := region.Create(dir, 0, 0)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.WriteChunk(0, 0, column(t, 0, 0, -4, 0), region.Zlib))
	require.NoError(t, f.WriteChunk(1, 0, column(t, 1, 0, 3), region.Gzip))
	require.NoError(t, f.WriteChunk(2, 5, column(t, 2, 5), region.None))
	return dir, f.Path()
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// decodeJSON unmarshals command output into v.
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}
