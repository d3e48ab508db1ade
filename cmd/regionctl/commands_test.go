package main

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/voxstore/internal/format"
	"github.com/joshuapare/voxstore/region"
)

func TestInfoCommand(t *testing.T) {
	resetFlags(t)
	_, path := testRegion(t)

	out, err := captureOutput(t, func() error { return runInfo([]string{path}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Chunks: 3")
	assert.Contains(t, out, "Sectors: 5 (5 used, 0 free)")

	jsonOut = true
	out, err = captureOutput(t, func() error { return runInfo([]string{path}) })
	require.NoError(t, err)
	var info infoOutput
	decodeJSON(t, out, &info)
	assert.Equal(t, 3, info.Chunks)
	assert.Equal(t, int64(5*format.SectorSize), info.Size)
}

func TestInfoCommand_BadFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o644))

	_, err := captureOutput(t, func() error { return runInfo([]string{path}) })
	assert.ErrorIs(t, err, region.ErrFileTooSmall)
}

func TestListCommand(t *testing.T) {
	resetFlags(t)
	_, path := testRegion(t)
	jsonOut, listHash = true, true

	out, err := captureOutput(t, func() error { return runList([]string{path}) })
	require.NoError(t, err)

	var entries []chunkEntry
	decodeJSON(t, out, &entries)
	require.Len(t, entries, 3)
	assert.Equal(t, int32(0), entries[0].X)
	assert.Equal(t, "zlib", entries[0].Compression)
	assert.Equal(t, "gzip", entries[1].Compression)
	assert.Equal(t, int32(5), entries[2].Z)
	assert.Equal(t, "none", entries[2].Compression)
	for _, e := range entries {
		assert.Len(t, e.Hash, 16)
	}
	assert.NotEqual(t, entries[0].Hash, entries[1].Hash)
}

func TestDumpCommand(t *testing.T) {
	resetFlags(t)
	_, path := testRegion(t)

	out, err := captureOutput(t, func() error { return runDump([]string{path, "0", "0"}) })
	require.NoError(t, err)
	var tree map[string]any
	decodeJSON(t, out, &tree)
	sections, ok := tree["sections"].([]any)
	require.True(t, ok)
	assert.Len(t, sections, 2)

	dumpRaw = true
	out, err = captureOutput(t, func() error { return runDump([]string{path, "1", "0"}) })
	require.NoError(t, err)
	assert.Equal(t, string(column(t, 1, 0, 3)), out)
}

func TestDumpCommand_Errors(t *testing.T) {
	resetFlags(t)
	_, path := testRegion(t)

	_, err := captureOutput(t, func() error { return runDump([]string{path, "x", "0"}) })
	assert.Error(t, err)
	_, err = captureOutput(t, func() error { return runDump([]string{path, "9", "9"}) })
	assert.ErrorIs(t, err, region.ErrEmptyChunk)
}

func TestVerifyCommand(t *testing.T) {
	resetFlags(t)
	_, path := testRegion(t)
	verifySections = true

	out, err := captureOutput(t, func() error { return runVerify([]string{path}) })
	require.NoError(t, err)
	assert.Contains(t, out, "3 chunks OK")

	// Section 30 lies above the default world height.
	f, err := region.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.WriteChunk(3, 0, column(t, 3, 0, 30), region.Zlib))
	require.NoError(t, f.Close())

	jsonOut = true
	out, err = captureOutput(t, func() error { return runVerify([]string{path}) })
	assert.ErrorIs(t, err, errVerifyFailed)
	var reports []verifyReport
	decodeJSON(t, out, &reports)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Problems, 1)
	assert.Contains(t, reports[0].Problems[0], "section Y 30")
}

func TestVerifyCommand_Repair(t *testing.T) {
	resetFlags(t)
	_, path := testRegion(t)

	// Point chunk 1,0 at chunk 0,0's sector.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	var entry [4]byte
	binary.BigEndian.PutUint32(entry[:], format.Location{Offset: 2, Sectors: 1}.Pack())
	_, err = f.WriteAt(entry[:], format.LocationOffset(1))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = captureOutput(t, func() error { return runVerify([]string{path}) })
	assert.ErrorIs(t, err, errVerifyFailed)

	verifyRepair, jsonOut = true, true
	out, err := captureOutput(t, func() error { return runVerify([]string{path}) })
	require.NoError(t, err)
	var reports []verifyReport
	decodeJSON(t, out, &reports)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"1,0"}, reports[0].Repaired)
	assert.Equal(t, 2, reports[0].Chunks)

	verifyRepair, jsonOut = false, false
	out, err = captureOutput(t, func() error { return runVerify([]string{path}) })
	require.NoError(t, err)
	assert.Contains(t, out, "2 chunks OK")
}

func TestVerifyCommand_CorruptFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	require.NoError(t, os.WriteFile(path, make([]byte, format.HeaderSize+1), 0o644))

	out, err := captureOutput(t, func() error { return runVerify([]string{path}) })
	assert.ErrorIs(t, err, errVerifyFailed)
	assert.Contains(t, out, "not padded")
}

func TestVersionCommand(t *testing.T) {
	resetFlags(t)

	out, err := captureOutput(t, runVersion)
	require.NoError(t, err)
	assert.Contains(t, out, "regionctl ")
	assert.Contains(t, out, "default compression: zlib")

	jsonOut = true
	out, err = captureOutput(t, runVersion)
	require.NoError(t, err)
	var v versionOutput
	decodeJSON(t, out, &v)
	assert.NotEmpty(t, v.Version)
	assert.Equal(t, runtime.Version(), v.GoVersion)
	assert.Equal(t, "zlib", v.Compression)
}

func TestCompactCommand(t *testing.T) {
	resetFlags(t)
	_, path := testRegion(t)
	f, err := region.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Remove(0, 0))
	require.NoError(t, f.Close())

	jsonOut = true
	out, err := captureOutput(t, func() error { return runCompact([]string{path}) })
	require.NoError(t, err)
	var results []compactResult
	decodeJSON(t, out, &results)
	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0].SectorsBefore)
	assert.Equal(t, 4, results[0].SectorsAfter)
	assert.Equal(t, int64(format.SectorSize), results[0].BytesSaved)
}

func TestPutGetCommands(t *testing.T) {
	resetFlags(t)
	storageDir = t.TempDir()
	ctx := context.Background()

	in := filepath.Join(t.TempDir(), "chunk.nbt")
	payload := column(t, 40, -3, 1, 2)
	require.NoError(t, os.WriteFile(in, payload, 0o644))

	out, err := captureOutput(t, func() error { return runPut(ctx, []string{"40", "-3", in}) })
	require.NoError(t, err)
	assert.Contains(t, out, "Stored")
	assert.FileExists(t, filepath.Join(storageDir, "r.1.-1.mca"))

	getOutput = filepath.Join(t.TempDir(), "out.nbt")
	_, err = captureOutput(t, func() error { return runGet(ctx, []string{"40", "-3"}) })
	require.NoError(t, err)
	got, err := os.ReadFile(getOutput)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	getOutput = ""
	_, err = captureOutput(t, func() error { return runGet(ctx, []string{"41", "-3"}) })
	assert.ErrorIs(t, err, region.ErrEmptyChunk)
}

func TestParseChunk(t *testing.T) {
	cx, cz, err := parseChunk([]string{"-12", "7"})
	require.NoError(t, err)
	assert.Equal(t, int32(-12), cx)
	assert.Equal(t, int32(7), cz)

	_, _, err = parseChunk([]string{"1", "99999999999"})
	assert.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 bytes", formatSize(512))
	assert.Equal(t, "4.0 KB", formatSize(4096))
	assert.Equal(t, "1.5 MB", formatSize(3*512*1024))
}
