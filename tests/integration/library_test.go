// Copyright 2025 Shoebox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package integration exercises the library against the real filesystem,
// end to end: the in-memory fake used by the unit tests cannot prove the
// osfs path, the atomic snapshot replace, or the process lock.
package integration

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoebox/internal/common"
	"shoebox/internal/imaging"
	"shoebox/internal/library"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 9), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func openTestLibrary(t *testing.T, dir string) *library.Library {
	t.Helper()
	lib, err := library.Open(dir, imaging.NewProcessor())
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func TestFullWorkflowOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib := openTestLibrary(t, dir)

	// Import into a fresh album.
	results, err := lib.Ingest(
		[]library.IngestFile{{Data: testJPEG(t, 60, 40), OriginalName: "DSC_1000.jpg"}},
		library.IngestOptions{Title: "Lake Trip", Date: "2024-01-05", Album: "vacation"},
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	filename := results[0].Filename

	_, err = os.Stat(filepath.Join(dir, "vacation", filename))
	require.NoError(t, err, "photo file must exist under root/vacation")

	// Date edit renames the file in place.
	date := "2024-02-01"
	rec, err := lib.UpdatePhoto(filename, library.PhotoPatch{Date: &date})
	require.NoError(t, err)
	require.NotEqual(t, filename, rec.Filename)
	_, err = os.Stat(filepath.Join(dir, "vacation", filename))
	require.True(t, os.IsNotExist(err), "old path must be gone")
	_, err = os.Stat(filepath.Join(dir, "vacation", rec.Filename))
	require.NoError(t, err)
	filename = rec.Filename

	// Crop keeps a sidecar; restore round-trips the bytes and consumes it.
	photoPath := filepath.Join(dir, "vacation", filename)
	original, err := os.ReadFile(photoPath)
	require.NoError(t, err)

	require.NoError(t, lib.CropPhoto(filename, imaging.Rect{X: 10, Y: 10, Width: 20, Height: 20}))
	_, err = os.Stat(photoPath + ".backup")
	require.NoError(t, err, "sidecar must sit beside the photo")

	require.NoError(t, lib.RestorePhoto(filename))
	restored, err := os.ReadFile(photoPath)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
	_, err = os.Stat(photoPath + ".backup")
	assert.True(t, os.IsNotExist(err), "sidecar must be consumed")

	// Move to another album, then clean everything up.
	rec, err = lib.MovePhoto(filename, "archive")
	require.NoError(t, err)
	require.Equal(t, "archive", rec.Album)

	require.NoError(t, lib.DeletePhoto(filename))
	require.NoError(t, lib.DeleteAlbum("archive"))
	require.NoError(t, lib.DeleteAlbum("vacation"))
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib := openTestLibrary(t, dir)
	results, err := lib.Ingest(
		[]library.IngestFile{{Data: testJPEG(t, 30, 30), OriginalName: "a.jpg"}},
		library.IngestOptions{Title: "Keeper"},
	)
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	reopened := openTestLibrary(t, dir)
	rec, err := reopened.GetPhoto(results[0].Filename)
	require.NoError(t, err)
	assert.Equal(t, "Keeper", rec.Title)
}

func TestSnapshotIsPrettyPrintedJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib := openTestLibrary(t, dir)
	_, err := lib.Ingest(
		[]library.IngestFile{{Data: testJPEG(t, 30, 30), OriginalName: "a.jpg"}},
		library.IngestOptions{},
	)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, library.IndexFile))
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "filename")
	assert.Contains(t, records[0], "uploadedAt")
	assert.Contains(t, string(data), "\n  {", "snapshot must be 2-space indented")
}

// The in-memory backend renames sidecars together with their photo as a
// side effect of prefix matching; the real filesystem does not. These two
// tests pin the on-disk behavior: exactly one sidecar, beside the photo,
// still restorable after a move or a date rename.
func TestSidecarFollowsMoveOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib := openTestLibrary(t, dir)
	results, err := lib.Ingest(
		[]library.IngestFile{{Data: testJPEG(t, 60, 40), OriginalName: "a.jpg"}},
		library.IngestOptions{Title: "Lake Trip"},
	)
	require.NoError(t, err)
	filename := results[0].Filename

	original, err := os.ReadFile(filepath.Join(dir, "default", filename))
	require.NoError(t, err)
	require.NoError(t, lib.CropPhoto(filename, imaging.Rect{Width: 20, Height: 20}))

	rec, err := lib.MovePhoto(filename, "vacation")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "default", filename+".backup"))
	require.True(t, os.IsNotExist(err), "no sidecar may remain in the old album")
	_, err = os.Stat(filepath.Join(dir, "vacation", rec.Filename+".backup"))
	require.NoError(t, err, "the sidecar must sit beside the moved photo")

	require.True(t, lib.HasBackup(filename))
	require.NoError(t, lib.RestorePhoto(filename))
	restored, err := os.ReadFile(filepath.Join(dir, "vacation", rec.Filename))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestSidecarFollowsDateRenameOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lib := openTestLibrary(t, dir)
	results, err := lib.Ingest(
		[]library.IngestFile{{Data: testJPEG(t, 60, 40), OriginalName: "a.jpg"}},
		library.IngestOptions{Title: "Lake Trip", Date: "2024-01-05"},
	)
	require.NoError(t, err)
	filename := results[0].Filename

	require.NoError(t, lib.CropPhoto(filename, imaging.Rect{Width: 20, Height: 20}))

	date := "2024-02-01"
	rec, err := lib.UpdatePhoto(filename, library.PhotoPatch{Date: &date})
	require.NoError(t, err)
	require.NotEqual(t, filename, rec.Filename)

	_, err = os.Stat(filepath.Join(dir, "default", filename+".backup"))
	require.True(t, os.IsNotExist(err), "no sidecar may remain under the old name")
	_, err = os.Stat(filepath.Join(dir, "default", rec.Filename+".backup"))
	require.NoError(t, err, "the sidecar must follow the rename")

	require.True(t, lib.HasBackup(rec.Filename))
	require.NoError(t, lib.RestorePhoto(rec.Filename))
}

func TestSecondProcessIsLockedOut(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := openTestLibrary(t, dir)

	_, err := library.Open(dir, imaging.NewProcessor())
	require.ErrorIs(t, err, common.ErrConflict)

	require.NoError(t, first.Close())
	second, err := library.Open(dir, imaging.NewProcessor())
	require.NoError(t, err)
	require.NoError(t, second.Close())
}
