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

package library

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"shoebox/internal/common"
	"shoebox/internal/index"
	"shoebox/internal/naming"
)

// IngestFile is one raw upload.
type IngestFile struct {
	Data         []byte
	OriginalName string
}

// IngestOptions are metadata fields shared by every file in a batch.
type IngestOptions struct {
	Title       string
	Date        string
	Location    string
	Tags        string
	Description string
	Album       string
}

// IngestResult reports the per-file outcome. Normalized is false on the
// degraded path, where the original bytes were stored under their original
// extension instead of re-encoded JPEG.
type IngestResult struct {
	Filename   string
	Mimetype   string
	Normalized bool
}

// Ingest stores a batch of uploads. Each file is handled independently: a
// normalization failure degrades that file to the fallback path without
// aborting the batch. Records appended so far are persisted in one snapshot,
// also on an early write error, so the index never trails a written file.
func (l *Library) Ingest(files []IngestFile, opts IngestOptions) ([]IngestResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to ingest", common.ErrInvalidInput)
	}

	album, err := l.resolveAlbum(opts.Album)
	if err != nil {
		return nil, err
	}

	date := opts.Date
	if date == "" {
		date = l.now().Format("2006-01-02")
	}

	results := make([]IngestResult, 0, len(files))
	for _, f := range files {
		res, err := l.ingestOne(f, opts, album, date)
		if err != nil {
			// Keep the index in step with files already written.
			if len(results) > 0 {
				if perr := l.index.Persist(); perr != nil {
					return results, perr
				}
			}
			return results, err
		}
		results = append(results, res)
	}

	if err := l.index.Persist(); err != nil {
		return results, err
	}

	l.log.WithFields(log.Fields{"album": album, "count": len(results)}).Info("batch ingested")
	return results, nil
}

// ingestOne writes a single upload and appends its record. Called with the
// engine lock held.
func (l *Library) ingestOne(f IngestFile, opts IngestOptions, album, date string) (IngestResult, error) {
	token := l.mintToken()

	var (
		payload    []byte
		filename   string
		mimetype   string
		normalized bool
	)

	if out, err := l.proc.Normalize(f.Data); err == nil {
		payload = out
		filename = naming.Derive(date, opts.Title, token, naming.DefaultExt)
		mimetype = "image/jpeg"
		normalized = true
	} else {
		// Degraded path: keep the uploaded bytes exactly as received, under
		// their original extension and sniffed mimetype.
		payload = f.Data
		filename = naming.Derive(date, opts.Title, token, naming.Ext(f.OriginalName))
		mimetype = http.DetectContentType(f.Data)
		l.log.WithFields(log.Fields{
			"original": f.OriginalName,
			"filename": filename,
		}).WithError(err).Warn("normalization failed, storing original bytes")
	}

	if err := l.blobs.WriteFile(l.photoPath(album, filename), payload); err != nil {
		return IngestResult{}, fmt.Errorf("%w: write %s: %v", common.ErrIO, filename, err)
	}

	l.index.Append(index.PhotoRecord{
		Filename:     filename,
		OriginalName: f.OriginalName,
		Title:        opts.Title,
		Date:         date,
		Location:     opts.Location,
		Tags:         opts.Tags,
		Description:  opts.Description,
		Album:        album,
		UploadedAt:   l.now(),
		Size:         int64(len(payload)),
		Mimetype:     mimetype,
	})

	return IngestResult{Filename: filename, Mimetype: mimetype, Normalized: normalized}, nil
}

// resolveAlbum sanitizes the requested album name and ensures its directory
// exists. An empty request means the default album.
func (l *Library) resolveAlbum(name string) (string, error) {
	if name == "" {
		name = naming.DefaultAlbum
	}
	slug := naming.AlbumSlug(name)
	if slug == "" {
		return "", fmt.Errorf("%w: album name %q", common.ErrInvalidInput, name)
	}
	if err := l.blobs.EnsureDir(slug); err != nil {
		return "", fmt.Errorf("%w: create album %s: %v", common.ErrIO, slug, err)
	}
	return slug, nil
}
