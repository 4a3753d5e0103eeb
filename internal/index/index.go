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

// Package index is the metadata side of the library: an append-ordered list
// of photo records mirrored by a single JSON file. The file is rewritten in
// full, pretty-printed, on every mutation; there is no append log and no
// database engine. Writes go through the consistency engine only.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	billyutil "github.com/go-git/go-billy/v5/util"

	"shoebox/internal/util"
)

// PhotoRecord is one stored photo. Field names match the on-disk JSON.
type PhotoRecord struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Title        string    `json:"title"`
	Date         string    `json:"date"`
	Location     string    `json:"location"`
	Tags         string    `json:"tags"`
	Description  string    `json:"description"`
	Album        string    `json:"album"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Size         int64     `json:"size"`
	Mimetype     string    `json:"mimetype"`
}

// Store holds the in-memory records and knows how to load and persist the
// snapshot file. It does no locking; the engine serializes access.
type Store struct {
	fs      billy.Filesystem
	path    string
	records []PhotoRecord
}

// Open loads the snapshot at path, or starts empty when the file does not
// exist yet.
func Open(fs billy.Filesystem, path string) (*Store, error) {
	s := &Store{fs: fs, path: path}

	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return s, nil
}

// Persist rewrites the snapshot file in full. Pretty-printed with 2-space
// indent so the index stays human-diffable. Written to a temp file first,
// then renamed over the old snapshot.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	ctx := context.Background()
	return util.Retry(ctx, func() error {
		if err := billyutil.WriteFile(s.fs, tmp, data, 0644); err != nil {
			return err
		}
		if err := s.fs.Rename(tmp, s.path); err != nil {
			// In-memory backends refuse to rename over an existing file.
			if _, statErr := s.fs.Stat(s.path); statErr != nil {
				return err
			}
			if rmErr := s.fs.Remove(s.path); rmErr != nil {
				return err
			}
			return s.fs.Rename(tmp, s.path)
		}
		return nil
	}, util.SnapshotRetryOptions(ctx)...)
}

// All returns a copy of every record in append order.
func (s *Store) All() []PhotoRecord {
	out := make([]PhotoRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Get returns a copy of the record with the given filename.
func (s *Store) Get(filename string) (PhotoRecord, bool) {
	for i := range s.records {
		if s.records[i].Filename == filename {
			return s.records[i], true
		}
	}
	return PhotoRecord{}, false
}

// Append adds a new record at the end, preserving upload order.
func (s *Store) Append(rec PhotoRecord) {
	s.records = append(s.records, rec)
}

// Replace swaps the record identified by filename for rec. Returns false if
// no such record exists.
func (s *Store) Replace(filename string, rec PhotoRecord) bool {
	for i := range s.records {
		if s.records[i].Filename == filename {
			s.records[i] = rec
			return true
		}
	}
	return false
}

// Remove deletes the record with the given filename. Returns false if no
// such record exists.
func (s *Store) Remove(filename string) bool {
	for i := range s.records {
		if s.records[i].Filename == filename {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// CountByAlbum returns the number of records per album in a single pass.
func (s *Store) CountByAlbum() map[string]int {
	counts := make(map[string]int, 8)
	for i := range s.records {
		counts[s.records[i].Album]++
	}
	return counts
}

// AlbumHasPhotos reports whether any record references the album.
func (s *Store) AlbumHasPhotos(album string) bool {
	for i := range s.records {
		if s.records[i].Album == album {
			return true
		}
	}
	return false
}
