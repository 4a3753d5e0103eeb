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

// Package library is the consistency engine: the one owner of both the
// metadata index and the photo files on disk. Every operation sequences its
// filesystem steps before committing the index snapshot, so the two never
// diverge; a failed step leaves prior state untouched and the snapshot
// unwritten for that attempt.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"

	"shoebox/internal/blob"
	"shoebox/internal/common"
	"shoebox/internal/imaging"
	"shoebox/internal/index"
	"shoebox/internal/naming"
)

const (
	// IndexFile is the snapshot file name at the library root.
	IndexFile = "photos.json"

	// backupSuffix marks the single-level crop sidecar beside a photo.
	backupSuffix = ".backup"

	// lockFile guards a root directory against a second process.
	lockFile = ".shoebox.lock"
)

// Normalizer is the external image collaborator. Normalize failures are a
// data-path branch at ingest, not an operation failure.
type Normalizer interface {
	Normalize(data []byte) ([]byte, error)
	Crop(data []byte, r imaging.Rect) ([]byte, error)
}

// Library sequences filesystem mutations against the index. A single mutex
// serializes all operations; expected load does not justify finer grain.
type Library struct {
	mu    sync.Mutex
	blobs *blob.Store
	index *index.Store
	proc  Normalizer
	lock  *flock.Flock
	log   *log.Entry

	now       func() time.Time
	lastToken int64
}

// New builds a library over an arbitrary filesystem root. Used directly in
// tests with memfs; production callers go through Open.
func New(fs billy.Filesystem, proc Normalizer) (*Library, error) {
	blobs := blob.NewStore(fs)
	if err := blobs.EnsureDir(naming.DefaultAlbum); err != nil {
		return nil, fmt.Errorf("%w: create default album: %v", common.ErrIO, err)
	}

	idx, err := index.Open(fs, IndexFile)
	if err != nil {
		return nil, err
	}

	return &Library{
		blobs: blobs,
		index: idx,
		proc:  proc,
		log:   log.WithField("component", "library"),
		now:   time.Now,
	}, nil
}

// Open opens the library rooted at dir on the real filesystem, creating the
// directory and default album if needed. A flock beside the index keeps a
// second process out; the engine itself assumes a single writer.
func Open(dir string, proc Normalizer) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve library root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("%w: create library root: %v", common.ErrIO, err)
	}

	lock := flock.New(filepath.Join(abs, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire library lock: %v", common.ErrIO, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: library at %s is in use by another process", common.ErrConflict, abs)
	}

	lib, err := New(osfs.New(abs), proc)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	lib.lock = lock
	return lib, nil
}

// Close releases the process lock, if any.
func (l *Library) Close() error {
	if l.lock != nil {
		return l.lock.Unlock()
	}
	return nil
}

// mintToken returns a unique, monotonically increasing token for a freshly
// ingested photo. Milliseconds since epoch, bumped on collision so two files
// in the same batch never share one.
func (l *Library) mintToken() int64 {
	t := l.now().UnixMilli()
	if t <= l.lastToken {
		t = l.lastToken + 1
	}
	l.lastToken = t
	return t
}

// photoPath builds the relative on-disk path for a record.
func (l *Library) photoPath(album, filename string) string {
	return l.blobs.Join(album, filename)
}

// ListPhotos returns a snapshot copy of every record in upload order.
func (l *Library) ListPhotos() []index.PhotoRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index.All()
}

// GetPhoto returns the record for filename.
func (l *Library) GetPhoto(filename string) (index.PhotoRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index.Get(filename)
	if !ok {
		return index.PhotoRecord{}, fmt.Errorf("%w: photo %s", common.ErrNotFound, filename)
	}
	return rec, nil
}

// DeletePhoto removes the physical file, its crop sidecar if one exists,
// and the record. Both file removals are idempotent.
func (l *Library) DeletePhoto(filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index.Get(filename)
	if !ok {
		return fmt.Errorf("%w: photo %s", common.ErrNotFound, filename)
	}

	if err := l.blobs.DeleteFile(l.photoPath(rec.Album, rec.Filename)); err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrIO, rec.Filename, err)
	}
	if err := l.blobs.DeleteFile(l.sidecarPath(rec)); err != nil {
		return fmt.Errorf("%w: delete backup of %s: %v", common.ErrIO, rec.Filename, err)
	}

	l.index.Remove(filename)
	if err := l.index.Persist(); err != nil {
		return err
	}

	l.log.WithFields(log.Fields{"filename": filename, "album": rec.Album}).Info("photo deleted")
	return nil
}
