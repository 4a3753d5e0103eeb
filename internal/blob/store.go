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

// Package blob owns the raw photo bytes on disk. It is a thin,
// key-value-by-path layer over a billy.Filesystem rooted at the photo
// directory, so the consistency engine can be tested against memfs without
// touching real disk. Paths are always relative to the root, "album/file".
package blob

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Store is the narrow filesystem interface the engine mutates through.
type Store struct {
	fs billy.Filesystem
}

// NewStore wraps a filesystem rooted at the photo directory.
func NewStore(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

// EnsureDir creates a directory if it does not exist. Idempotent.
func (s *Store) EnsureDir(name string) error {
	return s.fs.MkdirAll(name, 0755)
}

// DirExists reports whether name exists and is a directory.
func (s *Store) DirExists(name string) bool {
	info, err := s.fs.Stat(name)
	return err == nil && info.IsDir()
}

// FileExists reports whether path exists and is a regular file.
func (s *Store) FileExists(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteFile writes data to path, creating or truncating it.
func (s *Store) WriteFile(path string, data []byte) error {
	return util.WriteFile(s.fs, path, data, 0644)
}

// ReadFile returns the full contents of path.
func (s *Store) ReadFile(path string) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// MoveFile renames oldPath to newPath, atomically where the backing
// filesystem allows. Works across directories under the same root.
//
// The in-memory backend renames every path sharing oldPath as a prefix,
// not just the one file; callers that manage companion files next to a
// photo must check existence before moving them separately.
func (s *Store) MoveFile(oldPath, newPath string) error {
	return s.fs.Rename(oldPath, newPath)
}

// ReplaceFile moves src over dst, overwriting it. Atomic where the backing
// filesystem renames over existing targets; in-memory backends refuse that,
// so an existing dst is removed first.
func (s *Store) ReplaceFile(src, dst string) error {
	err := s.fs.Rename(src, dst)
	if err == nil || !s.FileExists(dst) {
		return err
	}
	if rmErr := s.fs.Remove(dst); rmErr != nil {
		return err
	}
	return s.fs.Rename(src, dst)
}

// CopyFile duplicates src to dst byte-for-byte.
func (s *Store) CopyFile(src, dst string) error {
	data, err := s.ReadFile(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return s.WriteFile(dst, data)
}

// DeleteFile removes path. A missing file is not an error; deletion is
// idempotent at the filesystem level.
func (s *Store) DeleteFile(path string) error {
	err := s.fs.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// DeleteDir removes an empty directory.
func (s *Store) DeleteDir(name string) error {
	return s.fs.Remove(name)
}

// ListDir returns the entries of a directory.
func (s *Store) ListDir(name string) ([]os.FileInfo, error) {
	return s.fs.ReadDir(name)
}

// Join joins path elements for the backing filesystem.
func (s *Store) Join(elem ...string) string {
	return s.fs.Join(elem...)
}

// Fs exposes the backing filesystem for collaborators sharing the root,
// such as the index store.
func (s *Store) Fs() billy.Filesystem {
	return s.fs
}
