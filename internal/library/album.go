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
	"sort"

	"shoebox/internal/common"
	"shoebox/internal/naming"
)

// AlbumSummary is the derived view of an album. Albums have no stored
// metadata; the directory is the album.
type AlbumSummary struct {
	Name       string `json:"name"`
	PhotoCount int    `json:"photoCount"`
	IsDefault  bool   `json:"isDefault"`
}

// ListAlbums enumerates album directories under the root and counts
// referencing records in one grouped pass.
func (l *Library) ListAlbums() ([]AlbumSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.blobs.ListDir(".")
	if err != nil {
		return nil, fmt.Errorf("%w: list albums: %v", common.ErrIO, err)
	}

	counts := l.index.CountByAlbum()
	albums := make([]AlbumSummary, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		albums = append(albums, AlbumSummary{
			Name:       name,
			PhotoCount: counts[name],
			IsDefault:  name == naming.DefaultAlbum,
		})
	}

	sort.Slice(albums, func(i, j int) bool { return albums[i].Name < albums[j].Name })
	return albums, nil
}

// CreateAlbum creates an empty album from a free-form display name. The name
// is sanitized to [a-z0-9-]; an empty result is rejected, as is an existing
// directory of the same sanitized name.
func (l *Library) CreateAlbum(name string) (AlbumSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slug := naming.AlbumSlug(name)
	if slug == "" {
		return AlbumSummary{}, fmt.Errorf("%w: album name %q", common.ErrInvalidInput, name)
	}
	if l.blobs.DirExists(slug) {
		return AlbumSummary{}, fmt.Errorf("%w: album %s", common.ErrConflict, slug)
	}
	if err := l.blobs.EnsureDir(slug); err != nil {
		return AlbumSummary{}, fmt.Errorf("%w: create album %s: %v", common.ErrIO, slug, err)
	}

	l.log.WithField("album", slug).Info("album created")
	return AlbumSummary{Name: slug, IsDefault: slug == naming.DefaultAlbum}, nil
}

// DeleteAlbum removes an empty album. The name is sanitized the same way
// CreateAlbum sanitizes it, so the display name that created an album also
// deletes it. Four independent guards, checked in order: the default album
// is never deletable; the album must exist; no record may reference it; and
// the directory must be empty on disk, which defends against orphaned files
// the index does not know about.
func (l *Library) DeleteAlbum(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	slug := naming.AlbumSlug(name)
	if slug == "" {
		return fmt.Errorf("%w: album name %q", common.ErrInvalidInput, name)
	}
	if slug == naming.DefaultAlbum {
		return fmt.Errorf("%w: the default album cannot be deleted", common.ErrPreconditionFailed)
	}
	if !l.blobs.DirExists(slug) {
		return fmt.Errorf("%w: album %s", common.ErrNotFound, slug)
	}
	if l.index.AlbumHasPhotos(slug) {
		return fmt.Errorf("%w: album %s has photos", common.ErrPreconditionFailed, slug)
	}
	entries, err := l.blobs.ListDir(slug)
	if err != nil {
		return fmt.Errorf("%w: inspect album %s: %v", common.ErrIO, slug, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: album directory %s is not empty", common.ErrPreconditionFailed, slug)
	}

	if err := l.blobs.DeleteDir(slug); err != nil {
		return fmt.Errorf("%w: delete album %s: %v", common.ErrIO, slug, err)
	}

	l.log.WithField("album", slug).Info("album deleted")
	return nil
}
