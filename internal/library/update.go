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

	log "github.com/sirupsen/logrus"

	"shoebox/internal/common"
	"shoebox/internal/index"
	"shoebox/internal/naming"
)

// PhotoPatch is a partial metadata update. Nil fields are left untouched.
type PhotoPatch struct {
	Title       *string
	Date        *string
	Location    *string
	Tags        *string
	Description *string
}

// UpdatePhoto applies a partial edit. A changed date recomputes the
// canonical filename and renames the physical file first; the token is
// recovered from the existing filename so repeated date edits never churn
// the photo's identity, and the stored title is used even when the patch
// also carries a new one (the title is not part of the rename trigger).
// Rename failure aborts the whole edit: no fields change, nothing persists.
func (l *Library) UpdatePhoto(filename string, patch PhotoPatch) (index.PhotoRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index.Get(filename)
	if !ok {
		return index.PhotoRecord{}, fmt.Errorf("%w: photo %s", common.ErrNotFound, filename)
	}

	newFilename := rec.Filename
	if patch.Date != nil && *patch.Date != rec.Date {
		token, ok := naming.ParseToken(rec.Filename)
		if !ok {
			token = l.mintToken()
		}
		newFilename = naming.Derive(*patch.Date, rec.Title, token, naming.Ext(rec.Filename))

		if newFilename != rec.Filename {
			oldPath := l.photoPath(rec.Album, rec.Filename)
			newPath := l.photoPath(rec.Album, newFilename)
			if err := l.blobs.MoveFile(oldPath, newPath); err != nil {
				return index.PhotoRecord{}, fmt.Errorf("%w: rename %s: %v", common.ErrIO, rec.Filename, err)
			}
			if err := l.carrySidecar(oldPath, newPath); err != nil {
				l.blobs.MoveFile(newPath, oldPath)
				return index.PhotoRecord{}, fmt.Errorf("%w: carry backup of %s: %v", common.ErrIO, rec.Filename, err)
			}
		}
	}

	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Date != nil {
		rec.Date = *patch.Date
	}
	if patch.Location != nil {
		rec.Location = *patch.Location
	}
	if patch.Tags != nil {
		rec.Tags = *patch.Tags
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	rec.Filename = newFilename

	l.index.Replace(filename, rec)
	if err := l.index.Persist(); err != nil {
		return index.PhotoRecord{}, err
	}

	if newFilename != filename {
		l.log.WithFields(log.Fields{"from": filename, "to": newFilename}).Info("photo renamed on date edit")
	}
	return rec, nil
}

// MovePhoto relocates a photo to another album, carrying its crop sidecar so
// a later restore still finds it beside the file. Preconditions are checked
// in order, each its own failure: record exists, target differs from the
// current album, target directory is ensurable, and no identically named
// file sits at the target (cross-album collisions are rejected, not merged).
// A rename failure after directory creation leaves the record untouched; the
// empty directory is harmless and may remain.
func (l *Library) MovePhoto(filename, targetAlbum string) (index.PhotoRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index.Get(filename)
	if !ok {
		return index.PhotoRecord{}, fmt.Errorf("%w: photo %s", common.ErrNotFound, filename)
	}

	slug := naming.AlbumSlug(targetAlbum)
	if slug == "" {
		return index.PhotoRecord{}, fmt.Errorf("%w: album name %q", common.ErrInvalidInput, targetAlbum)
	}
	if slug == rec.Album {
		return index.PhotoRecord{}, fmt.Errorf("%w: photo %s is already in album %s", common.ErrPreconditionFailed, filename, slug)
	}
	if err := l.blobs.EnsureDir(slug); err != nil {
		return index.PhotoRecord{}, fmt.Errorf("%w: create album %s: %v", common.ErrIO, slug, err)
	}

	targetPath := l.photoPath(slug, rec.Filename)
	if l.blobs.FileExists(targetPath) {
		return index.PhotoRecord{}, fmt.Errorf("%w: %s already exists in album %s", common.ErrConflict, rec.Filename, slug)
	}

	sourcePath := l.photoPath(rec.Album, rec.Filename)
	if err := l.blobs.MoveFile(sourcePath, targetPath); err != nil {
		return index.PhotoRecord{}, fmt.Errorf("%w: move %s: %v", common.ErrIO, rec.Filename, err)
	}
	if err := l.carrySidecar(sourcePath, targetPath); err != nil {
		l.blobs.MoveFile(targetPath, sourcePath)
		return index.PhotoRecord{}, fmt.Errorf("%w: carry backup of %s: %v", common.ErrIO, rec.Filename, err)
	}

	from := rec.Album
	rec.Album = slug
	l.index.Replace(filename, rec)
	if err := l.index.Persist(); err != nil {
		return index.PhotoRecord{}, err
	}

	l.log.WithFields(log.Fields{"filename": filename, "from": from, "to": slug}).Info("photo moved")
	return rec, nil
}
