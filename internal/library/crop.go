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
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"shoebox/internal/common"
	"shoebox/internal/imaging"
	"shoebox/internal/index"
	"shoebox/internal/util"
)

// sidecarPath returns the crop sidecar location for a record. The sidecar
// always sits beside the photo at its current album path; move and rename
// carry it along, so this is the single source of truth for every lookup.
func (l *Library) sidecarPath(rec index.PhotoRecord) string {
	return l.photoPath(rec.Album, rec.Filename) + backupSuffix
}

// CropPhoto crops the current on-disk bytes and atomically replaces the
// original. Before the first mutation a sidecar copy of the pre-crop bytes
// is created, exactly once: later crops reuse it, so only the state before
// the very first crop is ever recoverable. The crop itself is computed
// before the sidecar is touched, making a rejected rectangle a strict no-op.
func (l *Library) CropPhoto(filename string, rect imaging.Rect) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index.Get(filename)
	if !ok {
		return fmt.Errorf("%w: photo %s", common.ErrNotFound, filename)
	}

	path := l.photoPath(rec.Album, rec.Filename)
	if !l.blobs.FileExists(path) {
		return fmt.Errorf("%w: photo file missing at %s", common.ErrIO, path)
	}

	ctx := context.Background()
	data, err := util.RetryWithResult(ctx, func() ([]byte, error) {
		return l.blobs.ReadFile(path)
	}, util.SnapshotRetryOptions(ctx)...)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", common.ErrIO, path, err)
	}

	cropped, err := l.proc.Crop(data, rect)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: crop %s: %v", common.ErrIO, filename, err)
	}

	sidecar := l.sidecarPath(rec)
	if !l.blobs.FileExists(sidecar) {
		if err := l.blobs.CopyFile(path, sidecar); err != nil {
			return fmt.Errorf("%w: backup %s: %v", common.ErrIO, filename, err)
		}
	}

	tmp := path + ".tmp-" + uuid.NewString()
	if err := l.blobs.WriteFile(tmp, cropped); err != nil {
		return fmt.Errorf("%w: write crop output: %v", common.ErrIO, err)
	}
	if err := l.blobs.ReplaceFile(tmp, path); err != nil {
		l.blobs.DeleteFile(tmp)
		return fmt.Errorf("%w: replace %s: %v", common.ErrIO, filename, err)
	}

	l.log.WithFields(log.Fields{"filename": filename, "rect": rect}).Info("photo cropped")
	return nil
}

// HasBackup reports whether a crop sidecar currently exists for filename.
// Resolved through the same record-relative path RestorePhoto uses, so the
// two can never disagree.
func (l *Library) HasBackup(filename string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index.Get(filename)
	if !ok {
		return false
	}
	return l.blobs.FileExists(l.sidecarPath(rec))
}

// RestorePhoto copies the sidecar bytes over the current file and consumes
// the sidecar. Strictly single-level: a second restore without an
// intervening crop fails.
func (l *Library) RestorePhoto(filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.index.Get(filename)
	if !ok {
		return fmt.Errorf("%w: photo %s", common.ErrNotFound, filename)
	}

	path := l.photoPath(rec.Album, rec.Filename)
	sidecar := l.sidecarPath(rec)
	if !l.blobs.FileExists(sidecar) {
		return fmt.Errorf("%w: no backup for %s", common.ErrPreconditionFailed, filename)
	}

	if err := l.blobs.CopyFile(sidecar, path); err != nil {
		return fmt.Errorf("%w: restore %s: %v", common.ErrIO, filename, err)
	}
	if err := l.blobs.DeleteFile(sidecar); err != nil {
		return fmt.Errorf("%w: remove backup of %s: %v", common.ErrIO, filename, err)
	}

	l.log.WithField("filename", filename).Info("photo restored from backup")
	return nil
}

// carrySidecar relocates the sidecar beside oldPath to sit beside newPath,
// keeping at most one sidecar per photo across moves and renames. A missing
// source is fine: either no crop happened, or the backing filesystem already
// carried the sidecar with the photo rename. Called with the engine lock
// held.
func (l *Library) carrySidecar(oldPath, newPath string) error {
	oldSidecar := oldPath + backupSuffix
	if !l.blobs.FileExists(oldSidecar) {
		return nil
	}
	return l.blobs.MoveFile(oldSidecar, newPath+backupSuffix)
}
