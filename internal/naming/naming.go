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

// Package naming holds the pure filename and album-name policies. Everything
// here is deterministic: the same inputs always produce the same string, which
// the rename-on-edit flow relies on to keep a photo's identity stable.
package naming

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// DefaultAlbum is the reserved, always-present album name.
const DefaultAlbum = "default"

// DefaultExt is the extension given to normalized photos.
const DefaultExt = ".jpg"

// TitleSlug lowercases the title and maps every character outside [a-z0-9]
// to a hyphen. Titles that are empty or reduce to nothing but hyphens become
// "untitled".
func TitleSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	slug := b.String()
	if strings.Trim(slug, "-") == "" {
		return "untitled"
	}
	return slug
}

// AlbumSlug sanitizes a free-form album name to [a-z0-9-]: lowercased, spaces
// become hyphens, every other disallowed character is dropped. Returns ""
// when nothing survives, which callers must reject.
func AlbumSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Derive builds the canonical on-disk filename {date}_{slug}_{token}{ext}.
// ext must include the leading dot; an empty ext falls back to DefaultExt.
func Derive(date, title string, token int64, ext string) string {
	if ext == "" {
		ext = DefaultExt
	}
	return fmt.Sprintf("%s_%s_%d%s", date, TitleSlug(title), token, ext)
}

// ParseToken recovers the unique integer token from an existing canonical
// filename: the last underscore-delimited segment before the extension.
// Renames reuse the recovered token so that repeated date edits do not churn
// the filename's identity.
func ParseToken(filename string) (int64, bool) {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	idx := strings.LastIndexByte(base, '_')
	if idx < 0 || idx == len(base)-1 {
		return 0, false
	}
	token, err := strconv.ParseInt(base[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return token, true
}

// Ext returns the lowercased extension of a name, including the dot, or
// DefaultExt when the name has none.
func Ext(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return DefaultExt
	}
	return ext
}
