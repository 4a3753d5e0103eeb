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

// Package imaging is the image-processing collaborator: given raw upload
// bytes it produces normalized JPEG output with the EXIF orientation baked
// in, and it performs crops. The consistency engine treats it as opaque; a
// normalize failure is a data-path branch there, never a hard error.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"

	"shoebox/internal/common"
)

// Rect is a crop rectangle in pixel coordinates. X and Y may be zero.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DefaultQuality is the JPEG encode quality for normalized and cropped output.
const DefaultQuality = 90

// Processor implements normalization and cropping on in-memory bytes.
type Processor struct {
	quality int
}

// NewProcessor returns a processor encoding JPEG at DefaultQuality.
func NewProcessor() *Processor {
	return &Processor{quality: DefaultQuality}
}

// NewProcessorWithQuality returns a processor with an explicit JPEG encode
// quality. Values outside 1-100 fall back to DefaultQuality.
func NewProcessorWithQuality(quality int) *Processor {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Processor{quality: quality}
}

// Normalize decodes the image, applies its EXIF orientation, and re-encodes
// as JPEG. Returns an error when the bytes cannot be decoded; callers fall
// back to storing the original bytes unmodified.
func (p *Processor) Normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = applyOrientation(img, readOrientation(data))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Crop decodes the current bytes, validates the rectangle against the image
// bounds, and re-encodes the cropped region as JPEG. Out-of-bounds or
// degenerate rectangles are invalid input.
func (p *Processor) Crop(data []byte, r Rect) ([]byte, error) {
	if r.Width <= 0 || r.Height <= 0 || r.X < 0 || r.Y < 0 {
		return nil, fmt.Errorf("%w: crop rectangle %+v", common.ErrInvalidInput, r)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if r.X+r.Width > bounds.Dx() || r.Y+r.Height > bounds.Dy() {
		return nil, fmt.Errorf("%w: crop rectangle %+v exceeds image %dx%d",
			common.ErrInvalidInput, r, bounds.Dx(), bounds.Dy())
	}

	cropped := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			cropped.Set(x, y, img.At(bounds.Min.X+r.X+x, bounds.Min.Y+r.Y+y))
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// readOrientation extracts the EXIF orientation tag (1-8). Missing or
// unreadable EXIF means the identity orientation.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orient, err := tag.Int(0)
	if err != nil || orient < 1 || orient > 8 {
		return 1
	}
	return orient
}

// applyOrientation bakes an EXIF orientation into the pixel data.
func applyOrientation(img image.Image, orient int) image.Image {
	switch orient {
	case 2:
		return transform(img, func(w, h, x, y int) (int, int) { return w - 1 - x, y })
	case 3:
		return transform(img, func(w, h, x, y int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4:
		return transform(img, func(w, h, x, y int) (int, int) { return x, h - 1 - y })
	case 5:
		return transformSwapped(img, func(w, h, x, y int) (int, int) { return y, x })
	case 6:
		return transformSwapped(img, func(w, h, x, y int) (int, int) { return y, h - 1 - x })
	case 7:
		return transformSwapped(img, func(w, h, x, y int) (int, int) { return w - 1 - y, h - 1 - x })
	case 8:
		return transformSwapped(img, func(w, h, x, y int) (int, int) { return w - 1 - y, x })
	default:
		return img
	}
}

// transform remaps pixels within the same width/height. The map function
// receives destination coordinates and returns the source coordinates.
func transform(img image.Image, srcAt func(w, h, x, y int) (int, int)) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := srcAt(w, h, x, y)
			out.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return out
}

// transformSwapped remaps pixels into a rotated canvas (width and height
// exchanged). The map function receives source width/height and destination
// coordinates, returning the source coordinates.
func transformSwapped(img image.Image, srcAt func(w, h, x, y int) (int, int)) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			sx, sy := srcAt(w, h, x, y)
			out.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return out
}
