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

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoebox/internal/common"
)

// testJPEG returns an encoded JPEG of the given dimensions.
func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 13), G: uint8(y * 7), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestNormalizeReencodesAsJPEG(t *testing.T) {
	t.Parallel()

	p := NewProcessor()
	out, err := p.Normalize(testJPEG(t, 40, 30))
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}

func TestNormalizeAcceptsPNG(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	p := NewProcessor()
	out, err := p.Normalize(buf.Bytes())
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	t.Parallel()

	p := NewProcessor()
	_, err := p.Normalize([]byte("not an image at all"))
	assert.Error(t, err)
}

func TestCrop(t *testing.T) {
	t.Parallel()

	p := NewProcessor()
	src := testJPEG(t, 40, 30)

	out, err := p.Crop(src, Rect{X: 0, Y: 0, Width: 20, Height: 10})
	require.NoError(t, err)
	w, h := decodeDims(t, out)
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)
}

func TestCropFullFrame(t *testing.T) {
	t.Parallel()

	p := NewProcessor()
	out, err := p.Crop(testJPEG(t, 40, 30), Rect{X: 0, Y: 0, Width: 40, Height: 30})
	require.NoError(t, err)
	w, h := decodeDims(t, out)
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
}

func TestCropInvalidRect(t *testing.T) {
	t.Parallel()

	p := NewProcessor()
	src := testJPEG(t, 40, 30)

	tests := []struct {
		name string
		rect Rect
	}{
		{"zero width", Rect{X: 0, Y: 0, Width: 0, Height: 10}},
		{"zero height", Rect{X: 0, Y: 0, Width: 10, Height: 0}},
		{"negative x", Rect{X: -1, Y: 0, Width: 10, Height: 10}},
		{"negative y", Rect{X: 0, Y: -1, Width: 10, Height: 10}},
		{"exceeds width", Rect{X: 35, Y: 0, Width: 10, Height: 10}},
		{"exceeds height", Rect{X: 0, Y: 25, Width: 10, Height: 10}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.Crop(src, tt.rect)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestCropGarbageBytes(t *testing.T) {
	t.Parallel()

	p := NewProcessor()
	_, err := p.Crop([]byte("nope"), Rect{Width: 1, Height: 1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidInput)
}

func TestApplyOrientationDimensions(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))

	tests := []struct {
		orient int
		w, h   int
	}{
		{1, 4, 2},
		{2, 4, 2},
		{3, 4, 2},
		{4, 4, 2},
		{5, 2, 4},
		{6, 2, 4},
		{7, 2, 4},
		{8, 2, 4},
	}

	for _, tt := range tests {
		out := applyOrientation(src, tt.orient)
		assert.Equal(t, tt.w, out.Bounds().Dx(), "orientation %d width", tt.orient)
		assert.Equal(t, tt.h, out.Bounds().Dy(), "orientation %d height", tt.orient)
	}
}

func TestApplyOrientationRotate90(t *testing.T) {
	t.Parallel()

	// 2x1 image: red at (0,0), blue at (1,0).
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	// Orientation 6 is a 90° clockwise rotation: red ends up at the top.
	out := applyOrientation(src, 6)
	require.Equal(t, 1, out.Bounds().Dx())
	require.Equal(t, 2, out.Bounds().Dy())
	assert.Equal(t, red, out.At(0, 0))
	assert.Equal(t, blue, out.At(0, 1))
}
