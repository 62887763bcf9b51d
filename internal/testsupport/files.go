package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the given content, creating parent
// directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SolidImage returns a width x height image filled with one color.
func SolidImage(width, height int, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
	return img
}

// WritePNG encodes a solid-color PNG test fixture at path.
func WritePNG(t testing.TB, path string, width, height int, fill color.NRGBA) {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, SolidImage(width, height, fill)); err != nil {
		t.Fatalf("encode png %s: %v", path, err)
	}
	WriteFile(t, path, buf.String())
}

// WriteJPEG encodes a solid-color JPEG test fixture at path.
func WriteJPEG(t testing.TB, path string, width, height int, fill color.NRGBA) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, SolidImage(width, height, fill), nil); err != nil {
		t.Fatalf("encode jpeg %s: %v", path, err)
	}
	WriteFile(t, path, buf.String())
}
