package decode

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"photomerge/internal/services"
	"photomerge/internal/testsupport"
)

func TestImageDecodesPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.png")
	testsupport.WritePNG(t, path, 16, 12, color.NRGBA{R: 9, G: 9, B: 9, A: 255})

	img, err := Image(path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Fatalf("bounds = %v, want 16x12", img.Bounds())
	}
	if got := img.NRGBAAt(3, 3); got.R != 9 {
		t.Fatalf("pixel = %+v, want R=9", got)
	}
}

func TestImageFailureIsDecodeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	testsupport.WriteFile(t, path, "not an image")

	_, err := Image(path)
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("error %v is not tagged as a decode failure", err)
	}
}

func TestVideoFramesRejectsZeroCount(t *testing.T) {
	_, err := VideoFrames(context.Background(), "ffmpeg", "ffprobe", "x.mp4", 0)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want a validation error", err)
	}
}
