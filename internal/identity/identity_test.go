package identity_test

import (
	"image"
	"image/color"
	"testing"

	"photomerge/internal/identity"
	"photomerge/internal/testsupport"
)

func TestImageDigestStableAcrossCopies(t *testing.T) {
	a := testsupport.SolidImage(32, 24, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	b := testsupport.SolidImage(32, 24, color.NRGBA{R: 200, G: 10, B: 10, A: 255})

	keyA := identity.Image(a)
	keyB := identity.Image(b)
	if keyA != keyB {
		t.Fatalf("identical pixels produced different keys: %s vs %s", keyA, keyB)
	}
	if keyA.Kind != identity.KindImage || len(keyA.Digest) != 64 {
		t.Fatalf("unexpected key shape: %+v", keyA)
	}
}

func TestImageDigestSensitiveToPixels(t *testing.T) {
	a := testsupport.SolidImage(32, 24, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	b := testsupport.SolidImage(32, 24, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	b.SetNRGBA(5, 5, color.NRGBA{R: 201, G: 10, B: 10, A: 255})

	if identity.Image(a) == identity.Image(b) {
		t.Fatal("one changed pixel must change the key")
	}
}

func TestImageDigestSensitiveToDimensions(t *testing.T) {
	a := testsupport.SolidImage(32, 24, color.NRGBA{A: 255})
	b := testsupport.SolidImage(24, 32, color.NRGBA{A: 255})

	if identity.Image(a) == identity.Image(b) {
		t.Fatal("transposed dimensions must change the key")
	}
}

func TestImageDigestIgnoresStridePadding(t *testing.T) {
	fill := color.NRGBA{R: 7, G: 7, B: 7, A: 255}
	plain := testsupport.SolidImage(10, 10, fill)

	// Same pixels viewed through a sub-rectangle of a larger allocation,
	// so the stride exceeds the row width.
	large := testsupport.SolidImage(20, 20, fill)
	sub := large.SubImage(image.Rect(0, 0, 10, 10)).(*image.NRGBA)

	if identity.Image(plain) != identity.Image(sub) {
		t.Fatal("stride padding must not affect the key")
	}
}

func TestVideoDigestWidthAndDistance(t *testing.T) {
	frames := []image.Image{
		testsupport.SolidImage(64, 64, color.NRGBA{R: 255, A: 255}),
		testsupport.SolidImage(64, 64, color.NRGBA{G: 255, A: 255}),
		testsupport.SolidImage(64, 64, color.NRGBA{B: 255, A: 255}),
		testsupport.SolidImage(64, 64, color.NRGBA{R: 255, G: 255, A: 255}),
	}

	key, err := identity.Video(frames)
	if err != nil {
		t.Fatalf("video digest: %v", err)
	}
	if key.Kind != identity.KindVideo || len(key.Digest) != 64 {
		t.Fatalf("unexpected key shape: %+v", key)
	}

	same, err := identity.Video(frames)
	if err != nil {
		t.Fatalf("video digest: %v", err)
	}
	d, err := identity.HammingDistance(key.Digest, same.Digest)
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	if d != 0 {
		t.Fatalf("distance to self = %d, want 0", d)
	}
}

func TestVideoDigestRequiresFrames(t *testing.T) {
	if _, err := identity.Video(nil); err == nil {
		t.Fatal("expected an error for zero frames")
	}
}

func TestHammingDistanceCountsBits(t *testing.T) {
	d, err := identity.HammingDistance("00ff", "00fe")
	if err != nil {
		t.Fatalf("distance: %v", err)
	}
	if d != 1 {
		t.Fatalf("distance = %d, want 1", d)
	}

	if _, err := identity.HammingDistance("00", "0000"); err == nil {
		t.Fatal("expected a width mismatch error")
	}
	if _, err := identity.HammingDistance("zz", "00"); err == nil {
		t.Fatal("expected a hex decode error")
	}
}
