package services_test

import (
	"errors"
	"strings"
	"testing"

	"photomerge/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("disk full")
	err := services.Wrap(services.ErrPersistence, "ingest", "insert location", "could not persist location", cause)

	if !errors.Is(err, services.ErrPersistence) {
		t.Fatalf("expected ErrPersistence marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	for _, fragment := range []string{"ingest", "insert location", "disk full"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing %q", err, fragment)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrDecode, "identity", "decode pixels", "unsupported format", nil)
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode marker, got %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	if services.Fatal(services.Wrap(services.ErrDecode, "identity", "", "", nil)) {
		t.Fatal("decode failures must not abort the run")
	}
	if !services.Fatal(services.Wrap(services.ErrPersistence, "store", "", "", nil)) {
		t.Fatal("persistence failures must abort the run")
	}
}
