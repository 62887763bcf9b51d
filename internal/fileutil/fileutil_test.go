package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"photomerge/internal/testsupport"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	testsupport.WriteFile(t, src, "payload bytes")

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "payload bytes" {
		t.Fatalf("copy content = %q", data)
	}
}

func TestCopyIntoCreatesTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "img.jpg")
	testsupport.WriteFile(t, src, "jpeg")

	dst, err := CopyInto(src, filepath.Join(dir, "out", "2020"))
	if err != nil {
		t.Fatalf("copy into: %v", err)
	}
	if filepath.Base(dst) != "img.jpg" {
		t.Fatalf("dst = %s, want original base name", dst)
	}
	if !Exists(dst) {
		t.Fatalf("expected %s to exist", dst)
	}
}
