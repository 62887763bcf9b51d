package main

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"photomerge/internal/store"
	"photomerge/internal/testsupport"
)

func TestImportStatusOwnersFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	source := t.TempDir()
	fill := color.NRGBA{R: 120, G: 30, B: 200, A: 255}
	testsupport.WriteJPEG(t, filepath.Join(source, "one.jpg"), 16, 16, fill)
	testsupport.WriteJPEG(t, filepath.Join(source, "copy", "one-again.jpg"), 16, 16, fill)
	testsupport.WritePNG(t, filepath.Join(source, "two.png"), 16, 16, color.NRGBA{R: 9, A: 255})

	out, _, err := runCLI(t, []string{"import", source, "--owner", "alice"}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported 2 new identities, linked 1 duplicates")

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Identities: 2")
	requireContains(t, out, "Locations: 3")

	out, _, err = runCLI(t, []string{"owners"}, env.configPath)
	if err != nil {
		t.Fatalf("owners: %v", err)
	}
	requireContains(t, out, "alice")
}

func TestImportRequiresOwner(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"import", t.TempDir()}, env.configPath)
	if err == nil {
		t.Fatal("expected missing --owner error")
	}
}

func TestSuggestRecordsRelativeFolders(t *testing.T) {
	env := setupCLITestEnv(t)

	source := t.TempDir()
	curated := filepath.Join(source, "trips", "norway")
	if err := os.MkdirAll(curated, 0o755); err != nil {
		t.Fatalf("mkdir curated: %v", err)
	}
	testsupport.WriteJPEG(t, filepath.Join(curated, "fjord.jpg"), 16, 16, color.NRGBA{R: 41, A: 255})

	if _, _, err := runCLI(t, []string{"import", source, "--owner", "alice"}, env.configPath); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, _, err := runCLI(t, []string{"suggest", source, "--owner", "alice"}, env.configPath)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	requireContains(t, out, "Recorded suggestions for 1 of 1 files")

	st, err := store.Open(env.cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	owner, err := st.EnsureOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ensure owner: %v", err)
	}
	locations, err := st.LocationsUnder(context.Background(), owner.ID, source)
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locations))
	}
	if got := locations[0].SuggestedExportPath; got != filepath.Join("trips", "norway") {
		t.Fatalf("unexpected suggestion %q", got)
	}
}
