package sidecar

import (
	"path/filepath"
	"testing"
	"time"

	"photomerge/internal/metadata"
	"photomerge/internal/testsupport"
)

func TestDirCacheLinksByTitle(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "IMG_0012.jpg"), "media")
	testsupport.WriteFile(t, filepath.Join(dir, "IMG_0012.jpg.json"),
		`{"title":"IMG_0012.jpg","photoTakenTime":{"timestamp":"1577910600"}}`)
	testsupport.WriteFile(t, filepath.Join(dir, "unrelated.json"),
		`{"title":"other.jpg"}`)

	cache := NewDirCache()
	docs := cache.For(filepath.Join(dir, "IMG_0012.jpg"))
	if len(docs) != 1 {
		t.Fatalf("expected 1 sidecar, got %d", len(docs))
	}
	taken, ok := docs[0].PhotoTakenTime.Time()
	if !ok {
		t.Fatal("expected a parsed photoTakenTime")
	}
	want := time.Date(2020, 1, 1, 20, 30, 0, 0, time.UTC)
	if !taken.Equal(want) {
		t.Fatalf("photoTakenTime = %v, want %v", taken, want)
	}

	if docs := cache.For(filepath.Join(dir, "other.jpg")); len(docs) != 1 {
		t.Fatalf("expected title-keyed match for other.jpg, got %d", len(docs))
	}
}

func TestDirCacheListsDirectoryOnce(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.jpg.json"), `{"title":"a.jpg"}`)

	cache := NewDirCache()
	for i := 0; i < 5; i++ {
		cache.For(filepath.Join(dir, "a.jpg"))
	}
	if got := cache.Listings(); got != 1 {
		t.Fatalf("listings = %d, want 1", got)
	}
}

func TestDirCacheEditedAndCounterVariants(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "IMG_0012.jpg.json"), `{"title":"IMG_0012.jpg"}`)

	cache := NewDirCache()
	if docs := cache.For(filepath.Join(dir, "IMG_0012-edited.jpg")); len(docs) != 1 {
		t.Fatalf("edited variant: got %d sidecars, want 1", len(docs))
	}
	if docs := cache.For(filepath.Join(dir, "IMG_0012(1).jpg")); len(docs) != 1 {
		t.Fatalf("duplicate counter variant: got %d sidecars, want 1", len(docs))
	}
	if docs := cache.For(filepath.Join(dir, "IMG_9999.jpg")); docs != nil {
		t.Fatalf("unmatched file: got %d sidecars, want none", len(docs))
	}
}

func TestDirCacheMergesMultipleSidecars(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.jpg.json"), `{"title":"a.jpg","description":"first"}`)
	testsupport.WriteFile(t, filepath.Join(dir, "a(1).json"), `{"title":"a.jpg","description":"second"}`)

	cache := NewDirCache()
	if docs := cache.For(filepath.Join(dir, "a.jpg")); len(docs) != 2 {
		t.Fatalf("got %d sidecars, want 2", len(docs))
	}
}

func TestDirCacheIgnoresCorruptJSON(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "bad.json"), `{not json`)
	testsupport.WriteFile(t, filepath.Join(dir, "a.jpg.json"), `{"title":"a.jpg"}`)

	cache := NewDirCache()
	if docs := cache.For(filepath.Join(dir, "a.jpg")); len(docs) != 1 {
		t.Fatalf("got %d sidecars, want 1", len(docs))
	}
}

func TestTakeoutEntries(t *testing.T) {
	doc := Takeout{
		Title:          "beach.jpg",
		Description:    "low tide",
		PhotoTakenTime: &TakeoutTime{Timestamp: "1577910600"},
		GeoData:        &GeoData{Latitude: -33.8568, Longitude: 151.2153},
	}

	entries := doc.Entries()
	byField := make(map[metadata.Field]metadata.Entry)
	for _, entry := range entries {
		if entry.Source != metadata.SourceSidecar {
			t.Fatalf("entry %s has source %s, want sidecar", entry.Field, entry.Source)
		}
		byField[entry.Field] = entry
	}

	taken, ok := byField[metadata.FieldDateTaken]
	if !ok || !taken.TZAware {
		t.Fatalf("expected an aware date-taken entry, got %+v", taken)
	}
	if lat := byField[metadata.FieldGPSLatitude]; lat.Real != -33.8568 {
		t.Fatalf("latitude = %v, want -33.8568", lat.Real)
	}
	if title := byField[metadata.FieldTitle]; title.Text != "beach.jpg" {
		t.Fatalf("title = %q", title.Text)
	}
}

func TestTakeoutEntriesSkipsNullIsland(t *testing.T) {
	doc := Takeout{Title: "x.jpg", GeoData: &GeoData{}}
	for _, entry := range doc.Entries() {
		if entry.Field == metadata.FieldGPSLatitude || entry.Field == metadata.FieldGPSLongitude {
			t.Fatalf("zero geoData must not produce GPS entries, got %+v", entry)
		}
	}
}

func TestTakeoutEntriesFallsBackToExifGeo(t *testing.T) {
	doc := Takeout{
		Title:       "x.jpg",
		GeoData:     &GeoData{},
		GeoDataExif: &GeoData{Latitude: 48.8584, Longitude: 2.2945},
	}
	found := false
	for _, entry := range doc.Entries() {
		if entry.Field == metadata.FieldGPSLatitude && entry.Real == 48.8584 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected geoDataExif fallback to produce GPS entries")
	}
}
