package metadata_test

import (
	"testing"
	"time"

	"photomerge/internal/metadata"
)

func TestFromFilenameDatePatterns(t *testing.T) {
	cases := []struct {
		name string
		want time.Time
	}{
		{"IMG_20160304_060453.jpg", time.Date(2016, 3, 4, 6, 4, 53, 0, time.UTC)},
		{"VID_20160304_060453.mp4", time.Date(2016, 3, 4, 6, 4, 53, 0, time.UTC)},
		{"IMG_20160304_060453~2.jpg", time.Date(2016, 3, 4, 6, 4, 53, 0, time.UTC)},
		{"20160304_060453.jpg", time.Date(2016, 3, 4, 6, 4, 53, 0, time.UTC)},
		{"PXL_20200818_034514323.jpg", time.Date(2020, 8, 18, 3, 45, 14, 0, time.UTC)},
		{"Screenshot_20160304-060453.png", time.Date(2016, 3, 4, 6, 4, 53, 0, time.UTC)},
		{"2016-03-04 06.04.53.jpg", time.Date(2016, 3, 4, 6, 4, 53, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := metadata.FromFilename(tc.name)
			if len(entries) != 1 {
				t.Fatalf("entries = %v, want exactly one", entries)
			}
			entry := entries[0]
			if entry.Field != metadata.FieldDateTaken {
				t.Fatalf("field = %q", entry.Field)
			}
			if entry.TZAware {
				t.Fatal("filename dates must be naive")
			}
			if !entry.Time.Equal(tc.want) {
				t.Fatalf("time = %v, want %v", entry.Time, tc.want)
			}
		})
	}
}

func TestFromFilenameWhatsApp(t *testing.T) {
	entries := metadata.FromFilename("IMG-20151231-WA0042.jpg")
	if len(entries) != 2 {
		t.Fatalf("entries = %v, want date plus sequence", entries)
	}
	if entries[0].Source != metadata.SourceWhatsApp {
		t.Fatalf("source = %q, want whatsapp", entries[0].Source)
	}
	want := time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC)
	if !entries[0].Time.Equal(want) {
		t.Fatalf("date = %v, want %v", entries[0].Time, want)
	}
	if entries[1].Field != metadata.FieldWhatsAppSequence || entries[1].Text != "0042" {
		t.Fatalf("sequence entry = %+v", entries[1])
	}

	seq, ok := metadata.WhatsAppSequence("VID-20151231-WA0007.mp4")
	if !ok || seq != "0007" {
		t.Fatalf("WhatsAppSequence = %q, %v", seq, ok)
	}
}

func TestFromFilenameUnrecognized(t *testing.T) {
	for _, name := range []string{"DSC01234.jpg", "holiday.png", "IMG_1234.jpg", "IMG_20161304_060453.jpg"} {
		if entries := metadata.FromFilename(name); entries != nil {
			t.Fatalf("%s: expected no entries, got %v", name, entries)
		}
	}
}

func TestIsScreenshotName(t *testing.T) {
	if !metadata.IsScreenshotName("Screenshot_20160304-060453.png") {
		t.Fatal("expected screenshot match")
	}
	if metadata.IsScreenshotName("IMG_20160304_060453.jpg") {
		t.Fatal("unexpected screenshot match")
	}
}
