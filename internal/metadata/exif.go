package metadata

import (
	"io"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"photomerge/internal/services"
)

// exifTimeLayout is the EXIF local timestamp format. It carries no zone
// information; awareness comes only from a separate offset tag.
const exifTimeLayout = "2006:01:02 15:04:05"

// FromEXIF decodes embedded tags from r into source-tagged entries. A file
// without an EXIF block yields no entries and no error; a corrupt block is an
// extraction failure the caller records and moves past.
func FromEXIF(r io.Reader) ([]Entry, error) {
	x, err := exif.Decode(r)
	if err != nil {
		if exif.IsCriticalError(err) {
			return nil, services.Wrap(services.ErrExtraction, "metadata", "decode exif", "unreadable tag block", err)
		}
	}
	if x == nil {
		return nil, nil
	}

	var entries []Entry

	if value, aware, ok := exifDateTaken(x); ok {
		entries = append(entries, TimeEntry(SourceEXIF, FieldDateTaken, value, aware))
	}
	if lat, lon, err := x.LatLong(); err == nil {
		entries = append(entries,
			RealEntry(SourceEXIF, FieldGPSLatitude, lat),
			RealEntry(SourceEXIF, FieldGPSLongitude, lon),
		)
	}
	if value, ok := exifString(x, exif.Make); ok {
		entries = append(entries, TextEntry(SourceEXIF, FieldCameraMake, value))
	}
	if value, ok := exifString(x, exif.Model); ok {
		entries = append(entries, TextEntry(SourceEXIF, FieldCameraModel, value))
	}
	if value, ok := exifString(x, exif.ImageDescription); ok {
		entries = append(entries, TextEntry(SourceEXIF, FieldDescription, value))
	}

	return entries, nil
}

func exifDateTaken(x *exif.Exif) (time.Time, bool, bool) {
	raw, ok := exifString(x, exif.DateTimeOriginal)
	if !ok {
		raw, ok = exifString(x, exif.DateTime)
	}
	if !ok {
		return time.Time{}, false, false
	}

	// Cameras writing the offset tag give us an aware value; everything else
	// is local wall-clock time.
	if offset, ok := exifString(x, exif.FieldName("OffsetTimeOriginal")); ok {
		if value, err := time.Parse(exifTimeLayout+"-07:00", raw+offset); err == nil {
			return value, true, true
		}
	}

	value, err := time.Parse(exifTimeLayout, raw)
	if err != nil {
		return time.Time{}, false, false
	}
	return value, false, true
}

func exifString(x *exif.Exif, field exif.FieldName) (string, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return "", false
	}
	value, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	value = strings.TrimSpace(strings.Trim(value, "\x00"))
	if value == "" {
		return "", false
	}
	return value, true
}
