package metadata

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// The recognized filename shapes come from surveying real phone and export
// archives. All recovered values are naive local times.
var (
	// IMG-20151231-WA0042.jpg / VID-20151231-WA0007.mp4
	whatsAppPattern = regexp.MustCompile(`^(?:IMG|VID)-(\d{8})-WA(\d{4,})$`)
	// IMG_20160304_060453.jpg, VID_20160304_060453.mp4, with optional ~2 suffix
	androidPattern = regexp.MustCompile(`^(?:IMG|VID|PANO)_(\d{8})_(\d{6})(?:[~_-].*)?$`)
	// PXL_20200818_034514323.jpg (Pixel, trailing milliseconds)
	pixelPattern = regexp.MustCompile(`^PXL_(\d{8})_(\d{6})\d*(?:[~_.-].*)?$`)
	// Screenshot_20160304-060453.png
	screenshotPattern = regexp.MustCompile(`^Screenshot_(\d{8})[-_](\d{6})(?:[~_-].*)?$`)
	// 20160304_060453.jpg
	barePattern = regexp.MustCompile(`^(\d{8})_(\d{6})(?:[~_-].*)?$`)
	// 2016-03-04 06.04.53.jpg
	dottedPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2}) (\d{2})\.(\d{2})\.(\d{2})(?:[~_-].*)?$`)
)

// FromFilename extracts date assertions from a media filename. WhatsApp
// attachments additionally assert their sequence identifier so the merge
// engine can cross-check identities from overlapping exports.
func FromFilename(name string) []Entry {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	if m := whatsAppPattern.FindStringSubmatch(base); m != nil {
		value, err := time.Parse("20060102", m[1])
		if err != nil {
			return nil
		}
		return []Entry{
			TimeEntry(SourceWhatsApp, FieldDateTaken, value, false),
			TextEntry(SourceWhatsApp, FieldWhatsAppSequence, m[2]),
		}
	}

	for _, pattern := range []*regexp.Regexp{androidPattern, pixelPattern, screenshotPattern, barePattern} {
		m := pattern.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		value, err := time.Parse("20060102150405", m[1]+m[2])
		if err != nil {
			continue
		}
		return []Entry{TimeEntry(SourceFilename, FieldDateTaken, value, false)}
	}

	if m := dottedPattern.FindStringSubmatch(base); m != nil {
		value, err := time.Parse("2006-01-02 15.04.05", strings.Join(m[1:4], "-")+" "+strings.Join(m[4:7], "."))
		if err == nil {
			return []Entry{TimeEntry(SourceFilename, FieldDateTaken, value, false)}
		}
	}

	return nil
}

// IsScreenshotName reports whether a filename matches the screenshot pattern
// used by the export classifier.
func IsScreenshotName(name string) bool {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return strings.HasPrefix(strings.ToLower(base), "screenshot")
}

// WhatsAppSequence extracts the message-attachment sequence identifier from a
// filename, if present.
func WhatsAppSequence(name string) (string, bool) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	m := whatsAppPattern.FindStringSubmatch(base)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// IsWhatsAppName reports whether a filename matches the message-attachment
// pattern.
func IsWhatsAppName(name string) bool {
	_, ok := WhatsAppSequence(name)
	return ok
}
