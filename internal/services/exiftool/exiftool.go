package exiftool

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"photomerge/internal/services"
)

// Tag is a single exiftool assignment, rendered as -Name=Value.
type Tag struct {
	Name  string
	Value string
}

// Write applies the provided tags to path in place. The invocation is retried
// once before failing; exiftool exits non-zero for malformed files and for
// transient filesystem hiccups alike, and a second attempt separates the two.
func Write(ctx context.Context, binary, path string, tags []Tag) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "exiftool"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return services.Wrap(services.ErrValidation, "export", "write tags", "empty target path", nil)
	}
	if len(tags) == 0 {
		return nil
	}

	args := make([]string, 0, len(tags)+3)
	args = append(args, "-overwrite_original")
	for _, tag := range tags {
		if strings.TrimSpace(tag.Name) == "" {
			continue
		}
		// Null bytes confuse exiftool's argument parsing.
		value := strings.ReplaceAll(tag.Value, "\x00", "")
		args = append(args, fmt.Sprintf("-%s=%s", tag.Name, value))
	}
	args = append(args, "--", path)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		cmd := exec.CommandContext(ctx, binary, args...)
		output, err := cmd.CombinedOutput()
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
		if ctx.Err() != nil {
			break
		}
	}
	return services.Wrap(services.ErrExternalTool, "export", "write tags", "exiftool failed", lastErr)
}

// Available reports whether the exiftool binary can be found on PATH.
func Available(binary string) bool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "exiftool"
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

// exiftool's local timestamp layout.
const timeLayout = "2006:01:02 15:04:05"

// DateTags builds the tag set for a resolved date-taken value. Naive values
// set only the local EXIF and filesystem dates; timezone-aware values
// additionally carry the offset and the UTC variants used by XMP and
// QuickTime containers.
func DateTags(value time.Time, aware bool) []Tag {
	local := value.Format(timeLayout)
	tags := []Tag{
		{Name: "EXIF:DateTimeOriginal", Value: local},
		{Name: "EXIF:CreateDate", Value: local},
		{Name: "FileCreateDate", Value: local},
		{Name: "FileModifyDate", Value: local},
	}
	if !aware {
		return tags
	}

	offset := value.Format("-07:00")
	utc := value.UTC().Format(timeLayout)
	return append(tags,
		Tag{Name: "EXIF:OffsetTimeOriginal", Value: offset},
		Tag{Name: "XMP:DateTimeOriginal", Value: value.Format(time.RFC3339)},
		Tag{Name: "QuickTime:CreateDate", Value: utc},
		Tag{Name: "Keys:CreationDate", Value: utc},
	)
}

// GPSTags builds the coordinate tag pair.
func GPSTags(lat, lon float64) []Tag {
	return []Tag{
		{Name: "GPSLatitude", Value: fmt.Sprintf("%.8f", lat)},
		{Name: "GPSLongitude", Value: fmt.Sprintf("%.8f", lon)},
		{Name: "GPSLatitudeRef", Value: latRef(lat)},
		{Name: "GPSLongitudeRef", Value: lonRef(lon)},
	}
}

func latRef(lat float64) string {
	if lat < 0 {
		return "S"
	}
	return "N"
}

func lonRef(lon float64) string {
	if lon < 0 {
		return "W"
	}
	return "E"
}

// ErrUnavailable is returned by preflight checks when exiftool is missing.
var ErrUnavailable = errors.New("exiftool not found in PATH")
