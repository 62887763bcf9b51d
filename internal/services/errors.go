package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDecode marks unreadable media: the pixel decoder could not produce a
	// buffer. Files failing this way are recorded as unidentifiable, never
	// silently dropped.
	ErrDecode = errors.New("decode failure")
	// ErrExtraction marks tag or sidecar read errors; the affected entries are
	// treated as absent.
	ErrExtraction = errors.New("extraction failure")
	// ErrPersistence marks datastore failures, which abort the current run.
	ErrPersistence = errors.New("persistence failure")
	// ErrExternalTool marks failures of external executables (exiftool, ffmpeg).
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks inputs that fail precondition checks.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should abort the whole run rather than just
// the current file. Only storage-layer failures are fatal; everything else is
// recorded per file and the batch continues.
func Fatal(err error) bool {
	return errors.Is(err, ErrPersistence) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
