package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	// Export names first: normalizePaths anchors a relative review dir on
	// Export.ReviewDirName.
	c.normalizeExport()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	// The review dir lives inside the destination root unless the operator
	// points it elsewhere with an absolute (or home-relative) path.
	review := strings.TrimSpace(c.Paths.ReviewDir)
	switch {
	case review == "":
		c.Paths.ReviewDir = filepath.Join(c.Paths.ExportDir, c.Export.ReviewDirName)
	case !filepath.IsAbs(review) && !strings.HasPrefix(review, "~"):
		c.Paths.ReviewDir = filepath.Join(c.Paths.ExportDir, review)
	default:
		if c.Paths.ReviewDir, err = expandPath(review); err != nil {
			return fmt.Errorf("paths.review_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.WhatsAppImagesDir = strings.TrimSpace(c.Export.WhatsAppImagesDir)
	if c.Export.WhatsAppImagesDir == "" {
		c.Export.WhatsAppImagesDir = defaultWhatsAppImagesDir
	}
	c.Export.WhatsAppVideoDir = strings.TrimSpace(c.Export.WhatsAppVideoDir)
	if c.Export.WhatsAppVideoDir == "" {
		c.Export.WhatsAppVideoDir = defaultWhatsAppVideoDir
	}
	c.Export.ScreenshotsDir = strings.TrimSpace(c.Export.ScreenshotsDir)
	if c.Export.ScreenshotsDir == "" {
		c.Export.ScreenshotsDir = defaultScreenshotsDir
	}
	c.Export.ReviewDirName = strings.TrimSpace(c.Export.ReviewDirName)
	if c.Export.ReviewDirName == "" {
		c.Export.ReviewDirName = defaultReviewDir
	}
	if len(c.Export.RequiredFields) == 0 {
		c.Export.RequiredFields = []string{"date-taken"}
	}
	for i, field := range c.Export.RequiredFields {
		c.Export.RequiredFields[i] = strings.ToLower(strings.TrimSpace(field))
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
