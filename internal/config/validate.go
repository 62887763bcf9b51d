package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTolerances(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTolerances() error {
	if c.Tolerances.GPSMeters <= 0 {
		return errors.New("tolerances.gps_meters must be positive")
	}
	if c.Tolerances.AwareTimeSeconds < 0 {
		return errors.New("tolerances.aware_time_seconds must not be negative")
	}
	if c.Tolerances.NaiveTimeSeconds < 0 {
		return errors.New("tolerances.naive_time_seconds must not be negative")
	}
	if c.Tolerances.VideoHammingThreshold < 0 || c.Tolerances.VideoHammingThreshold > 64 {
		return errors.New("tolerances.video_hamming_threshold must be between 0 and 64")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.Workers < 0 {
		return errors.New("ingest.workers must not be negative")
	}
	if c.Ingest.VideoFrames < 1 || c.Ingest.VideoFrames > 16 {
		return errors.New("ingest.video_frames must be between 1 and 16")
	}
	return nil
}

func (c *Config) validateExport() error {
	known := map[string]struct{}{
		"date-taken":    {},
		"gps-latitude":  {},
		"gps-longitude": {},
	}
	for _, field := range c.Export.RequiredFields {
		if _, ok := known[field]; !ok {
			return fmt.Errorf("export.required_fields: unknown field %q", field)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
