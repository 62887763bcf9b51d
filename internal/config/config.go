package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	ExportDir string `toml:"export_dir"`
	ReviewDir string `toml:"review_dir"`
	LogDir    string `toml:"log_dir"`
}

// Tolerances contains the merge-rule thresholds. The defaults mirror the
// rounding behavior observed in real export pipelines; they are configuration
// rather than constants because the right value depends on how coarsely a
// given exporter rounds timestamps and coordinates.
type Tolerances struct {
	GPSMeters             float64 `toml:"gps_meters"`
	AwareTimeSeconds      int     `toml:"aware_time_seconds"`
	NaiveTimeSeconds      int     `toml:"naive_time_seconds"`
	VideoHammingThreshold int     `toml:"video_hamming_threshold"`
}

// Ingest contains worker and decoder settings for import runs.
type Ingest struct {
	Workers     int `toml:"workers"`
	VideoFrames int `toml:"video_frames"`
}

// Export contains settings for the export pipeline.
type Export struct {
	WhatsAppImagesDir string   `toml:"whatsapp_images_dir"`
	WhatsAppVideoDir  string   `toml:"whatsapp_video_dir"`
	ScreenshotsDir    string   `toml:"screenshots_dir"`
	ReviewDirName     string   `toml:"review_dir_name"`
	RequiredFields    []string `toml:"required_fields"`
	WriteTags         bool     `toml:"write_tags"`
	OverwriteExisting bool     `toml:"overwrite_existing"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photomerge.
//
// Sections by subsystem:
//   - Paths: database, export, review, and log directories
//   - Tolerances: merge-rule thresholds (GPS distance, time deltas, video bits)
//   - Ingest: worker pool size and video frame sampling
//   - Export: destination layout names and required-field policy
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Tolerances Tolerances `toml:"tolerances"`
	Ingest     Ingest     `toml:"ingest"`
	Export     Export     `toml:"export"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photomerge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photomerge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs before it starts.
// The export directory is created on a best-effort basis so status commands
// keep working when external storage is unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.ExportDir) != "" {
		_ = os.MkdirAll(c.Paths.ExportDir, 0o755)
	}
	return nil
}

// DatabasePath returns the location of the SQLite catalog.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// LockPath returns the flock path guarding ingest/export runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "photomerge.lock")
}

// ExiftoolBinary returns the exiftool executable name used for tag write-back.
func (c *Config) ExiftoolBinary() string {
	return "exiftool"
}

// FFmpegBinary returns the ffmpeg executable name used for video frame sampling.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for video duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
