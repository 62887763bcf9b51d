package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photomerge/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Tolerances.GPSMeters != 44.0 {
		t.Fatalf("unexpected default GPS tolerance: %v", cfg.Tolerances.GPSMeters)
	}
	if got := cfg.Export.RequiredFields; len(got) != 1 || got[0] != "date-taken" {
		t.Fatalf("unexpected default required fields: %v", got)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
export_dir = "` + filepath.Join(dir, "out") + `"

[tolerances]
gps_meters = 10.5
naive_time_seconds = 60

[ingest]
workers = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Tolerances.GPSMeters != 10.5 {
		t.Fatalf("gps_meters = %v, want 10.5", cfg.Tolerances.GPSMeters)
	}
	if cfg.Tolerances.NaiveTimeSeconds != 60 {
		t.Fatalf("naive_time_seconds = %v, want 60", cfg.Tolerances.NaiveTimeSeconds)
	}
	if cfg.Ingest.Workers != 2 {
		t.Fatalf("workers = %v, want 2", cfg.Ingest.Workers)
	}
	// Untouched sections keep defaults.
	if cfg.Export.ScreenshotsDir != "screenshots" {
		t.Fatalf("screenshots_dir = %q", cfg.Export.ScreenshotsDir)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data_dir not absolute: %q", cfg.Paths.DataDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Tolerances.AwareTimeSeconds != 2 {
		t.Fatalf("aware_time_seconds = %v, want default 2", cfg.Tolerances.AwareTimeSeconds)
	}
}

func TestLoadAnchorsReviewDir(t *testing.T) {
	// Defaults: the review dir resolves inside the destination root, never
	// relative to the process working directory.
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.ReviewDir) {
		t.Fatalf("review_dir not absolute: %q", cfg.Paths.ReviewDir)
	}
	if want := filepath.Join(cfg.Paths.ExportDir, cfg.Export.ReviewDirName); cfg.Paths.ReviewDir != want {
		t.Fatalf("review_dir = %q, want %q", cfg.Paths.ReviewDir, want)
	}

	// A relative override is still anchored on the export dir.
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
export_dir = "` + filepath.Join(dir, "out") + `"
review_dir = "needs-a-look"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "out", "needs-a-look"); cfg.Paths.ReviewDir != want {
		t.Fatalf("review_dir = %q, want %q", cfg.Paths.ReviewDir, want)
	}

	// An absolute override is honored as-is.
	absolute := filepath.Join(dir, "elsewhere")
	content = `
[paths]
export_dir = "` + filepath.Join(dir, "out") + `"
review_dir = "` + absolute + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.ReviewDir != absolute {
		t.Fatalf("review_dir = %q, want %q", cfg.Paths.ReviewDir, absolute)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "negative gps tolerance",
			mutate: func(c *config.Config) { c.Tolerances.GPSMeters = -1 },
			want:   "gps_meters",
		},
		{
			name:   "hamming out of range",
			mutate: func(c *config.Config) { c.Tolerances.VideoHammingThreshold = 65 },
			want:   "video_hamming_threshold",
		},
		{
			name:   "unknown required field",
			mutate: func(c *config.Config) { c.Export.RequiredFields = []string{"camera-make"} },
			want:   "required_fields",
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
