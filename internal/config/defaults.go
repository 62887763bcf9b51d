package config

const (
	defaultDataDir   = "~/.local/share/photomerge"
	defaultExportDir = "~/photomerge/export"
	defaultReviewDir = "conflicted_files_for_review"
	defaultLogDir    = "~/.local/share/photomerge/logs"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	// GPS coordinates rounded to four decimal places by an export pipeline
	// move up to ~44 meters at the equator; two sidecars describing the same
	// capture can therefore disagree by that much.
	defaultGPSToleranceMeters = 44.0

	// Timezone-aware timestamps for one capture should agree almost exactly;
	// a couple of seconds absorbs sub-second truncation.
	defaultAwareTimeSeconds = 2

	// Naive wall-clock values from sidecar exports are often rounded to the
	// minute, so comparison against a converted anchor gets a wider window.
	defaultNaiveTimeSeconds = 120

	defaultVideoHammingThreshold = 6
	defaultVideoFrames           = 4

	defaultWhatsAppImagesDir = "whatsapp"
	defaultWhatsAppVideoDir  = "whatsapp-video"
	defaultScreenshotsDir    = "screenshots"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
			ReviewDir: defaultReviewDir,
			LogDir:    defaultLogDir,
		},
		Tolerances: Tolerances{
			GPSMeters:             defaultGPSToleranceMeters,
			AwareTimeSeconds:      defaultAwareTimeSeconds,
			NaiveTimeSeconds:      defaultNaiveTimeSeconds,
			VideoHammingThreshold: defaultVideoHammingThreshold,
		},
		Ingest: Ingest{
			Workers:     0, // 0 means runtime.GOMAXPROCS(0)
			VideoFrames: defaultVideoFrames,
		},
		Export: Export{
			WhatsAppImagesDir: defaultWhatsAppImagesDir,
			WhatsAppVideoDir:  defaultWhatsAppVideoDir,
			ScreenshotsDir:    defaultScreenshotsDir,
			ReviewDirName:     defaultReviewDir,
			RequiredFields:    []string{"date-taken"},
			WriteTags:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
