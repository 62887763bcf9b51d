package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"photomerge/internal/config"
	"photomerge/internal/logging"
	"photomerge/internal/merge"
	"photomerge/internal/mergerules"
	"photomerge/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	zonesOnce sync.Once
	zones     merge.TimezoneResolver
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			"stderr",
			filepath.Join(cfg.Paths.LogDir, "photomerge.log"),
		},
	})
}

// acquireLock serializes import and export runs against one catalog. The
// returned release function is safe to defer even on acquisition failure.
func (c *commandContext) acquireLock() (func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return func() {}, err
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return func() {}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return func() {}, fmt.Errorf("another photomerge run holds %s", cfg.LockPath())
	}
	return func() { _ = lock.Unlock() }, nil
}

// newEngine builds the merge engine with the timezone resolver shared across
// commands. Resolver construction can fail (corrupt zone data); the engine
// degrades to offset inference in that case, so the failure is only logged.
func (c *commandContext) newEngine(logger *slog.Logger) (*merge.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.zonesOnce.Do(func() {
		zones, zerr := merge.NewTimezoneResolver()
		if zerr != nil {
			if logger != nil {
				logger.Warn("timezone resolver unavailable; falling back to offset inference", logging.Error(zerr))
			}
			return
		}
		c.zones = zones
	})
	return merge.NewEngine(mergerules.FromConfig(cfg), c.zones), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
