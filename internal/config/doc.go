// Package config loads and validates photomerge's TOML configuration,
// including the merge tolerances that drive the metadata reconciliation
// engine. All path values are expanded and absolute after Load.
package config
