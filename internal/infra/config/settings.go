// Package config loads runtime settings from setting.json and builds the
// application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atelierlabs/obswork/internal/app/config"
)

// RawSettings represents the structure of the setting.json file.
// Pointer fields distinguish "absent" from zero values so defaults only
// fill what the file left out.
type RawSettings struct {
	// Core settings
	Home         *string `json:"home"`
	DatabasePath *string `json:"database_path"`
	CatalogPath  *string `json:"catalog_path"`

	// Attachment storage
	AttachmentBackend *string `json:"attachment_backend"`
	AttachmentDir     *string `json:"attachment_dir"`
	S3Bucket          *string `json:"s3_bucket"`
	S3Prefix          *string `json:"s3_prefix"`
	S3Region          *string `json:"s3_region"`

	// Logging
	StderrLevel *string `json:"stderr_level"`

	// Test and debug
	TestMode *bool `json:"test_mode"`
}

// LoadSettings loads configuration from setting.json under baseDir.
// Priority: setting.json > OBSWORK_* environment variables > defaults
func LoadSettings(baseDir string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	jsonPath := filepath.Join(baseDir, "setting.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		configSource = "json"
		settingPath = jsonPath
	}

	if applyEnvOverrides(settings) && configSource == "default" {
		configSource = "env"
	}

	applyDefaults(settings, baseDir)

	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	return buildAppConfig(settings, configSource, settingPath), nil
}

// applyEnvOverrides fills nil fields from OBSWORK_* environment variables.
// setting.json wins over the environment, so only absent fields are
// touched. Reports whether any variable applied.
func applyEnvOverrides(settings *RawSettings) bool {
	applied := false

	setString := func(field **string, key string) {
		if *field != nil {
			return
		}
		if v, ok := os.LookupEnv(key); ok {
			*field = &v
			applied = true
		}
	}
	setBool := func(field **bool, key string) {
		if *field != nil {
			return
		}
		if v, ok := os.LookupEnv(key); ok {
			b := toBool(v)
			*field = &b
			applied = true
		}
	}

	setString(&settings.Home, "OBSWORK_HOME")
	setString(&settings.DatabasePath, "OBSWORK_DB_PATH")
	setString(&settings.CatalogPath, "OBSWORK_CATALOG_PATH")
	setString(&settings.AttachmentBackend, "OBSWORK_ATTACHMENT_BACKEND")
	setString(&settings.AttachmentDir, "OBSWORK_ATTACHMENT_DIR")
	setString(&settings.S3Bucket, "OBSWORK_S3_BUCKET")
	setString(&settings.S3Prefix, "OBSWORK_S3_PREFIX")
	setString(&settings.S3Region, "OBSWORK_S3_REGION")
	setString(&settings.StderrLevel, "OBSWORK_STDERR_LEVEL")
	setBool(&settings.TestMode, "OBSWORK_TEST_MODE")

	return applied
}

// toBool converts common string representations to boolean
func toBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings, baseDir string) {
	if settings.Home == nil {
		v := baseDir
		settings.Home = &v
	}
	if settings.DatabasePath == nil {
		v := filepath.Join(*settings.Home, "observations.db")
		settings.DatabasePath = &v
	}
	if settings.CatalogPath == nil {
		v := ""
		settings.CatalogPath = &v
	}

	if settings.AttachmentBackend == nil {
		v := "local"
		settings.AttachmentBackend = &v
	}
	if settings.AttachmentDir == nil {
		v := filepath.Join(*settings.Home, "storage")
		settings.AttachmentDir = &v
	}
	if settings.S3Bucket == nil {
		v := ""
		settings.S3Bucket = &v
	}
	if settings.S3Prefix == nil {
		v := ""
		settings.S3Prefix = &v
	}
	if settings.S3Region == nil {
		v := ""
		settings.S3Region = &v
	}

	if settings.StderrLevel == nil {
		v := "warn"
		settings.StderrLevel = &v
	}

	if settings.TestMode == nil {
		v := false
		settings.TestMode = &v
	}
}

// validateSettings rejects combinations that cannot produce a working
// configuration
func validateSettings(settings *RawSettings) error {
	switch *settings.AttachmentBackend {
	case "local":
		// attachment_dir always has a default
	case "s3":
		if *settings.S3Bucket == "" {
			return fmt.Errorf("attachment_backend is s3 but s3_bucket is empty")
		}
	default:
		return fmt.Errorf("unknown attachment_backend: %s", *settings.AttachmentBackend)
	}
	return nil
}

// buildAppConfig converts RawSettings to AppConfig
func buildAppConfig(settings *RawSettings, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(
		*settings.Home,
		*settings.DatabasePath,
		*settings.CatalogPath,
		*settings.AttachmentBackend,
		*settings.AttachmentDir,
		*settings.S3Bucket,
		*settings.S3Prefix,
		*settings.S3Region,
		*settings.StderrLevel,
		*settings.TestMode,
		configSource,
		settingPath,
	)
}

// CreateDefaultSettings creates default setting.json content for a base
// directory
func CreateDefaultSettings(baseDir string) []byte {
	settings := &RawSettings{}
	applyDefaults(settings, baseDir)

	data, _ := json.MarshalIndent(settings, "", "  ")
	return data
}
