// Package config defines the read-only configuration contract consumed by
// the application layer.
package config

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (JSON, defaults) and
// ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	// Core settings
	Home() string         // Base directory for obswork data (.obswork)
	DatabasePath() string // SQLite database file path
	CatalogPath() string  // Optional catalog override file (YAML)

	// Attachment storage
	AttachmentBackend() string // "local" or "s3"
	AttachmentDir() string     // Base directory for local attachment storage
	S3Bucket() string          // Bucket name for the S3 backend
	S3Prefix() string          // Optional key prefix for the S3 backend
	S3Region() string          // AWS region for the S3 backend

	// Logging
	StderrLevel() string // Stderr log level (debug, info, warn, error)

	// Test and debug
	TestMode() bool // Suppresses interactive prompts in tests

	// Metadata
	ConfigSource() string // Source of configuration: "json" or "default"
	SettingPath() string  // Path to setting.json if loaded from file
}

// AppConfig is the concrete implementation of the Config interface.
type AppConfig struct {
	home         string
	databasePath string
	catalogPath  string

	attachmentBackend string
	attachmentDir     string
	s3Bucket          string
	s3Prefix          string
	s3Region          string

	stderrLevel string
	testMode    bool

	configSource string
	settingPath  string
}

// Home returns the base directory for obswork data
func (c *AppConfig) Home() string {
	return c.home
}

// DatabasePath returns the SQLite database file path
func (c *AppConfig) DatabasePath() string {
	return c.databasePath
}

// CatalogPath returns the catalog override file path
func (c *AppConfig) CatalogPath() string {
	return c.catalogPath
}

// AttachmentBackend returns the attachment storage backend name
func (c *AppConfig) AttachmentBackend() string {
	return c.attachmentBackend
}

// AttachmentDir returns the base directory for local attachment storage
func (c *AppConfig) AttachmentDir() string {
	return c.attachmentDir
}

// S3Bucket returns the bucket name for the S3 backend
func (c *AppConfig) S3Bucket() string {
	return c.s3Bucket
}

// S3Prefix returns the key prefix for the S3 backend
func (c *AppConfig) S3Prefix() string {
	return c.s3Prefix
}

// S3Region returns the AWS region for the S3 backend
func (c *AppConfig) S3Region() string {
	return c.s3Region
}

// StderrLevel returns the stderr log level
func (c *AppConfig) StderrLevel() string {
	return c.stderrLevel
}

// TestMode returns whether test mode is enabled
func (c *AppConfig) TestMode() bool {
	return c.testMode
}

// ConfigSource returns the source of configuration
func (c *AppConfig) ConfigSource() string {
	return c.configSource
}

// SettingPath returns the path to setting.json if loaded from file
func (c *AppConfig) SettingPath() string {
	return c.settingPath
}

// NewAppConfig creates a new AppConfig with the given values.
// This is typically called by the infrastructure layer after loading and
// merging configurations.
func NewAppConfig(
	home, databasePath, catalogPath string,
	attachmentBackend, attachmentDir string,
	s3Bucket, s3Prefix, s3Region string,
	stderrLevel string, testMode bool,
	configSource, settingPath string,
) *AppConfig {
	return &AppConfig{
		home:              home,
		databasePath:      databasePath,
		catalogPath:       catalogPath,
		attachmentBackend: attachmentBackend,
		attachmentDir:     attachmentDir,
		s3Bucket:          s3Bucket,
		s3Prefix:          s3Prefix,
		s3Region:          s3Region,
		stderrLevel:       stderrLevel,
		testMode:          testMode,
		configSource:      configSource,
		settingPath:       settingPath,
	}
}
