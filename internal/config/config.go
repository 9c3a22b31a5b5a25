// Package config provides configuration structures and loading for intersync.
package config

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Files   FilesConfig   `yaml:"files" mapstructure:"files"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Import  ImportConfig  `yaml:"import" mapstructure:"import"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// APIConfig represents the remote object store connection configuration.
type APIConfig struct {
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
	KeyID      string `yaml:"key_id" mapstructure:"key_id"`
	SecretKey  string `yaml:"secret_key" mapstructure:"secret_key"`
	TimeoutSec int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxRetries int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// FilesConfig represents the local file tree settings.
type FilesConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// ExportConfig represents export-specific settings.
type ExportConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ImportConfig represents import-specific settings.
type ImportConfig struct {
	SafeMode bool `yaml:"safe_mode" mapstructure:"safe_mode"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:   "https://object-store.example.com",
			TimeoutSec: 30,
			MaxRetries: 3,
		},
		Files: FilesConfig{
			Root: "./files",
		},
		Export: ExportConfig{
			Concurrency: 4,
		},
		Import: ImportConfig{
			SafeMode: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, filesRoot string, concurrency int, safeMode bool) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if filesRoot != "" {
		c.Files.Root = filesRoot
	}
	if concurrency > 0 {
		c.Export.Concurrency = concurrency
	}
	if safeMode {
		c.Import.SafeMode = true
	}
}
