package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Config represents the application configuration
type Config struct {
	LogLevel  string         `mapstructure:"log_level"`
	LogFormat string         `mapstructure:"log_format"`
	Server    ServerConfig   `mapstructure:"server"`
	Upload    UploadConfig   `mapstructure:"upload"`
	ExifTool  ExifToolConfig `mapstructure:"exiftool"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
}

// UploadConfig represents upload handling configuration
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxFileSize       string   `mapstructure:"max_file_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// ExifToolConfig represents the external extraction tool configuration
type ExifToolConfig struct {
	Path          string        `mapstructure:"path"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			Port:              "5000",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			AllowedOrigins:    []string{"*"},
		},
		Upload: UploadConfig{
			Dir:               "uploads",
			MaxFileSize:       "10MB",
			AllowedExtensions: []string{"jpg", "jpeg", "png", "heic", "webp", "tiff", "pdf"},
		},
		ExifTool: ExifToolConfig{
			Path:          "exiftool",
			Timeout:       30 * time.Second,
			MaxConcurrent: 4,
		},
	}
}

// MaxFileSizeBytes parses Upload.MaxFileSize. Both "10MB" and "10485760" are accepted.
func (c *UploadConfig) MaxFileSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(c.MaxFileSize))
	if err != nil {
		return 0, fmt.Errorf("invalid upload.max_file_size %q: %w", c.MaxFileSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("upload.max_file_size must be greater than zero")
	}
	return int64(n), nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Upload.Dir == "" {
		return fmt.Errorf("upload.dir is required")
	}
	if _, err := c.Upload.MaxFileSizeBytes(); err != nil {
		return err
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must not be empty")
	}
	if c.ExifTool.Path == "" {
		return fmt.Errorf("exiftool.path is required")
	}
	if c.ExifTool.Timeout <= 0 {
		return fmt.Errorf("exiftool.timeout must be positive, got %s", c.ExifTool.Timeout)
	}
	if c.ExifTool.MaxConcurrent <= 0 {
		return fmt.Errorf("exiftool.max_concurrent must be positive, got %d", c.ExifTool.MaxConcurrent)
	}
	return nil
}
