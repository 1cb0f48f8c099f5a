package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key looked up in the environment
const EnvPrefix = "GEOMETALENS"

// legacyEnv maps configuration keys to the bare variable names the service has always honoured
var legacyEnv = map[string]string{
	"server.port":               "PORT",
	"upload.max_file_size":      "MAX_FILE_SIZE",
	"upload.allowed_extensions": "ALLOWED_EXTENSIONS",
	"log_level":                 "LOG_LEVEL",
}

// Load reads configuration from defaults, an optional file and the environment.
// Flags bound on v by the caller take precedence over all of them.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v, New())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Upload.AllowedExtensions = normalizeExtensions(cfg.Upload.AllowedExtensions)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_header_timeout", d.Server.ReadHeaderTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)

	v.SetDefault("upload.dir", d.Upload.Dir)
	v.SetDefault("upload.max_file_size", d.Upload.MaxFileSize)
	v.SetDefault("upload.allowed_extensions", d.Upload.AllowedExtensions)

	v.SetDefault("exiftool.path", d.ExifTool.Path)
	v.SetDefault("exiftool.timeout", d.ExifTool.Timeout)
	v.SetDefault("exiftool.max_concurrent", d.ExifTool.MaxConcurrent)
}

// normalizeExtensions lower-cases entries, strips leading dots and splits
// comma-joined values coming from a single environment variable.
func normalizeExtensions(in []string) []string {
	var out []string
	for _, item := range in {
		for _, ext := range strings.Split(item, ",") {
			ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
			if ext != "" {
				out = append(out, ext)
			}
		}
	}
	return out
}
