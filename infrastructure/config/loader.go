package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true, "none": true,
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return &cfg, nil
}

// Validate checks values that have no sensible default.
func Validate(cfg *Config) []error {
	var errors []error

	if cfg.Logging.Level != "" && !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errors = append(errors, fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	for channel, lvl := range cfg.Logging.Channels {
		if !validLevels[strings.ToLower(lvl)] {
			errors = append(errors, fmt.Errorf("logging.channels.%s: unknown level %q", channel, lvl))
		}
	}
	if f := cfg.Logging.Console.Format; f != "" && f != "console" && f != "json" {
		errors = append(errors, fmt.Errorf("logging.console.format: must be console or json, got %q", f))
	}
	if r := cfg.GetRouter(); r != "servemux" && r != "chi" {
		errors = append(errors, fmt.Errorf("router: must be servemux or chi, got %q", cfg.Router))
	}
	if cfg.HTTPLogging.MaxBodyBytes < 0 {
		errors = append(errors, fmt.Errorf("http_logging.max_body_bytes: must not be negative"))
	}
	for endpoint, channel := range cfg.HTTPLogging.Endpoints {
		if strings.TrimSpace(channel) == "" {
			errors = append(errors, fmt.Errorf("http_logging.endpoints.%s: empty channel name", endpoint))
		}
	}

	return errors
}
