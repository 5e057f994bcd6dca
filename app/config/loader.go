package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goncharom/yomu/app/schedule"
)

// Load reads, defaults, and validates the newsletter configuration.
// Validation is all-or-nothing: any invalid source URL or cron expression
// rejects the whole file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

func setDefaults(config *Config) {
	if config.MaxArticlesPerSource == 0 {
		config.MaxArticlesPerSource = 3
	}
	if config.FallbackBufferCapacity == 0 {
		config.FallbackBufferCapacity = 1000
	}
	if config.PerSourceTimeout == 0 {
		config.PerSourceTimeout = 10 // seconds
	}
}

func validate(config *Config) error {
	if len(config.Sources) == 0 {
		return fmt.Errorf("sources list cannot be empty")
	}
	for i, source := range config.Sources {
		if err := validateSourceURL(source); err != nil {
			return fmt.Errorf("source at index %d: %w", i, err)
		}
	}

	if len(config.Frequencies) == 0 {
		return fmt.Errorf("frequencies list cannot be empty")
	}
	if _, err := schedule.Parse(config.Frequencies); err != nil {
		return err
	}

	if config.MaxArticlesPerSource < 0 {
		return fmt.Errorf("max articles per source must be non-negative")
	}
	if config.FallbackBufferCapacity < 0 {
		return fmt.Errorf("fallback buffer capacity must be non-negative")
	}
	if config.PerSourceTimeout < 0 {
		return fmt.Errorf("per source timeout must be non-negative")
	}

	return nil
}

func validateSourceURL(source string) error {
	if source == "" {
		return fmt.Errorf("source URL cannot be empty")
	}

	parsed, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("invalid source URL %q: %w", source, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("source URL %q must use http or https", source)
	}
	if parsed.Host == "" {
		return fmt.Errorf("source URL %q has no host", source)
	}

	return nil
}
