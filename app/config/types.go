package config

// Config is the newsletter configuration loaded from the YAML file.
// It is read once at startup and treated as immutable afterwards.
type Config struct {
	Sources     []string `yaml:"sources"`
	Frequencies []string `yaml:"frequencies"`

	MaxArticlesPerSource   int `yaml:"max_articles_per_source"`
	FallbackBufferCapacity int `yaml:"fallback_buffer_capacity"`
	PerSourceTimeout       int `yaml:"per_source_timeout"` // seconds
}
