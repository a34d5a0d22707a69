package config

import (
	"github.com/kbukum/graphkit/validation"
)

// Loader configures GraphSON bulk loading.
type Loader struct {
	BatchSize       int  `yaml:"batch_size" mapstructure:"batch_size" validate:"min=1"`
	ContinueOnError bool `yaml:"continue_on_error" mapstructure:"continue_on_error"`
	// CommitRetries is the number of extra attempts for a failed commit.
	CommitRetries   int  `yaml:"commit_retries" mapstructure:"commit_retries" validate:"gte=0,lte=10"`
}

// Observability configures tracing and metrics export. Export is off unless
// Enabled is set.
type Observability struct {
	Enabled         bool    `yaml:"enabled" mapstructure:"enabled"`
	TracingEndpoint string  `yaml:"tracing_endpoint" mapstructure:"tracing_endpoint" validate:"omitempty,hostname_port"`
	MetricsEndpoint string  `yaml:"metrics_endpoint" mapstructure:"metrics_endpoint" validate:"omitempty,hostname_port"`
	SampleRate      float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Insecure        bool    `yaml:"insecure" mapstructure:"insecure"`
}

// Config is the configuration of the graphkit command.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Loader        Loader        `yaml:"loader" mapstructure:"loader"`
	Observability Observability `yaml:"observability" mapstructure:"observability"`
}

// Defaults are registered with the loader before files are read.
var Defaults = map[string]any{
	"name":                           "graphkit",
	"loader.batch_size":              10000,
	"loader.commit_retries":          2,
	"observability.tracing_endpoint": "localhost:4318",
	"observability.metrics_endpoint": "localhost:4318",
	"observability.sample_rate":      1.0,
	"observability.insecure":         true,
}

// ApplyDefaults fills fields left empty after loading.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "graphkit"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Loader.BatchSize == 0 {
		c.Loader.BatchSize = 10000
	}
}

// Validate checks the service fields and the struct tags of every section.
func (c *Config) Validate() error {
	v := c.check(validation.New())
	v.Merge("loader", validation.Validate(c.Loader))
	v.Merge("observability", validation.Validate(c.Observability))
	if c.Observability.Enabled {
		v.Required("observability.tracing_endpoint", c.Observability.TracingEndpoint)
		v.Required("observability.metrics_endpoint", c.Observability.MetricsEndpoint)
	}
	return v.Err()
}
