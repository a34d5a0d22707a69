package config

import (
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/validation"
)

// Environments accepted in ServiceConfig.Environment.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields every graphkit binary shares. Embed it with
// `mapstructure:",squash"` to extend it.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns c. It is promoted through embedding.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills empty fields. Development turns debug on.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate reports every invalid field at once.
func (c *ServiceConfig) Validate() error {
	return c.check(validation.New()).Err()
}

func (c *ServiceConfig) check(v *validation.Validator) *validation.Validator {
	v.Required("name", c.Name)
	v.OneOf("environment", c.Environment, Environments)
	v.Merge("logging", c.Logging.Validate())
	return v
}
