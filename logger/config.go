package logger

import "github.com/kbukum/graphkit/validation"

var (
	levels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}
	formats = []string{"json", "console", "pretty"}
)

// Config is the `logging` section of the service configuration.
type Config struct {
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	Output      string `yaml:"output" mapstructure:"output"`
	NoColor     bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp   bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller      bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills empty fields: info level, console format on stdout,
// timestamps on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

// Validate reports an unknown level or format. Empty values pass; they are
// filled by ApplyDefaults.
func (c *Config) Validate() error {
	return validation.New().
		OneOf("level", c.Level, levels).
		OneOf("format", c.Format, formats).
		Err()
}
