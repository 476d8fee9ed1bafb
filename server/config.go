package server

import (
	"github.com/kbukum/httptestkit/validation"
)

// DefaultHost is the loopback address servers bind to.
const DefaultHost = "127.0.0.1"

// Config holds test server configuration. There is no port setting: the
// port is always chosen by the OS.
type Config struct {
	Host       string `yaml:"host" mapstructure:"host" validate:"required,ip"`
	DisableH2C bool   `yaml:"disable_h2c" mapstructure:"disable_h2c"`
	// Trace emits a single "Listening on <addr>" line at info level on bind.
	Trace bool `yaml:"trace" mapstructure:"trace"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
