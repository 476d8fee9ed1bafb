package config

import (
	"github.com/kbukum/httptestkit/errors"
	"github.com/kbukum/httptestkit/logger"
	"github.com/kbukum/httptestkit/server"
	"github.com/kbukum/httptestkit/validation"
)

// DefaultHost is the loopback address test servers bind to.
const DefaultHost = "127.0.0.1"

// Config holds harness configuration. The zero value is usable after
// ApplyDefaults.
type Config struct {
	// Trace emits a single "Listening on <addr>" line when a server binds.
	Trace bool `yaml:"trace" mapstructure:"trace" json:"trace"`
	// Host is the local IP servers bind to. The port is always chosen by the OS.
	Host string `yaml:"host" mapstructure:"host" json:"host" validate:"required,ip"`
	// Cookies enables a per-client cookie jar.
	Cookies bool `yaml:"cookies" mapstructure:"cookies" json:"cookies"`
	// FollowRedirects makes clients follow 3xx responses instead of returning them.
	FollowRedirects bool `yaml:"follow_redirects" mapstructure:"follow_redirects" json:"follow_redirects"`
	// DisableH2C turns off HTTP/2 cleartext support on test servers.
	DisableH2C bool `yaml:"disable_h2c" mapstructure:"disable_h2c" json:"disable_h2c"`
	// DisablePropagation stops clients injecting trace context headers.
	DisablePropagation bool `yaml:"disable_propagation" mapstructure:"disable_propagation" json:"disable_propagation"`

	Logging logger.Config `yaml:"logging" mapstructure:"logging" json:"logging"`
}

// DefaultConfig returns a configuration with defaults applied.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig(err.Error())
	}
	return nil
}

// NewLogger builds the harness logger described by c.Logging.
func (c *Config) NewLogger() *logger.Logger {
	lc := c.Logging
	lc.ApplyDefaults()
	return logger.New(&lc, "httptestkit")
}

// ServerConfig returns the test server settings carried by c.
func (c *Config) ServerConfig() server.Config {
	return server.Config{
		Host:       c.Host,
		DisableH2C: c.DisableH2C,
		Trace:      c.Trace,
	}
}
