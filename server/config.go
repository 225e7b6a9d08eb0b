package server

import (
	"net"
	"strconv"
	"time"

	"github.com/kbukum/authkit/validation"
)

// DefaultListen is the loopback address used when none is configured.
const DefaultListen = "127.0.0.1:8765"

// Config holds loopback server configuration.
type Config struct {
	// Listen is the host:port to bind. Port 0 picks a free port.
	Listen       string        `yaml:"listen" mapstructure:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	v := validation.New()
	v.Custom(c.ReadTimeout >= 0, "server.read_timeout", "must be non-negative")
	v.Custom(c.WriteTimeout >= 0, "server.write_timeout", "must be non-negative")
	v.Custom(c.IdleTimeout >= 0, "server.idle_timeout", "must be non-negative")
	v.Custom(c.Listen == "" || validListen(c.Listen), "server.listen", "must be a host:port address with port 0-65535")
	return v.Err()
}

// validListen accepts host:port with port 0 (any free port) through 65535.
func validListen(addr string) bool {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}
