package lyt

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	lyterrors "github.com/lytical/app/internal/errors"
	"github.com/lytical/app/internal/logging"
	"github.com/lytical/app/internal/project"
)

// Environment variables read by DefaultConfig and LoadConfig.
const (
	EnvHostname        = "HOSTNAME"
	EnvPort            = "PORT"
	EnvPrefix          = "LYT_PREFIX"
	EnvShutdownTimeout = "LYT_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "LYT_LOG_LEVEL"
	EnvLogFormat       = "LYT_LOG_FORMAT"
)

// Defaults applied to an empty Config.
const (
	DefaultHostname        = "localhost"
	DefaultPort            = 3000
	DefaultBacklog         = 511
	DefaultPrefix          = "/api"
	DefaultShutdownTimeout = "10s"
)

// Config holds configuration for a lyt application
type Config struct {
	// Hostname is the host to bind to (default: localhost)
	Hostname string

	// Port is the port to listen on (default: 3000). 0 is replaced by the
	// default; set ListenConfig.Port to 0 in a server_starting hook to bind
	// a free port.
	Port int

	// Backlog is the listen queue length (default: 511)
	Backlog int

	// Prefix is the path the root router is mounted under (default: /api)
	Prefix string

	// ShutdownTimeout bounds Run's graceful shutdown (default: 10s)
	ShutdownTimeout string

	Logging logging.Config
}

// DefaultConfig returns defaults with environment overrides applied.
// Malformed environment values are ignored.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.loadDefaults()
	cfg.loadEnv(false)
	if err := cfg.Logging.Finalize(logEnv()); err != nil {
		cfg.Logging = logging.Config{}
		_ = cfg.Logging.Finalize(nil)
	}
	return cfg
}

// LoadConfig reads the server and logging sections of the manifest at path,
// then applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	m, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	return ConfigFromManifest(m)
}

// ConfigFromManifest builds a Config from decoded packaging metadata.
func ConfigFromManifest(m *project.Manifest) (*Config, error) {
	cfg := &Config{
		Hostname:        m.Server.Hostname,
		Port:            m.Server.Port,
		Backlog:         m.Server.Backlog,
		Prefix:          m.Server.Prefix,
		ShutdownTimeout: m.Server.ShutdownTimeout,
		Logging:         m.Logging,
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(true); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Logging.Finalize(logEnv()); err != nil {
		return lyterrors.WrapConfigurationError("logging", "validate", err)
	}
	return nil
}

// Addr returns hostname:port
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}

// ShutdownTimeoutDuration parses the shutdown timeout.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

func (c *Config) loadDefaults() {
	if c.Hostname == "" {
		c.Hostname = DefaultHostname
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Backlog == 0 {
		c.Backlog = DefaultBacklog
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func (c *Config) loadEnv(strict bool) error {
	if v := os.Getenv(EnvHostname); v != "" {
		c.Hostname = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			c.Port = port
		} else if strict {
			return lyterrors.WrapConfigurationError(EnvPort, "parse", err)
		}
	}
	if v := os.Getenv(EnvPrefix); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return lyterrors.ConfigurationError("port", fmt.Sprintf("%d is out of range", c.Port))
	}
	if c.Backlog < 0 {
		return lyterrors.ConfigurationError("backlog", "must not be negative")
	}
	if !strings.HasPrefix(c.Prefix, "/") {
		return lyterrors.ConfigurationError("prefix", fmt.Sprintf("%q must start with /", c.Prefix))
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return lyterrors.WrapConfigurationError("shutdown_timeout", "parse", err)
	}
	return nil
}

func logEnv() *logging.Env {
	return &logging.Env{Level: EnvLogLevel, Format: EnvLogFormat}
}
