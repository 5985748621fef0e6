// Package config holds the command line and environment configuration for
// the server and worker binaries.
package config

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/nadmax/yantodo/internal/logger"
)

// Version is overridden at build time with -ldflags.
var Version = "v0.1.0"

type Logging struct {
	LogLevel string `name:"log-level" help:"Log level." env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	LogFile  string `name:"log-file" help:"Also write logs to this rotated file." env:"LOG_FILE" type:"path"`
}

func (l Logging) LoggerConfig(prefix string) logger.Config {
	return logger.Config{Level: l.LogLevel, File: l.LogFile, Prefix: prefix}
}

type Clock struct {
	Timezone string `help:"IANA zone that defines the current day." env:"TIMEZONE" default:"Local"`
}

// Location resolves Timezone. "Local" and "" both mean the host zone.
func (c Clock) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return loc, nil
}

type ServerConfig struct {
	Version kong.VersionFlag `help:"Print version and exit."`

	Port            int           `help:"HTTP listen port." env:"PORT" default:"8080"`
	PostgresDSN     string        `name:"postgres-dsn" help:"PostgreSQL connection string." env:"POSTGRES_DSN" required:""`
	RedisAddr       string        `help:"Redis address for user settings." env:"REDIS_ADDR" default:"localhost:6379"`
	AllowedOrigins  []string      `help:"CORS allowed origins." env:"ALLOWED_ORIGINS" default:"*" sep:","`
	MetricsInterval time.Duration `help:"How often gauges are refreshed." env:"METRICS_INTERVAL" default:"30s"`

	Clock   `embed:""`
	Logging `embed:""`
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("metrics interval must be positive, got %s", c.MetricsInterval)
	}
	_, err := c.Location()
	return err
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type WorkerConfig struct {
	Version kong.VersionFlag `help:"Print version and exit."`

	WorkerID      string        `name:"worker-id" help:"Worker identifier used in logs." env:"WORKER_ID"`
	PostgresDSN   string        `name:"postgres-dsn" help:"PostgreSQL connection string." env:"POSTGRES_DSN" required:""`
	SweepInterval time.Duration `help:"Time between maintenance passes." env:"SWEEP_INTERVAL" default:"1h"`
	Once          bool          `help:"Run a single pass and exit."`

	Clock   `embed:""`
	Logging `embed:""`
}

func (c *WorkerConfig) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.SweepInterval)
	}
	_, err := c.Location()
	return err
}

// Parse fills cfg from args and the environment and validates the result.
func Parse(name, description string, cfg any, args []string, options ...kong.Option) error {
	options = append([]kong.Option{
		kong.Name(name),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	}, options...)

	parser, err := kong.New(cfg, options...)
	if err != nil {
		return err
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	if v, ok := cfg.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
