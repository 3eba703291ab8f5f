package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelTrace LogLevel = "trace"
)

// Config holds all application configuration
type Config struct {
	LogLevel         LogLevel
	Port             int
	DataDir          string
	Socket           string // Daemon socket path, empty means the runtime default
	Runtime          string // Container runtime: "docker" or "podman"
	HistoryRetention time.Duration
	HistoryPrune     string // cron spec for the history prune job
}

// StoragePath returns the path to the bbolt database file
func (c *Config) StoragePath() string {
	return filepath.Join(c.DataDir, "dockdeck.db")
}

// Addr returns the HTTP server address
func (c *Config) Addr() string {
	if c.Port == 0 {
		return ":8080"
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Level returns the zerolog level, falling back to info
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(string(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// FromArgs creates a Config from CLI arguments
func FromArgs() *Config {
	cfg, _ := Parse(flag.CommandLine, os.Args[1:])
	return cfg
}

// Parse registers the flags on fs and parses args
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	port := fs.Int("port", 8080, "HTTP server port")
	dataDir := fs.String("data", "./data", "Data directory for storage")
	socket := fs.String("socket", "", "Daemon socket path (default depends on runtime)")
	runtime := fs.String("runtime", "docker", "Container runtime: docker or podman")
	logLevel := fs.String("log-level", "info", "Logging level (info, debug, error, trace)")
	retention := fs.Duration("history-retention", 7*24*time.Hour, "How long command history is kept")
	prune := fs.String("history-prune", "@every 1h", "Cron schedule for pruning command history")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *dataDir == "" {
		*dataDir = "./data"
	}
	if *runtime == "" {
		*runtime = "docker"
	}
	if *logLevel == "" {
		*logLevel = "info"
	}
	if *prune == "" {
		*prune = "@every 1h"
	}

	return &Config{
		Port:             *port,
		DataDir:          *dataDir,
		Socket:           *socket,
		Runtime:          *runtime,
		LogLevel:         LogLevel(*logLevel),
		HistoryRetention: *retention,
		HistoryPrune:     *prune,
	}, nil
}

// Validate validates the configuration and creates necessary directories
func (c *Config) Validate() error {
	if c.HistoryRetention <= 0 {
		return fmt.Errorf("history retention must be positive, got %s", c.HistoryRetention)
	}
	// Ensure data directory exists
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return nil
}
