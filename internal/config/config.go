package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort   = 9090
	DefaultDriver = "sqlite3"
)

// Config holds the runtime settings. Values resolve as defaults, then the
// optional YAML file, then environment variables.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Logging  Logging  `yaml:"logging"`
}

type Server struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxParallelism int           `yaml:"max_parallelism"`
	Playground     *bool         `yaml:"playground"`
}

type Database struct {
	Driver      string        `yaml:"driver"`
	DSN         string        `yaml:"dsn"`
	Debug       bool          `yaml:"debug"`
	Seed        bool          `yaml:"seed"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Addr is the listen address for the HTTP server.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// PlaygroundEnabled defaults to true when unset.
func (s Server) PlaygroundEnabled() bool {
	return s.Playground == nil || *s.Playground
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:           DefaultPort,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxParallelism: 10,
		},
		Database: Database{
			Driver:      DefaultDriver,
			PingTimeout: 5 * time.Second,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load resolves the configuration. path may be empty, in which case
// CONFIG_FILE is consulted; a missing file is not an error.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

type lookupFunc func(string) (string, bool)

func load(path string, lookup lookupFunc) (Config, error) {
	cfg := Config{}

	if strings.TrimSpace(path) == "" {
		path, _ = lookup("CONFIG_FILE")
	}

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return Config{}, fmt.Errorf("merge defaults: %w", err)
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	if v, ok := lookup("DATABASE_DRIVER"); ok && strings.TrimSpace(v) != "" {
		cfg.Database.Driver = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := lookup("DATABASE_DSN"); ok && strings.TrimSpace(v) != "" {
		cfg.Database.DSN = strings.TrimSpace(v)
	}

	for name, target := range map[string]*bool{
		"DATABASE_SEED":  &cfg.Database.Seed,
		"DATABASE_DEBUG": &cfg.Database.Debug,
		"LOG_PRETTY":     &cfg.Logging.Pretty,
	} {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = b
	}

	if v, ok := lookup("LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		cfg.Logging.Level = strings.TrimSpace(v)
	}

	return nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite3":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("postgres driver requires a dsn")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	return nil
}
