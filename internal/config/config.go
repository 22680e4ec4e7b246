// Package config loads the roadtest configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvSimulator = "ROADTEST_SIMULATOR"
	EnvRedisAddr = "ROADTEST_REDIS_ADDR"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the top-level configuration.
type Config struct {
	Simulator Simulator `yaml:"simulator" json:"simulator"`
	Run       Run       `yaml:"run" json:"run"`
	Store     Store     `yaml:"store" json:"store"`
	Lock      Lock      `yaml:"lock" json:"lock"`
	Server    Server    `yaml:"server" json:"server"`
	Log       Log       `yaml:"log" json:"log"`
}

// Simulator configures the websocket connection and stepping.
type Simulator struct {
	Endpoint         string   `yaml:"endpoint" json:"endpoint"`
	StepCommand      string   `yaml:"step_command" json:"step_command"`
	Step             float64  `yaml:"step" json:"step"`
	StepTimeout      Duration `yaml:"step_timeout" json:"step_timeout"`
	HandshakeTimeout Duration `yaml:"handshake_timeout" json:"handshake_timeout"`
	CloseGrace       Duration `yaml:"close_grace" json:"close_grace"`
}

// Run configures the scheduler.
type Run struct {
	Repetitions int `yaml:"repetitions" json:"repetitions"`
	MaxSteps    int `yaml:"max_steps" json:"max_steps"`
	// HooksFile lists commands run after every scenario run.
	HooksFile string `yaml:"hooks_file" json:"hooks_file"`
	// Retention keeps at most this many reports per scenario. Zero keeps all.
	Retention int `yaml:"retention" json:"retention"`
}

// Store selects where reports are kept.
type Store struct {
	Driver string `yaml:"driver" json:"driver"`
	Redis  Redis  `yaml:"redis" json:"redis"`
}

// Redis holds connection settings for the redis driver.
type Redis struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
}

// Lock serializes runs against one simulator.
type Lock struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Key     string   `yaml:"key" json:"key"`
	TTL     Duration `yaml:"ttl" json:"ttl"`
}

// Server configures the report HTTP server.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level" json:"level"`
	JSON  bool   `yaml:"json" json:"json"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Simulator: Simulator{
			Endpoint:         "ws://localhost:8080/api",
			StepCommand:      "simulator/run",
			Step:             0.05,
			StepTimeout:      Duration{30 * time.Second},
			HandshakeTimeout: Duration{10 * time.Second},
			CloseGrace:       Duration{2 * time.Second},
		},
		Run:    Run{Repetitions: 1},
		Store:  Store{Driver: StoreMemory, Redis: Redis{Addr: "localhost:6379", Prefix: "roadtest:report:"}},
		Lock:   Lock{Key: "roadtest:simulator", TTL: Duration{10 * time.Minute}},
		Server: Server{Addr: ":8090"},
		Log:    Log{Level: "info"},
	}
}

// Load reads the file at path over the defaults, applies environment overrides
// and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config json: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config yaml: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSimulator); v != "" {
		c.Simulator.Endpoint = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Store.Redis.Addr = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Simulator.Endpoint); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		errs = append(errs, fmt.Errorf("simulator.endpoint must be a ws:// or wss:// url, got %q", c.Simulator.Endpoint))
	}
	if c.Simulator.Step <= 0 {
		errs = append(errs, fmt.Errorf("simulator.step must be positive, got %v", c.Simulator.Step))
	}
	if c.Run.Repetitions < 1 {
		errs = append(errs, fmt.Errorf("run.repetitions must be at least 1, got %d", c.Run.Repetitions))
	}
	if c.Run.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("run.max_steps must not be negative, got %d", c.Run.MaxSteps))
	}
	if c.Run.Retention < 0 {
		errs = append(errs, fmt.Errorf("run.retention must not be negative, got %d", c.Run.Retention))
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver must be %q or %q, got %q", StoreMemory, StoreRedis, c.Store.Driver))
	}
	return errors.Join(errs...)
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	return d.parse(s)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
