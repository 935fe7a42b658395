package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Server ServerConfig  `json:"server" yaml:"server"`
	World  WorldConfig   `json:"world" yaml:"world"`
	Redis  RedisConfig   `json:"redis" yaml:"redis"`
	Sounds []SoundConfig `json:"sounds" yaml:"sounds"`
	Events []EventConfig `json:"events" yaml:"events"`
}

type ServerConfig struct {
	Port     int    `json:"port" yaml:"port"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

type WorldConfig struct {
	Name          string   `json:"name" yaml:"name"`
	TickMillis    int      `json:"tick_ms" yaml:"tick_ms"`
	CooldownTicks int      `json:"cooldown_ticks" yaml:"cooldown_ticks"`
	Rotation      []string `json:"rotation" yaml:"rotation"`
	HistorySize   int      `json:"history_size" yaml:"history_size"`               // finished scheduler entries kept
	PlayedHistory int      `json:"played_history_size" yaml:"played_history_size"` // play requests kept by the recorder
}

type RedisConfig struct {
	URL    string `json:"url" yaml:"url"`
	Stream string `json:"stream" yaml:"stream"`
}

// SoundConfig registers a sound beyond the builtin catalog.
type SoundConfig struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Length int    `json:"length" yaml:"length"`
}

// EventConfig declares an ambience event backed by an outcome table.
type EventConfig struct {
	Name            string          `json:"name" yaml:"name"`
	DefaultDuration int             `json:"default_duration" yaml:"default_duration"`
	Outcomes        []OutcomeConfig `json:"outcomes" yaml:"outcomes"`
}

type OutcomeConfig struct {
	Name     string `json:"name" yaml:"name"`
	Sound    string `json:"sound" yaml:"sound"`
	Duration int    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Weight   int    `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Defaults applied by Load when a field is left empty.
const (
	DefaultPort       = 8080
	DefaultLogLevel   = "info"
	DefaultWorldName  = "level2"
	DefaultTickMillis = 50
)

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON or YAML config file (chosen by extension) and
// substitutes environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	resolved := expandEnv(string(data))

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal([]byte(resolved), &cfg)
	default:
		err = json.Unmarshal([]byte(resolved), &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// expandEnv substitutes ${VAR} and ${VAR:default} with environment values.
func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.World.Name == "" {
		c.World.Name = DefaultWorldName
	}
	if c.World.TickMillis == 0 {
		c.World.TickMillis = DefaultTickMillis
	}
}

// Validate performs structural checks. Sound references are checked against
// the live registry at startup, not here.
func (c *Config) Validate() error {
	var errs []error
	if c.World.TickMillis < 0 {
		errs = append(errs, fmt.Errorf("world.tick_ms: negative value %d", c.World.TickMillis))
	}
	if c.World.CooldownTicks < 0 {
		errs = append(errs, fmt.Errorf("world.cooldown_ticks: negative value %d", c.World.CooldownTicks))
	}
	if c.World.HistorySize < 0 {
		errs = append(errs, fmt.Errorf("world.history_size: negative value %d", c.World.HistorySize))
	}
	if c.World.PlayedHistory < 0 {
		errs = append(errs, fmt.Errorf("world.played_history_size: negative value %d", c.World.PlayedHistory))
	}

	for i, s := range c.Sounds {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("sounds[%d]: empty id", i))
		}
		if s.Length < 0 {
			errs = append(errs, fmt.Errorf("sounds[%d] %s: negative length", i, s.ID))
		}
	}

	names := make(map[string]struct{}, len(c.Events))
	for i, e := range c.Events {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("events[%d]: empty name", i))
			continue
		}
		if _, dup := names[e.Name]; dup {
			errs = append(errs, fmt.Errorf("events[%d]: duplicate name %q", i, e.Name))
		}
		names[e.Name] = struct{}{}
		if e.DefaultDuration < 0 {
			errs = append(errs, fmt.Errorf("event %s: negative default_duration", e.Name))
		}
		if len(e.Outcomes) == 0 {
			errs = append(errs, fmt.Errorf("event %s: no outcomes", e.Name))
		}
	}
	return errors.Join(errs...)
}
