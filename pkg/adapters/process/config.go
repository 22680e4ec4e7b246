package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Command is an external program run after every scenario run.
type Command struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	// OnlyFailed skips the command for runs that passed.
	OnlyFailed bool `yaml:"only_failed" json:"only_failed"`
}

// ConfigFile represents the structure of a hooks file.
type ConfigFile struct {
	Hooks []Command `yaml:"hooks" json:"hooks"`
}

// LoadCommands reads a hooks file (YAML or JSON). A missing file yields no commands.
func LoadCommands(path string) ([]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse hooks json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse hooks yaml: %w", err)
		}
	}

	out := make([]Command, 0, len(cfg.Hooks))
	for i, c := range cfg.Hooks {
		if c.Command == "" {
			return nil, fmt.Errorf("hook %d (%q) has no command", i, c.Name)
		}
		if c.Name == "" {
			c.Name = c.Command
		}
		out = append(out, c)
	}
	return out, nil
}
