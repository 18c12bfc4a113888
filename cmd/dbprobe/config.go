package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the dbprobe configuration file: named connections so DSNs do not
// have to be retyped for every probe.
type Config struct {
	Connections []ConnectionSpec `yaml:"connections"`
}

// ConnectionSpec is one named connection in the config file. Everything
// past the DSN is optional: mode defaults to best, access to read-write,
// and the search path to the engine's own default.
type ConnectionSpec struct {
	Name       string `yaml:"name"`
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	Mode       string `yaml:"mode,omitempty"`
	Access     string `yaml:"access,omitempty"`
	SearchPath string `yaml:"search_path,omitempty"`
}

// loadConfig reads and parses the YAML config file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}
	return &cfg, nil
}

// findConnection looks a named connection up in the config file.
func findConnection(path, name string) (*ConnectionSpec, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	for i := range cfg.Connections {
		if cfg.Connections[i].Name == name {
			return &cfg.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("connection %q not found in %s", name, path)
}
