// Package config loads the daemon's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/pin-tracker/internal/pin"
)

// Defaults applied when the file omits a field.
const (
	DefaultBroker   = "tcp://127.0.0.1:1883"
	DefaultFilter   = "#"
	DefaultHTTPAddr = ":8080"
)

// Config is the daemon configuration.
type Config struct {
	// Broker is the MQTT broker address.
	Broker string `yaml:"broker"`
	// Filter is the MQTT subscription filter for pin topics.
	Filter string `yaml:"filter"`
	// HTTPAddr is the status server address; empty disables it.
	HTTPAddr string `yaml:"http"`
	// Nodes holds per-node settings keyed by node name.
	Nodes map[string]NodeConfig `yaml:"nodes"`
}

// NodeConfig holds per-node settings. Threshold values stay as raw YAML
// nodes so that absent or malformed entries read as "not configured"
// rather than failing the whole load.
type NodeConfig struct {
	AlertTemperature yaml.Node `yaml:"alert-temperature"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config bytes and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.Filter == "" {
		cfg.Filter = DefaultFilter
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	return &cfg, nil
}

// AlertTemperature returns the configured alert threshold for node.
// ok is false when the node or the field is absent or not a number —
// callers must treat that as "not configured", never as an error.
func (c *Config) AlertTemperature(node string) (pin.Temperature, bool) {
	nc, ok := c.Nodes[node]
	if !ok {
		return 0, false
	}
	return TemperatureFromNode(&nc.AlertTemperature)
}

// TemperatureFromNode extracts a Temperature from a generic YAML node.
// A nil, absent, or non-numeric node yields ok=false.
func TemperatureFromNode(node *yaml.Node) (pin.Temperature, bool) {
	if node == nil || node.IsZero() {
		return 0, false
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return 0, false
	}
	return pin.Temperature(f), true
}
