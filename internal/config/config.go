// Package config holds the settings of the command line runner, read
// from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/thelolagemann/gbcore/pkg/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config is the runner configuration.
type Config struct {
	ROM      string `yaml:"rom"`
	Boot     string `yaml:"boot"`
	Saves    string `yaml:"saves"`
	Model    string `yaml:"model"`
	Cycles   uint64 `yaml:"cycles"`
	LogLevel string `yaml:"log_level"`
	Serial   bool   `yaml:"serial"`
	Trace    bool   `yaml:"trace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Saves:    "saves",
		Model:    "auto",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the model and log level names.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Model) {
	case "", "auto", "dmg", "cgb":
	default:
		return fmt.Errorf("%w: model %q", ErrInvalid, c.Model)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// EmulatedModel returns the model to force, or types.Unset to let the
// cartridge decide.
func (c *Config) EmulatedModel() types.Model {
	return types.StringToModel(c.Model)
}

// Logger returns a logger at the configured level.
func (c *Config) Logger() log.Logger {
	return log.New(c.LogLevel)
}
