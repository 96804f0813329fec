package lambdalint

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/715d/lambdalint/internal/detect"
)

// DefaultConfigFile is the config file name looked up in the working
// directory when no --config flag is given.
const DefaultConfigFile = ".lambdalint.yaml"

// Config is the optional project configuration.
type Config struct {
	// Checks switches individual finding kinds on or off by their kind
	// identifier. Kinds not listed stay enabled.
	Checks map[string]bool `yaml:"checks"`

	// MinSeverity is the lowest severity to report: "low" (default,
	// everything) or "normal".
	MinSeverity string `yaml:"min_severity"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.MinSeverity {
	case "", string(detect.SeverityLow), string(detect.SeverityNormal):
	default:
		return fmt.Errorf("unknown min_severity %q", c.MinSeverity)
	}
	for kind := range c.Checks {
		if _, ok := kindMessages[detect.Kind(kind)]; !ok {
			return fmt.Errorf("unknown check %q", kind)
		}
	}
	return nil
}

// Allows reports whether findings of the given kind pass the config's
// check switches and severity floor.
func (c *Config) Allows(kind detect.Kind) bool {
	if c == nil {
		return true
	}
	if enabled, ok := c.Checks[string(kind)]; ok && !enabled {
		return false
	}
	if c.MinSeverity == string(detect.SeverityNormal) && kind.Severity() == detect.SeverityLow {
		return false
	}
	return true
}
