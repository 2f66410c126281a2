package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jobdeck-ai/aigate/pkg/models"
	"github.com/jobdeck-ai/aigate/pkg/quota"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30m" or from a bare number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}
	var seconds int64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all aigate configuration.
type Config struct {
	LedgerDBPath string                            `yaml:"ledger_db_path"`
	CacheDBPath  string                            `yaml:"cache_db_path"`
	Tasks        []TaskConfig                      `yaml:"tasks"`
	TierLimits   map[models.Tier]models.TierLimits `yaml:"tier_limits"`
	Rates        quota.CostTable                   `yaml:"provider_rates"`
}

// TaskConfig registers one logical task: its ordered provider chain,
// cache TTL (zero or negative means never cached), required response
// keys, and per-call timeout.
type TaskConfig struct {
	Name         string   `yaml:"name"`
	Providers    []string `yaml:"providers"`
	CacheTTL     Duration `yaml:"cache_ttl"`
	RequiredKeys []string `yaml:"required_keys"`
	Timeout      Duration `yaml:"timeout"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		LedgerDBPath: "aigate.db",
		CacheDBPath:  "aigate-cache.db",
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Task looks up a task by name.
func (c *Config) Task(name string) (TaskConfig, bool) {
	for _, t := range c.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskConfig{}, false
}
