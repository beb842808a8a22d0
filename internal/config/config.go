package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	Title      string `mapstructure:"title" yaml:"title"`
	// label, binary or bool
	FlagStyle string `mapstructure:"flag_style" yaml:"flag_style"`
	SheetName string `mapstructure:"sheet_name" yaml:"sheet_name"`

	SessionTTLMin int `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`

	// Chart size in pixels
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`

	// Headless browser snapshots
	SnapshotTimeoutSec int `mapstructure:"snapshot_timeout_sec" yaml:"snapshot_timeout_sec"`
}

// SessionTTL returns the idle session lifetime.
func (c *Global) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// Dir returns the default config directory, ~/.hostboard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".hostboard"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.hostboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags > env (HOSTBOARD_*) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HOSTBOARD")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("title", "Boston Airbnb Host Behavior")
	v.SetDefault("flag_style", "label")
	v.SetDefault("sheet_name", "")
	v.SetDefault("session_ttl_min", 30)
	v.SetDefault("chart_width", 720)
	v.SetDefault("chart_height", 360)
	v.SetDefault("snapshot_timeout_sec", 30)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.SessionTTLMin <= 0 {
		c.SessionTTLMin = 30
	}
	return &c, nil
}
