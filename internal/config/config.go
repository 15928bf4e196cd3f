package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ServerAddr    string `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	MaxSessions   int    `mapstructure:"max_sessions" yaml:"max_sessions"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`

	DefaultChartType string `mapstructure:"default_chart_type" yaml:"default_chart_type"`
	TopValues        int    `mapstructure:"top_values" yaml:"top_values"`

	ImageWidth  int `mapstructure:"image_width" yaml:"image_width"`
	ImageHeight int `mapstructure:"image_height" yaml:"image_height"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"server_addr", "max_upload_mb", "max_sessions", "session_ttl_min",
	"default_chart_type", "top_values", "image_width", "image_height", "log_level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("max_sessions", 10)
	v.SetDefault("session_ttl_min", 30)
	v.SetDefault("default_chart_type", "bar")
	v.SetDefault("top_values", 8)
	v.SetDefault("image_width", 800)
	v.SetDefault("image_height", 400)
	v.SetDefault("log_level", "info")
}

// Dir returns ~/.sheetdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sheetdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sheetdash/config.yaml, creating the directory if necessary.
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
// Precedence: env (SHEETDASH_*, including a .env in the working directory) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warnf("ignoring .env: %v", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SHEETDASH")
	v.AutomaticEnv()
	setDefaults(v)

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
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no command can run with.
func (c *Global) Validate() error {
	if _, err := chart.ParseKind(c.DefaultChartType); err != nil {
		return fmt.Errorf("invalid default_chart_type: %w", err)
	}
	if c.MaxUploadMB <= 0 || c.MaxSessions <= 0 || c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return fmt.Errorf("max_upload_mb, max_sessions, image_width and image_height must be positive")
	}
	if c.SessionTTLMin < 0 || c.TopValues < 0 {
		return fmt.Errorf("session_ttl_min and top_values must not be negative")
	}
	return nil
}

// Get returns the display value for key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "server_addr":
		return c.ServerAddr, nil
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), nil
	case "max_sessions":
		return strconv.Itoa(c.MaxSessions), nil
	case "session_ttl_min":
		return strconv.Itoa(c.SessionTTLMin), nil
	case "default_chart_type":
		return c.DefaultChartType, nil
	case "top_values":
		return strconv.Itoa(c.TopValues), nil
	case "image_width":
		return strconv.Itoa(c.ImageWidth), nil
	case "image_height":
		return strconv.Itoa(c.ImageHeight), nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val for key and stores it.
func (c *Global) Set(key, val string) error {
	atoi := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "server_addr":
		c.ServerAddr = val
	case "max_upload_mb":
		c.MaxUploadMB, err = atoi(1)
	case "max_sessions":
		c.MaxSessions, err = atoi(1)
	case "session_ttl_min":
		c.SessionTTLMin, err = atoi(0)
	case "default_chart_type":
		var k chart.Kind
		if k, err = chart.ParseKind(val); err == nil {
			c.DefaultChartType = string(k)
		}
	case "top_values":
		c.TopValues, err = atoi(0)
	case "image_width":
		c.ImageWidth, err = atoi(1)
	case "image_height":
		c.ImageHeight, err = atoi(1)
	case "log_level":
		switch l := strings.ToLower(val); l {
		case "error", "warn", "info", "debug":
			c.LogLevel = l
		default:
			err = fmt.Errorf("invalid log_level: %s (use error, warn, info or debug)", val)
		}
	default:
		err = fmt.Errorf("unknown key: %s", key)
	}
	return err
}
