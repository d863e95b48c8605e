package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/spendboard/internal/analysis"
)

// Global configuration structure.
type Global struct {
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" validate:"required"`

	// HTTP
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
	SessionSecret string `mapstructure:"session_secret" yaml:"session_secret" validate:"omitempty,min=32"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// Column inspection
	TopN          int `mapstructure:"top_n" yaml:"top_n" validate:"min=1,max=100"`
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"min=0,max=200"`

	// Numeric locale; empty means the plain float grammar.
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator" validate:"omitempty,len=1"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator" validate:"omitempty,len=1,nefield=DecimalSeparator"`
}

// Keys lists the configuration keys accepted by Set, in display order.
var Keys = []string{
	"data_dir", "models_dir", "listen_addr", "session_secret", "log_level", "log_format",
	"top_n", "histogram_bins", "decimal_separator", "thousands_separator",
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TableOptions converts the numeric locale settings into parse options.
func (c *Global) TableOptions() analysis.Options {
	opt := analysis.DefaultOptions()
	if r, _ := utf8.DecodeRuneInString(c.DecimalSeparator); r != utf8.RuneError {
		opt.DecimalSeparator = r
	}
	if r, _ := utf8.DecodeRuneInString(c.ThousandsSeparator); r != utf8.RuneError {
		opt.ThousandsSeparator = r
	}
	return opt
}

// DataPath resolves a dataset file name under DataDir.
func (c *Global) DataPath(file string) string {
	return filepath.Join(c.DataDir, file)
}

// DefaultPath returns ~/.spendboard/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".spendboard", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.spendboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flag overrides are applied by cmd.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SPENDBOARD")
	v.AutomaticEnv()

	v.SetDefault("data_dir", ".")
	v.SetDefault("models_dir", "models")
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("session_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("top_n", 10)
	v.SetDefault("histogram_bins", 0)
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".spendboard"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Set assigns a single key from its string form, as given on the command line.
func (c *Global) Set(key, value string) error {
	switch key {
	case "data_dir":
		c.DataDir = value
	case "models_dir":
		c.ModelsDir = value
	case "listen_addr":
		c.ListenAddr = value
	case "session_secret":
		c.SessionSecret = value
	case "log_level":
		c.LogLevel = strings.ToLower(value)
	case "log_format":
		c.LogFormat = strings.ToLower(value)
	case "top_n":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		c.TopN = n
	case "histogram_bins":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		c.HistogramBins = n
	case "decimal_separator":
		c.DecimalSeparator = value
	case "thousands_separator":
		c.ThousandsSeparator = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return c.Validate()
}
