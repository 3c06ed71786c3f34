package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all client configuration
type Config struct {
	Server        string `yaml:"server" mapstructure:"server"`
	Port          int    `yaml:"port" mapstructure:"port"`
	TLS           bool   `yaml:"tls" mapstructure:"tls"`
	TLSSkipVerify bool   `yaml:"tls_skip_verify" mapstructure:"tls_skip_verify"`
	Nick          string `yaml:"nick" mapstructure:"nick"`

	LobbyChannel  string `yaml:"lobby_channel" mapstructure:"lobby_channel"`
	RoomPrefix    string `yaml:"room_prefix" mapstructure:"room_prefix"`
	NoTopicMarker string `yaml:"no_topic_marker" mapstructure:"no_topic_marker"`

	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	SendRate     float64       `yaml:"send_rate" mapstructure:"send_rate"`
	SendBurst    int           `yaml:"send_burst" mapstructure:"send_burst"`

	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	DataDir  string `yaml:"data_dir" mapstructure:"data_dir"`
}

// EnvPrefix is prepended to environment overrides, e.g. CRUCE_NICK.
const EnvPrefix = "CRUCE"

// Default returns the configuration used for keys missing from the file.
func Default() Config {
	return Config{
		Server:        "irc.libera.chat",
		Port:          6667,
		LobbyChannel:  "#cruce-lobby",
		RoomPrefix:    "#cruce-game",
		NoTopicMarker: "No topic is set",
		DialTimeout:   10 * time.Second,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  10 * time.Second,
		SendRate:      4,
		SendBurst:     8,
		LogLevel:      "info",
		DataDir:       "./data",
	}
}

// Load reads a YAML configuration file, applying defaults and CRUCE_*
// environment overrides. A missing file is created with the defaults.
func Load(path string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	setDefaults(v, def)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("server", def.Server)
	v.SetDefault("port", def.Port)
	v.SetDefault("tls", def.TLS)
	v.SetDefault("tls_skip_verify", def.TLSSkipVerify)
	v.SetDefault("nick", def.Nick)
	v.SetDefault("lobby_channel", def.LobbyChannel)
	v.SetDefault("room_prefix", def.RoomPrefix)
	v.SetDefault("no_topic_marker", def.NoTopicMarker)
	v.SetDefault("dial_timeout", def.DialTimeout)
	v.SetDefault("read_timeout", def.ReadTimeout)
	v.SetDefault("write_timeout", def.WriteTimeout)
	v.SetDefault("send_rate", def.SendRate)
	v.SetDefault("send_burst", def.SendBurst)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("data_dir", def.DataDir)
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values the session cannot work with.
// The nickname may be empty here and supplied on the command line.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("config: server is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if utf8.RuneCountInString(c.Nick) > 9 {
		return fmt.Errorf("config: nick %q longer than 9 characters", c.Nick)
	}
	if !strings.HasPrefix(c.LobbyChannel, "#") && !strings.HasPrefix(c.LobbyChannel, "&") {
		return fmt.Errorf("config: lobby channel %q is not a channel name", c.LobbyChannel)
	}
	if c.RoomPrefix == "" {
		return errors.New("config: room prefix is required")
	}
	if c.SendRate < 0 {
		return errors.New("config: send rate cannot be negative")
	}
	return nil
}
