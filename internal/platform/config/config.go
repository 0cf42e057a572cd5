package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	State   StateConfig   `mapstructure:"state"`
	Cache   CacheConfig   `mapstructure:"cache"`
	OAuth   OAuthConfig   `mapstructure:"oauth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StateConfig struct {
	FilePath string `mapstructure:"file_path"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	FilePath string        `mapstructure:"file_path"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type OAuthConfig struct {
	CallbackAddr string `mapstructure:"callback_addr"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// Load reads the config file when one exists and overlays CORDIAL_*
// environment variables. A missing file is fine; every setting has a
// default.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("cordial")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("state.file_path", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.file_path", "")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("oauth.callback_addr", "127.0.0.1:0")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.file_path", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if dir, err := defaultConfigDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func defaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cordial"), nil
}
