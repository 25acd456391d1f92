package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDir  = ".dbnav"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "DBNAV"
)

// Load reads the configuration. An empty path means ~/.dbnav/config.yaml.
// A missing default file yields the defaults; a missing explicit path is an
// error. Nothing is ever written back.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := configDirPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		v.SetConfigName(configFile)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Preferences.LogFile = expandHome(cfg.Preferences.LogFile)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("preferences.default_backend", "postgres")
	v.SetDefault("preferences.connect_timeout", "10s")
	v.SetDefault("preferences.query_timeout", "30s")
	v.SetDefault("preferences.log_level", "info")
	v.SetDefault("preferences.log_format", "json")
	v.SetDefault("preferences.log_file", filepath.Join("~", configDir, "dbnav.log"))
	v.SetDefault("preferences.default_connection", "")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
