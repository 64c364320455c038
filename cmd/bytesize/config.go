package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/axiomhq/bytesize"
	"github.com/axiomhq/bytesize/internal/server"
)

// Config is the configuration of the command line tool.
type Config struct {
	// Path to the log file. Logs go to stderr when empty.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of log messages.
	LogLevel string `mapstructure:"log_level"`

	Engine bytesize.Config `mapstructure:"engine"`
	Server server.Config   `mapstructure:"server"`
}

const envVarPrefix = "BYTESIZE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_file_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("engine.custom_words", bytesize.DefaultCustomWords)
	v.SetDefault("engine.custom_spaces", false)
	v.SetDefault("server.address", "127.0.0.1:8080")
	v.SetDefault("server.engine_cache_ttl", server.DefaultEngineCacheTTL)
}

// LoadConfig reads the config file at path, if any, and applies
// BYTESIZE_* environment variables on top of it.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("no config file at %s", path)
			}
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	// Nested options can be set through the environment as well, for
	// example server.address as BYTESIZE_SERVER_ADDRESS.
	for _, k := range v.AllKeys() {
		envVar := envVarPrefix + "_" + strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVar, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return config, nil
}

// bindFlags makes the named flags override the config keys they map to.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("no flag %q", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}
