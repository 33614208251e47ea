package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oakwood-commons/trainctl/internal/config"
	"github.com/oakwood-commons/trainctl/pkg/settings"
)

const (
	configFileName = "config"
	configFileType = "yaml"
)

// envAliases are short environment names accepted next to the
// TRAINCTL_<SECTION>_<KEY> form derived from the key path.
var envAliases = map[string][]string{
	"api.base_url": {settings.EnvPrefix + "_API_URL"},
	"api.token":    {settings.EnvPrefix + "_TOKEN"},
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"api-url": "api.base_url",
	"locale":  "locale",
}

// configLoader layers the embedded defaults, a user config file, environment
// variables and flags, in increasing precedence.
type configLoader struct {
	defaultConfig func() []byte
	userDir       func() (string, error)
}

var cfgLoader = configLoader{defaultConfig: config.DefaultYAML, userDir: userConfigDir}

func userConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settings.CliBinaryName), nil
}

// loadMergedConfig returns the validated configuration. cfgPath, when set,
// must exist; otherwise the user config directory is searched and a missing
// file is not an error.
func loadMergedConfig(cfgPath string, flags *pflag.FlagSet) (config.Config, error) {
	return cfgLoader.load(cfgPath, flags)
}

func (l configLoader) load(cfgPath string, flags *pflag.FlagSet) (config.Config, error) {
	v := viper.New()
	v.SetConfigType(configFileType)
	if err := v.ReadConfig(bytes.NewReader(l.defaultConfig())); err != nil {
		return config.Config{}, fmt.Errorf("read default config: %w", err)
	}

	if err := l.mergeUserFile(v, cfgPath); err != nil {
		return config.Config{}, err
	}

	v.SetEnvPrefix(settings.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		// BindEnv with explicit names replaces the automatic name; keep both.
		names := append([]string{key}, aliases...)
		names = append(names, settings.EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		if err := v.BindEnv(names...); err != nil {
			return config.Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return config.Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (l configLoader) mergeUserFile(v *viper.Viper, cfgPath string) error {
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", cfgPath, err)
		}
		return nil
	}

	dir, err := l.userDir()
	if err != nil {
		// No home directory; run on defaults.
		return nil //nolint:nilerr
	}
	v.SetConfigName(configFileName)
	v.AddConfigPath(dir)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read user config: %w", err)
	}
	return nil
}

// redacted returns cfg with secrets masked for display.
func redacted(cfg config.Config) config.Config {
	if cfg.API.Token != "" {
		cfg.API.Token = "********"
	}
	return cfg
}
