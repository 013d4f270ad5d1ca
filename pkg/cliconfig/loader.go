package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. APICTL_LOG_LEVEL.
	EnvPrefix = "APICTL"

	// GlobalConfigDir is the directory under the user config dir.
	GlobalConfigDir = "apictl"
)

// LocalConfigFileNames are searched in the working directory, in order.
var LocalConfigFileNames = []string{".apictl.yaml", ".apictl.yml"}

// GlobalConfigFileNames are searched in the global config directory, in order.
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// ConfigError is a config file that exists but cannot be used.
type ConfigError struct {
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// FindConfigFile returns the first local, then global config file that
// exists, or "" when there is none.
func FindConfigFile() string {
	if cwd, err := os.Getwd(); err == nil {
		for _, name := range LocalConfigFileNames {
			path := filepath.Join(cwd, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	// UserConfigDir honours XDG_CONFIG_HOME.
	if dir, err := os.UserConfigDir(); err == nil {
		for _, name := range GlobalConfigFileNames {
			path := filepath.Join(dir, GlobalConfigDir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Load resolves the configuration. path names an explicit config file, which
// must exist; when empty the default locations are searched.
func Load(path string) (*CLIConfig, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = FindConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, &ConfigError{Path: path, Message: "cannot read file", Err: err}
	}
	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, &ConfigError{Path: path, Message: "invalid syntax", Err: err}
			}
			return nil, &ConfigError{Path: path, Message: "cannot read file", Err: err}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &CLIConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: "invalid value", Err: err}
	}
	cfg.ConfigFile = path
	cfg.Sources = make(map[string]string, len(keys))
	for _, k := range keys {
		switch {
		case os.Getenv(EnvName(k)) != "":
			cfg.Sources[k] = SourceEnv
		case path != "" && v.InConfig(k):
			cfg.Sources[k] = SourceFile
		default:
			cfg.Sources[k] = SourceDefault
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
