package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigFailedToSetDefaults = errors.New("error occurred while setting defaults")
	ErrConfigPath                = errors.New("config path error")
	ErrConfigFailedToDump        = errors.New("failed to dump config")
)

const envPrefix = "CHAINSTORE"

// Load reads the defaults, overrides them with config.yaml from the given directories and
// finally with CHAINSTORE_ prefixed environment variables.
func Load(configFileDirs ...string) (*ChainstoreConfig, error) {
	v := viper.New()
	cfg := getDefaultConfig()

	err := setDefaults(v, cfg)
	if err != nil {
		return nil, err
	}

	err = overrideWithFiles(v, configFileDirs...)
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err = v.Unmarshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// DumpConfig writes cfg as yaml to configFile.
func DumpConfig(cfg *ChainstoreConfig, configFile string) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	err = os.WriteFile(configFile, b, 0o600)
	if err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	return nil
}

func setDefaults(v *viper.Viper, defaultConfig *ChainstoreConfig) error {
	return setDefaultsWithPrefix(v, "", defaultConfig)
}

// setDefaultsWithPrefix registers every leaf of the defaults under its dotted key, so that
// nested settings can be overridden one by one from files and environment variables.
func setDefaultsWithPrefix(v *viper.Viper, prefix string, input any) error {
	defaultsMap := make(map[string]interface{})

	if err := mapstructure.Decode(input, &defaultsMap); err != nil {
		return errors.Join(ErrConfigFailedToSetDefaults, err)
	}

	for key, value := range defaultsMap {
		if prefix != "" {
			key = prefix + "." + key
		}

		if isNil(value) {
			continue
		}

		if isNested(value) {
			if err := setDefaultsWithPrefix(v, key, value); err != nil {
				return err
			}
			continue
		}

		v.SetDefault(key, value)
	}

	return nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}

	return false
}

func isNested(value any) bool {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	return rv.Kind() == reflect.Struct
}

func overrideWithFiles(v *viper.Viper, configFileDirs ...string) error {
	if len(configFileDirs) == 0 || configFileDirs[0] == "" {
		return nil
	}

	for _, path := range configFileDirs {
		stat, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.Join(ErrConfigPath, fmt.Errorf("path: %s does not exist", path))
			}
			return err
		}
		if !stat.IsDir() {
			return errors.Join(ErrConfigPath, fmt.Errorf("path: %s should be a directory", path))
		}

		v.AddConfigPath(path)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	return v.ReadInConfig()
}
