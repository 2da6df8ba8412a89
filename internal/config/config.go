// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iwvelando/installment-plan/internal/cart"
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/iwvelando/installment-plan/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for installment-plan.
type Configuration struct {
	Products []cart.Product `yaml:"products"`
	Session  SessionConfig  `yaml:"session,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, xlsx
}

// SessionConfig selects where computed plans are kept between requests.
type SessionConfig struct {
	Backend string        `yaml:"backend,omitempty"` // memory, redis
	TTL     time.Duration `yaml:"ttl,omitempty"`
	Redis   RedisConfig   `yaml:"redis,omitempty"`
}

// RedisConfig holds connection settings for the redis session backend.
type RedisConfig struct {
	Address  string `yaml:"address,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationOrDefault loads the configuration at configPath. When
// configPath is defaultPath and no file exists there, the built-in defaults
// are returned instead. A missing file at any other path is an error.
func LoadConfigurationOrDefault(configPath, defaultPath string) (*Configuration, error) {
	conf, err := LoadConfiguration(configPath)
	if err == nil {
		return conf, nil
	}
	if configPath == defaultPath {
		if _, statErr := os.Stat(configPath); errors.Is(statErr, fs.ErrNotExist) {
			return LoadConfigurationFromReader(strings.NewReader(""))
		}
	}
	return nil, err
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("INSTALLMENT")
	v.AutomaticEnv()

	v.SetDefault("session.backend", constants.SessionBackendMemory)
	v.SetDefault("session.ttl", constants.DefaultSessionTTL)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if configuration.Session.TTL <= 0 {
		configuration.Session.TTL = constants.DefaultSessionTTL
	}
	if configuration.Session.Backend == "" {
		configuration.Session.Backend = constants.SessionBackendMemory
	}

	return &configuration, nil
}

// decimalHookFunc lets prices be written as YAML numbers or strings.
func decimalHookFunc() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(decimal.Decimal{})
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != target {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(v)
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		default:
			return data, nil
		}
	}
}

// ProductList returns the configured products as a cart.Products list.
func (c *Configuration) ProductList() cart.Products {
	return cart.Products(c.Products)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	products := make([]validation.ProductInfo, 0, len(c.Products))
	for _, p := range c.Products {
		products = append(products, validation.ProductInfo{ID: p.ID, Name: p.Name, Price: p.Price})
	}

	warnings := validation.ValidateProducts(products)
	warnings = append(warnings, validation.ValidateSession(c.Session.Backend, c.Session.Redis.Address)...)
	return warnings
}
