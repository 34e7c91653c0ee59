// Package config loads process-wide settings once at startup.
//
// Values come from built-in defaults overlaid with PRODUCTS_-prefixed
// environment variables. The first underscore after the prefix separates the
// section from the key: PRODUCTS_STORE_SQLITE_PATH -> store.sqlite_path.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix scopes the environment variables read by Load.
const EnvPrefix = "PRODUCTS_"

const (
	RuntimeLambda = "lambda"
	RuntimeHTTP   = "http"
)

// Config is the root configuration object.
type Config struct {
	Runtime  string         `koanf:"runtime" validate:"required,oneof=lambda http"`
	HTTP     HTTPConfig     `koanf:"http"`
	Log      LogConfig      `koanf:"log"`
	Store    StoreConfig    `koanf:"store"`
	Dispatch DispatchConfig `koanf:"dispatch"`
}

// HTTPConfig configures the local HTTP runtime.
type HTTPConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// StoreConfig selects and parameterises the item store backend.
type StoreConfig struct {
	Driver      string `koanf:"driver" validate:"required,oneof=memory dynamodb s3 sqlite postgres"`
	Table       string `koanf:"table" validate:"required_if=Driver dynamodb"`
	Region      string `koanf:"region"`
	Endpoint    string `koanf:"endpoint" validate:"omitempty,url"`
	PageSize    int32  `koanf:"page_size" validate:"gte=0"`
	Bucket      string `koanf:"bucket" validate:"required_if=Driver s3"`
	Prefix      string `koanf:"prefix"`
	PathStyle   bool   `koanf:"path_style"`
	SQLitePath  string `koanf:"sqlite_path"`
	PostgresDSN string `koanf:"postgres_dsn"`
}

// DispatchConfig toggles request handling behaviour.
type DispatchConfig struct {
	// MissingAs404 makes Get Item answer 404 for absent keys instead of an
	// empty 200.
	MissingAs404 bool `koanf:"missing_as_404"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"runtime":                 RuntimeLambda,
		"http.addr":               ":8080",
		"http.shutdown_timeout":   "10s",
		"log.level":               "info",
		"log.format":              "json",
		"store.driver":            "dynamodb",
		"store.table":             "product-inventory",
		"store.region":            "eu-north-1",
		"store.prefix":            "products/",
		"store.sqlite_path":       "product-inventory.db",
		"dispatch.missing_as_404": false,
	}
}

// Load reads defaults and environment variables, then validates the result.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
