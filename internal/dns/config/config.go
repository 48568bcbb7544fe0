package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Server is a literal numeric nameserver address, optionally with a
	// port ("9.9.9.9" or "9.9.9.9:5353"). When empty, the resolver
	// configuration file is consulted instead.
	Server string `koanf:"server"`

	// ResolvConf is the resolver configuration file read when Server is
	// empty; only its first nameserver directive is honored.
	ResolvConf string `koanf:"resolv_conf" validate:"required"`

	// TimeoutMS bounds each receive attempt, in milliseconds.
	TimeoutMS int `koanf:"timeout_ms" validate:"required,gte=1"`

	// Retries is the total number of attempts per query.
	Retries int `koanf:"retries" validate:"required,gte=1,lte=15"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`
}

// envLoader loads environment variables with the prefix "RRSTUB_",
// lowercasing keys and stripping the prefix. Split out so tests can mock it.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "RRSTUB_",
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, "RRSTUB_")), value
		},
	}), nil)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	// Load default values using structs provider.
	k.Load(structs.Provider(AppConfig{
		ResolvConf: "/etc/resolv.conf",
		TimeoutMS:  3000,
		Retries:    3,
		Env:        "prod",
		LogLevel:   "info",
	}, "koanf"), nil)

	err := envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	// Unmarshal the loaded configuration into AppConfig struct.
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Validate the configuration.
	validate := validator.New(validator.WithRequiredStructEnabled())

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
