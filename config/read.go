package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "WSCTX"
)

var GlobalConf *Config

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("dispatch.reference_kinds", []string{"w3c", "submission"})
	viper.SetDefault("dispatch.application_header_prefixes", []string{"X-App-"})
	viper.SetDefault("dispatch.handler_timeout_seconds", 30)
	viper.SetDefault("descriptors.store", "static")
	viper.SetDefault("descriptors.cache_ttl_seconds", 300)
	viper.SetDefault("authorization.enabled", true)
	viper.SetDefault("authorization.casbin_model_path", "")
	viper.SetDefault("authorization.enable_audit", true)
	viper.SetDefault("authorization.superadmin_bypass", true)
	viper.SetDefault("authentication.required", false)
	viper.SetDefault("authentication.require_session", false)
	viper.SetDefault("authentication.session_ttl_minutes", 720)
	viper.SetDefault("authentication.paseto.mode", "local")
	viper.SetDefault("authentication.paseto.access_ttl_minutes", 15)
	viper.SetDefault("authentication.paseto.refresh_ttl_days", 30)
	viper.SetDefault("nats.subject_prefix", "wsctx.endpoints")
	viper.SetDefault("nats.queue_group", "wsctx")
	viper.SetDefault("observability.metrics.path", "/metrics")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.output.stdout", true)
}

func ReadConfig(configPath string) (*Config, error) {
	viper.SetConfigName(ConfigName)
	viper.SetConfigType(ConfigFormat)
	viper.AddConfigPath(configPath)
	setDefaults()

	// Allow env vars to override config values.
	// e.g. WSCTX_DATABASE_HOST overrides database.host
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read the config file (optional in Docker environments)
	if err := viper.ReadInConfig(); err != nil {
		// If config file not found but we have env vars, continue with defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only fail if it's not a "file not found" error
			if os.Getenv(EnvPrefix+"_SERVER_PORT") == "" {
				return nil, fmt.Errorf("error reading config file: %v", err)
			}
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}
