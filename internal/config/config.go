// Package config initializes and loads the application configuration.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SHEET_INGEST_SERVER_HTTP_PORT.
const EnvPrefix = "SHEET_INGEST"

type BasicAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Server struct {
		BindAddress         string          `mapstructure:"bind_address"`
		GRPCPort            int             `mapstructure:"grpc_port"`
		HTTPPort            int             `mapstructure:"http_port"`
		HealthProbeInterval int             `mapstructure:"health_probe_interval_seconds"`
		BasicAuth           BasicAuthConfig `mapstructure:"basic_auth"`
		RateLimit           RateLimitConfig `mapstructure:"rate_limit"`
		CORS                CORSConfig      `mapstructure:"cors"`
	} `mapstructure:"server"`
	Ingest struct {
		MaxBatchLines int    `mapstructure:"max_batch_lines"`
		DefaultType   string `mapstructure:"default_type"`
	} `mapstructure:"ingest"`
	Settings struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"settings"`
	Logging struct {
		Level            string   `mapstructure:"level"`
		Encoding         string   `mapstructure:"encoding"`
		OutputPaths      []string `mapstructure:"output_paths"`
		ErrorOutputPaths []string `mapstructure:"error_output_paths"`
	} `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind_address", "")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.health_probe_interval_seconds", 30)
	v.SetDefault("server.basic_auth.enabled", false)
	v.SetDefault("server.basic_auth.username", "")
	v.SetDefault("server.basic_auth.password", "")
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.requests_per_second", 0)
	v.SetDefault("server.rate_limit.burst", 0)
	v.SetDefault("server.cors.enabled", false)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("ingest.max_batch_lines", 2000)
	v.SetDefault("ingest.default_type", "row")
	v.SetDefault("settings.path", "settings.yaml")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
}

// Load reads the YAML file at path, if any, then applies environment
// overrides. An empty path yields defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimit.Enabled {
		if cfg.Server.RateLimit.RequestsPerSecond <= 0 {
			return nil, fmt.Errorf("rate limit enabled but requests_per_second not set")
		}
		if cfg.Server.RateLimit.Burst == 0 {
			// Default burst to a single second worth of requests to align with limiter tokens.
			cfg.Server.RateLimit.Burst = int(math.Ceil(cfg.Server.RateLimit.RequestsPerSecond))
		}
	}

	// Each bulk action is two lines; an odd ceiling would leave a line unused.
	if cfg.Ingest.MaxBatchLines < 2 || cfg.Ingest.MaxBatchLines%2 != 0 {
		return nil, fmt.Errorf("ingest.max_batch_lines must be a positive even number, got %d", cfg.Ingest.MaxBatchLines)
	}
	if strings.ContainsAny(cfg.Ingest.DefaultType, " \t") {
		return nil, fmt.Errorf("ingest.default_type must not contain spaces")
	}

	return &cfg, nil
}
