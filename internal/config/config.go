package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	TopDeck  TopDeckConfig  `mapstructure:"topdeck"`
	ETL      ETLConfig      `mapstructure:"etl"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type ServerConfig struct {
	Port   int        `mapstructure:"port"`
	Mode   string     `mapstructure:"mode"`
	APIKey string     `mapstructure:"api_key"`
	CORS   CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	Path   string `mapstructure:"path"`   // sqlite file path
	DSN    string `mapstructure:"dsn"`    // postgres DSN
}

type TopDeckConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MinIntervalMs  int    `mapstructure:"min_interval_ms"`
}

type ETLConfig struct {
	BatchSize         int `mapstructure:"batch_size"`
	MaxRuntimeSeconds int `mapstructure:"max_runtime_seconds"`
	SeedMonths        int `mapstructure:"seed_months"`
	MaxRetries        int `mapstructure:"max_retries"`
}

type WorkerConfig struct {
	IdlePollSeconds     int `mapstructure:"idle_poll_seconds"`
	ErrorBackoffSeconds int `mapstructure:"error_backoff_seconds"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/cedhtools.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("topdeck.base_url", "https://topdeck.gg/api/v2")
	v.SetDefault("topdeck.timeout_seconds", 300)
	v.SetDefault("topdeck.min_interval_ms", 1000)
	v.SetDefault("etl.batch_size", 50)
	v.SetDefault("etl.max_runtime_seconds", 600)
	v.SetDefault("etl.seed_months", 6)
	v.SetDefault("etl.max_retries", 3)
	v.SetDefault("worker.idle_poll_seconds", 60)
	v.SetDefault("worker.error_backoff_seconds", 30)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("server.api_key", "ETL_API_KEY")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_URL")
	v.BindEnv("topdeck.api_key", "TOPDECK_API_KEY")
	v.BindEnv("topdeck.base_url", "TOPDECK_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
