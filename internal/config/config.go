package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". sqlite is intended for local
	// development and tests only.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type CardNetConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type SimulatorConfig struct {
	DelayMillis         int     `mapstructure:"delay_millis"`
	CardSuccessRate     float64 `mapstructure:"card_success_rate"`
	TransferSuccessRate float64 `mapstructure:"transfer_success_rate"`
}

type PaymentConfig struct {
	CardNet   CardNetConfig   `mapstructure:"cardnet"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

type DeliveryConfig struct {
	EstimateMinutes int `mapstructure:"estimate_minutes"`
}

type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	RedisAddr         string `mapstructure:"redis_addr"`
	RedisPassword     string `mapstructure:"redis_password"`
	RedisDB           int    `mapstructure:"redis_db"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// Load reads configuration from config.yaml (optional), .env (optional) and
// FOODCOURT_* environment variables, in increasing precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("FOODCOURT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "foodcourt.db")
	v.SetDefault("payment.cardnet.base_url", "https://api.cardnet.test")
	v.SetDefault("payment.simulator.delay_millis", 1500)
	v.SetDefault("payment.simulator.card_success_rate", 0.9)
	v.SetDefault("payment.simulator.transfer_success_rate", 0.85)
	v.SetDefault("delivery.estimate_minutes", 45)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
