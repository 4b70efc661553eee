package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Storage  *StorageConfig  `mapstructure:"storage"`
	Event    *EventConfig    `mapstructure:"event"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	BaseURL            string   `mapstructure:"base_url"`
	Port               string   `mapstructure:"port"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type StorageConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

// EventConfig carries the reunion tariff and wizard tuning. The price
// constants in the domain package are the defaults; these let ops retune
// the registration fee without a rebuild.
type EventConfig struct {
	RegistrationFee  int    `mapstructure:"registration_fee"`
	PaymentHandle    string `mapstructure:"payment_handle"`
	LookupDebounceMS int    `mapstructure:"lookup_debounce_ms"`
	RateLimitRPS     int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int    `mapstructure:"rate_limit_burst"`
}

func Load(path string) (*AppConfig, error) {
	viper.SetConfigFile(path)

	viper.SetEnvPrefix("REUNION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	return conf, nil
}
