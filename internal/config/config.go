package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Driver string
	DSN    string
}

type JSONConfig struct {
	// SortFields renders wire objects with lexically sorted keys instead of
	// the declared field order.
	SortFields bool
}

type Config struct {
	Environment  string
	HTTP         HTTPConfig
	DB           DBConfig
	JSON         JSONConfig
	SeedFixtures bool
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("SEED_FIXTURES", true)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			Driver: v.GetString("DB_DRIVER"),
			DSN:    v.GetString("DB_DSN"),
		},
		JSON: JSONConfig{
			SortFields: v.GetBool("JSON_SORT_FIELDS"),
		},
		SeedFixtures: v.GetBool("SEED_FIXTURES"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7080
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DriverSQLite
	}
	if cfg.DB.DSN == "" && cfg.DB.Driver == DriverSQLite {
		cfg.DB.DSN = ":memory:"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.Driver != DriverSQLite && cfg.DB.Driver != DriverPostgres {
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverSQLite, DriverPostgres)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	return nil
}
