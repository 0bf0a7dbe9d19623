package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/richarq/admetrics/internal/db"
)

// Config is the full service configuration: database, HTTP listener and the
// intake directory the orchestrator scans for exports.
type Config struct {
	Database       db.Config
	ListenAddr     string
	DataDir        string
	MigrationsPath string
	LogLevel       string
}

// Default returns the configuration used when no config.yaml or environment
// overrides are present.
func Default() Config {
	return Config{
		Database:       db.DefaultConfig(),
		ListenAddr:     ":8080",
		DataDir:        "./data/raw",
		MigrationsPath: "./migrations",
		LogLevel:       "info",
	}
}

// Load reads config.yaml from configPath and applies environment overrides
// (prefix ADM, e.g. ADM_DATABASE_HOST, ADM_SERVER_DATA_DIR).
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("ADM")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("server.data_dir")
	v.BindEnv("server.migrations_path")
	v.BindEnv("log.level")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.ListenAddr = v.GetString("server.addr")
	}
	if v.IsSet("server.data_dir") {
		cfg.DataDir = v.GetString("server.data_dir")
	}
	if v.IsSet("server.migrations_path") {
		cfg.MigrationsPath = v.GetString("server.migrations_path")
	}
	if v.IsSet("log.level") {
		cfg.LogLevel = v.GetString("log.level")
	}

	return cfg, nil
}
