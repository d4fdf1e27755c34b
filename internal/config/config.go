// Package config loads invoicer settings from an optional YAML file, a .env
// file and INVOICER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmynk/invoicer/internal/archive"
	"github.com/mmynk/invoicer/internal/mailer"
	"github.com/mmynk/invoicer/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. INVOICER_SMTP_PASSWORD.
const EnvPrefix = "INVOICER"

type ServerConfig struct {
	Port               int      `mapstructure:"port"`
	StaticPath         string   `mapstructure:"static_path"`
	CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	From           string `mapstructure:"from"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Credentials converts the section for the mailer.
func (c SMTPConfig) Credentials() mailer.Credentials {
	return mailer.Credentials{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
	}
}

// Timeout returns the configured SMTP timeout.
func (c SMTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is "text" (colored) or "json".
	Format string `mapstructure:"format"`
}

type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	Storage storage.Config `mapstructure:"storage"`
	SMTP    SMTPConfig     `mapstructure:"smtp"`
	Archive archive.Config `mapstructure:"archive"`
	Log     LogConfig      `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	d := storage.DefaultConfig()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_path", "")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("storage.records_path", d.RecordsPath)
	v.SetDefault("storage.exports_path", d.ExportsPath)
	v.SetDefault("storage.driver", d.Driver)
	v.SetDefault("storage.database_path", d.DatabasePath)

	v.SetDefault("smtp.host", mailer.DefaultHost)
	v.SetDefault("smtp.port", mailer.DefaultPort)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout_seconds", int(mailer.DefaultTimeout/time.Second))

	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "invoices")
	v.SetDefault("archive.region", "")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key_id", "")
	v.SetDefault("archive.secret_access_key", "")
	v.SetDefault("archive.use_path_style", false)

	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. When path is empty, invoicer.yaml is looked up in
// the working directory and ./configs, and may be absent. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	// Load .env file if exists (ignore error, it is optional)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("invoicer")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite:
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", storage.DriverFile, storage.DriverSQLite, c.Storage.Driver)
	}
	if c.Storage.RecordsPath == "" {
		return errors.New("storage.records_path is required")
	}
	if c.Storage.ExportsPath == "" {
		return errors.New("storage.exports_path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
