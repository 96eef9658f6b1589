package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppName string
	Port    int

	DBDSN string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	BookingLockTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret string
	JWTIssuer string

	Timezone string
	Location *time.Location

	LogLevel  string
	LogFormat string

	OTelEnabled       bool
	OTelEndpoint      string
	OTelSamplingRatio float64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_name", "farm-vet-appointments")
	v.SetDefault("port", 8080)
	v.SetDefault("db_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("booking_lock_ttl", "5s")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "appointments.lifecycle")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel_sampling_ratio", 1.0)
	v.SetDefault("read_timeout", "10s")
	v.SetDefault("write_timeout", "15s")
	v.SetDefault("shutdown_timeout", "10s")
}

// Load lee la configuración de variables de entorno (PORT, DB_DSN, ...) y,
// si CONFIG_FILE apunta a un archivo, de ese archivo. El entorno gana.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	defaults(v)

	// e.g. DB_DSN sobreescribe db_dsn del archivo
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("config_file")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := Config{
		AppName:           strings.TrimSpace(v.GetString("app_name")),
		Port:              v.GetInt("port"),
		DBDSN:             strings.TrimSpace(v.GetString("db_dsn")),
		RedisAddr:         strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           v.GetInt("redis_db"),
		BookingLockTTL:    v.GetDuration("booking_lock_ttl"),
		KafkaBrokers:      splitCSV(v.GetString("kafka_brokers")),
		KafkaTopic:        strings.TrimSpace(v.GetString("kafka_topic")),
		JWTSecret:         v.GetString("jwt_secret"),
		JWTIssuer:         strings.TrimSpace(v.GetString("jwt_issuer")),
		Timezone:          strings.TrimSpace(v.GetString("timezone")),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		OTelEnabled:       v.GetBool("otel_enabled"),
		OTelEndpoint:      strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint")),
		OTelSamplingRatio: v.GetFloat64("otel_sampling_ratio"),
		ReadTimeout:       v.GetDuration("read_timeout"),
		WriteTimeout:      v.GetDuration("write_timeout"),
		ShutdownTimeout:   v.GetDuration("shutdown_timeout"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.BookingLockTTL <= 0 {
		return fmt.Errorf("booking_lock_ttl must be positive")
	}
	if c.OTelSamplingRatio < 0 || c.OTelSamplingRatio > 1 {
		return fmt.Errorf("otel_sampling_ratio must be within [0,1]")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// Addr es la dirección de escucha del servidor HTTP.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DevAuth indica modo dev: sin JWT_SECRET se aceptan headers X-Debug-User-*.
func (c Config) DevAuth() bool {
	return strings.TrimSpace(c.JWTSecret) == ""
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
