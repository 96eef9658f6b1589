package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.Addr() != ":8080" {
		t.Fatalf("unexpected port: %d", cfg.Port)
	}
	if cfg.BookingLockTTL != 5*time.Second || cfg.KafkaTopic != "appointments.lifecycle" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.DevAuth() || cfg.Location != time.UTC {
		t.Fatalf("expected dev auth and UTC location")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("BOOKING_LOCK_TTL", "750ms")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TIMEZONE", "America/Argentina/Buenos_Aires")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.BookingLockTTL != 750*time.Millisecond || cfg.DevAuth() {
		t.Fatalf("unexpected ttl/auth: %+v", cfg)
	}
	if cfg.Location.String() != "America/Argentina/Buenos_Aires" {
		t.Fatalf("unexpected location %s", cfg.Location)
	}
}

func TestLoad_ConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "port: 7070\nkafka_topic: vet.events\ntimezone: UTC\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("KAFKA_TOPIC", "from.env")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 7070 || cfg.KafkaTopic != "from.env" {
		t.Fatalf("expected file port and env topic, got %d %s", cfg.Port, cfg.KafkaTopic)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"PORT":             "70000",
		"TIMEZONE":         "Mars/Olympus",
		"BOOKING_LOCK_TTL": "0s",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("TIMEZONE", "UTC")
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestSplitCSV_SkipsEmptyItems(t *testing.T) {
	got := splitCSV(" a:9092, ,b:9092 ")
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Fatalf("unexpected items: %v", got)
	}
	if splitCSV("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
