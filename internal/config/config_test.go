package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := Config{App: AppConfig{Env: "local", Port: 8080}}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Store.Driver != StoreMemory {
		t.Fatalf("expected memory store default, got %q", c.Store.Driver)
	}
	if c.Activity.Source != StoreMemory {
		t.Fatalf("expected memory activity source, got %q", c.Activity.Source)
	}
	if c.Session.TTL != 30*24*time.Hour {
		t.Fatalf("expected 30d session ttl, got %v", c.Session.TTL)
	}
	if c.Session.AvatarBaseURL == "" || c.Redis.Prefix == "" {
		t.Fatalf("expected defaults to be filled: %+v", c)
	}
}

func TestValidate_FileStoreRequiresPath(t *testing.T) {
	c := Config{App: AppConfig{Env: "dev", Port: 8080}, Store: StoreConfig{Driver: StoreFile}}
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "STORE_PATH") {
		t.Fatalf("expected STORE_PATH error, got %v", err)
	}
}

func TestValidate_ProductionRequiresSecretAndSSLMode(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "production", Port: 8080},
		Store: StoreConfig{Driver: StorePostgres},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "dash"},
	}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"SESSION_SECRET", "DB_SSLMODE"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %q", want, err.Error())
		}
	}
}

func TestValidate_PostgresDefaultsSSLModeOutsideProduction(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "local", Port: 8080},
		Activity: ActivityConfig{Source: StorePostgres},
		DB:       DBConfig{Host: "localhost", User: "postgres", Name: "dash"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" || c.DB.Port != 5432 {
		t.Fatalf("unexpected db defaults: %+v", c.DB)
	}
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	c := Config{App: AppConfig{Env: "local", Port: 8080}, Store: StoreConfig{Driver: "etcd"}}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_PATH", "/tmp/dash.db")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ACTIVITY_SEED", "50")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr() != ":9090" || c.Store.Driver != StoreSQLite || c.Session.TTL != 2*time.Hour || c.Activity.Seed != 50 {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestLoad_ReportsBadInteger(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "abc")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad_ReportsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("SESSION_TTL", "abc")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SESSION_TTL") {
		t.Fatalf("expected SESSION_TTL parse error, got %v", err)
	}
}

func TestLoad_AcceptsDayDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("SESSION_TTL", "7d")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Session.TTL != 7*24*time.Hour {
		t.Fatalf("expected 7d ttl, got %v", c.Session.TTL)
	}
}
