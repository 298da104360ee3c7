package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
port: "5000"
database:
  url: postgres://yaml/db
  max_open: 7
jwt:
  access_secret: a
  refresh_secret: r
  access_ttl: 30m
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "6000")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_MAX_OPEN", "")
	t.Setenv("ACCESS_TTL", "")
	t.Setenv("DB_MAX_IDLE", "")
	t.Setenv("DB_SLOW_QUERY_MS", "")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "6000" {
		t.Errorf("env should win for port, got %q", cfg.Port)
	}
	if cfg.Database.URL != "postgres://yaml/db" || cfg.Database.MaxOpen != 7 {
		t.Errorf("yaml database not applied: %+v", cfg.Database)
	}
	if cfg.Database.MaxIdle != 25 {
		t.Errorf("default max idle lost: %d", cfg.Database.MaxIdle)
	}
	if cfg.Database.SlowQueryMS != 200 {
		t.Errorf("slow query threshold = %d", cfg.Database.SlowQueryMS)
	}
	if cfg.AccessTTL() != 30*time.Minute || cfg.RefreshTTL() != 168*time.Hour {
		t.Errorf("ttl: %v %v", cfg.AccessTTL(), cfg.RefreshTTL())
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.CORSOrigin != "*" {
		t.Errorf("cors = %q", cfg.CORSOrigin)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("ACCESS_SECRET", "a")
	t.Setenv("REFRESH_SECRET", "r")
	t.Setenv("PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":4000" {
		t.Errorf("addr = %q", cfg.Addr())
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing DATABASE_URL error")
	}
	cfg.Database.URL = "x"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing secrets error")
	}
	cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret = "a", "r"
	cfg.JWT.AccessTTL = "whenever"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected bad ttl error")
	}
}
