package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vaughan-dsouza/freelancehub/internal/utils"
)

type Config struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`

	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Login    LoginConfig    `yaml:"login"`
	MQ       MQConfig       `yaml:"mq"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	MaxOpen     int    `yaml:"max_open"`
	MaxIdle     int    `yaml:"max_idle"`
	MaxLifetime int    `yaml:"max_lifetime"` // seconds
	SlowQueryMS int    `yaml:"slow_query_ms"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoginConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Window      string `yaml:"window"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

func defaults() Config {
	return Config{
		Port:       "4000",
		CORSOrigin: "*",
		Database:   DatabaseConfig{MaxOpen: 25, MaxIdle: 25, MaxLifetime: 300, SlowQueryMS: 200},
		JWT:        JWTConfig{AccessTTL: "15m", RefreshTTL: "168h"},
		Log:        LogConfig{Level: "info"},
		Login:      LoginConfig{MaxAttempts: 5, Window: "15m"},
	}
}

// Load builds the config from defaults, the optional YAML file at path, a
// .env file if one exists, and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.CORSOrigin, "CORS_ORIGIN")

	setString(&cfg.Database.URL, "DATABASE_URL")
	setInt(&cfg.Database.MaxOpen, "DB_MAX_OPEN")
	setInt(&cfg.Database.MaxIdle, "DB_MAX_IDLE")
	setInt(&cfg.Database.MaxLifetime, "DB_MAX_LIFETIME")
	setInt(&cfg.Database.SlowQueryMS, "DB_SLOW_QUERY_MS")

	setString(&cfg.JWT.AccessSecret, "ACCESS_SECRET")
	setString(&cfg.JWT.RefreshSecret, "REFRESH_SECRET")
	setString(&cfg.JWT.AccessTTL, "ACCESS_TTL")
	setString(&cfg.JWT.RefreshTTL, "REFRESH_TTL")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setInt(&cfg.Login.MaxAttempts, "LOGIN_MAX_ATTEMPTS")
	setString(&cfg.Login.Window, "LOGIN_WINDOW")

	setString(&cfg.MQ.URL, "MQ_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("ACCESS_SECRET and REFRESH_SECRET are required")
	}
	for name, ttl := range map[string]string{
		"ACCESS_TTL":   c.JWT.AccessTTL,
		"REFRESH_TTL":  c.JWT.RefreshTTL,
		"LOGIN_WINDOW": c.Login.Window,
	} {
		if _, err := utils.ParseTTL(ttl); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) AccessTTL() time.Duration  { return mustTTL(c.JWT.AccessTTL) }
func (c *Config) RefreshTTL() time.Duration { return mustTTL(c.JWT.RefreshTTL) }
func (c *Config) LoginWindow() time.Duration {
	return mustTTL(c.Login.Window)
}

// mustTTL is only called after Validate.
func mustTTL(s string) time.Duration {
	d, _ := utils.ParseTTL(s)
	return d
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
