// Package config loads CalcMaster settings from defaults, an optional
// YAML file and CALCMASTER_* environment variables, in increasing
// priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/calcmaster/internal/store"
)

// Environment variables read by Load.
const (
	EnvConfig    = "CALCMASTER_CONFIG"
	EnvDB        = "CALCMASTER_DB"
	EnvAddr      = "CALCMASTER_ADDR"
	EnvLogMode   = "CALCMASTER_LOG_MODE"
	EnvRedisAddr = "CALCMASTER_REDIS_ADDR"
	EnvSeed      = "CALCMASTER_SEED"
)

type Config struct {
	// DBPath is the SQLite file. Empty resolves to the XDG data dir.
	DBPath    string          `yaml:"db_path"`
	LogMode   string          `yaml:"log_mode" validate:"oneof=dev development prod production"`
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Auth      AuthConfig      `yaml:"auth"`
	Generator GeneratorConfig `yaml:"generator"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// RedisConfig enables the shared fingerprint store when Addr is set.
type RedisConfig struct {
	Addr string        `yaml:"addr"`
	TTL  time.Duration `yaml:"ttl" validate:"gte=0"`
}

type DedupConfig struct {
	Capacity int           `yaml:"capacity" validate:"gte=0"`
	IdleTTL  time.Duration `yaml:"idle_ttl" validate:"gte=0"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl" validate:"gt=0"`
	// BcryptCost of 0 uses bcrypt's default.
	BcryptCost int `yaml:"bcrypt_cost" validate:"eq=0|min=4,max=31"`
}

type GeneratorConfig struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1"`
	EvalBudget  time.Duration `yaml:"eval_budget" validate:"gt=0"`
	// Seed of 0 draws a random seed.
	Seed uint64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		LogMode: "dev",
		Server: ServerConfig{
			Addr:            ":5000",
			CORSOrigins:     []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{TTL: 6 * time.Hour},
		Dedup: DedupConfig{Capacity: 500, IdleTTL: 6 * time.Hour},
		Auth:  AuthConfig{SessionTTL: 7 * 24 * time.Hour},
		Generator: GeneratorConfig{
			MaxAttempts: 3,
			EvalBudget:  2 * time.Second,
		},
	}
}

// Load merges defaults, the YAML file at path (or $CALCMASTER_CONFIG when
// path is empty) and environment overrides, then validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogMode)); v != "" {
		cfg.LogMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSeed)); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Generator.Seed = seed
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	return validate.Struct(c)
}

// DatabasePath returns DBPath, or the default location, with its parent
// directory created.
func (c Config) DatabasePath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, store.EnsureDir(c.DBPath)
	}
	return store.DefaultDBPath()
}
