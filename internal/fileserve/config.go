package fileserve

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the file service configuration. Values load from an
// optional YAML file, then environment variables override, then the
// result is validated.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr" validate:"required,hostname_port"`
	DataDir        string        `yaml:"data_dir" validate:"required"`
	DBPath         string        `yaml:"db_path" validate:"required"`
	JWTSecret      string        `yaml:"jwt_secret" validate:"required,min=16"`
	TokenTTL       time.Duration `yaml:"token_ttl" validate:"gt=0"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" validate:"gt=0"`
	RateLimit      string        `yaml:"rate_limit" validate:"required"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Debug          bool          `yaml:"debug"`
}

func DefaultConfig() Config {
	cfg, _ := os.UserConfigDir()
	base := filepath.Join(cfg, "protrack")
	return Config{
		ListenAddr:     "localhost:8080",
		DataDir:        filepath.Join(base, "files"),
		DBPath:         filepath.Join(base, "files.db"),
		TokenTTL:       24 * time.Hour,
		MaxUploadBytes: 10 << 20, // 10MB
		RateLimit:      "10-S",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// LoadConfig reads path if it exists, applies PROTRACK_* environment
// overrides and validates the result. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env and defaults.
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ListenAddr = getEnv("PROTRACK_LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataDir = getEnv("PROTRACK_DATA_DIR", cfg.DataDir)
	cfg.DBPath = getEnv("PROTRACK_DB_PATH", cfg.DBPath)
	cfg.JWTSecret = getEnv("PROTRACK_JWT_SECRET", cfg.JWTSecret)
	cfg.RateLimit = getEnv("PROTRACK_RATE_LIMIT", cfg.RateLimit)
	cfg.Debug = getEnvBool("PROTRACK_DEBUG", cfg.Debug)
	if v := os.Getenv("PROTRACK_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("PROTRACK_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}
