package fileserve

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("PROTRACK_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != "localhost:8080" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("max upload = %d, want 10MB", cfg.MaxUploadBytes)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
}

func TestLoadConfigMissingSecretFails(t *testing.T) {
	t.Setenv("PROTRACK_JWT_SECRET", "")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("config without a JWT secret must not validate")
	}
}

func TestLoadConfigShortSecretFails(t *testing.T) {
	t.Setenv("PROTRACK_JWT_SECRET", "short")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("a secret shorter than 16 bytes must not validate")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	t.Setenv("PROTRACK_JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	blob := `
listen_addr: "127.0.0.1:9999"
jwt_secret: "0123456789abcdef0123456789abcdef"
rate_limit: "100-M"
max_upload_bytes: 1048576
`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != "127.0.0.1:9999" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.RateLimit != "100-M" {
		t.Fatalf("rate limit = %q", cfg.RateLimit)
	}
	if cfg.MaxUploadBytes != 1<<20 {
		t.Fatalf("max upload = %d", cfg.MaxUploadBytes)
	}
	// Unset fields keep their defaults.
	if cfg.DataDir == "" || cfg.DBPath == "" {
		t.Fatal("defaults should fill unset fields")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	blob := `
listen_addr: "127.0.0.1:9999"
jwt_secret: "0123456789abcdef0123456789abcdef"
`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROTRACK_LISTEN_ADDR", "127.0.0.1:7777")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != "127.0.0.1:7777" {
		t.Fatalf("env should win over file, got %q", cfg.ListenAddr)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PROTRACK_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != "localhost:8080" {
		t.Fatal("missing file should fall back to defaults")
	}
}

func TestLoadConfigMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("malformed YAML must fail")
	}
}
