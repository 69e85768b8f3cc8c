package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "x")
	for _, k := range []string{"API_BASE_URL", "GATEWAY_TIMEOUT", "ADMIN_IDS", "SESSION_BACKEND", "MINIO_ENDPOINT"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.GatewayTimeout != 10*time.Second {
		t.Errorf("GatewayTimeout = %v", cfg.GatewayTimeout)
	}
	if cfg.SessionBackend != "memory" || cfg.MinIO.Enabled() {
		t.Errorf("backend = %q, minio = %v", cfg.SessionBackend, cfg.MinIO.Enabled())
	}
	if !cfg.IsAdmin(12345) {
		t.Error("empty ADMIN_IDS must allow everyone")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "x")
	t.Setenv("API_BASE_URL", "https://api.example.org/")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("ADMIN_IDS", "1, 2")
	t.Setenv("SESSION_BACKEND", "Redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.org" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.GatewayTimeout != 3*time.Second || cfg.SessionBackend != "redis" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.IsAdmin(2) || cfg.IsAdmin(3) {
		t.Errorf("admins = %v", cfg.AdminIDs)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string][2]string{
		"bad url":     {"API_BASE_URL", "localhost"},
		"bad timeout": {"GATEWAY_TIMEOUT", "soon"},
		"zero ttl":    {"SESSION_TTL", "0s"},
		"bad backend": {"SESSION_BACKEND", "etcd"},
		"bad admin":   {"ADMIN_IDS", "1,x"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "x")
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%q: want error", kv[0], kv[1])
			}
		})
	}
}
