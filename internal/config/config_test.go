package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jobportal/aggregator/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Store.URI != "mongodb://localhost:27017" || cfg.Store.Database != "jobportal" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Scrape.AdapterTimeoutSec != 30 {
		t.Errorf("adapter timeout = %d, want 30", cfg.Scrape.AdapterTimeoutSec)
	}
	if cfg.Scrape.Schedule != "" {
		t.Errorf("schedule should default to disabled, got %q", cfg.Scrape.Schedule)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
scrape:
  schedule: "@every 6h"
  adapter_timeout_sec: 45
sources:
  remoteok:
    endpoint: "http://localhost:8081/api"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Scrape.Schedule != "@every 6h" || cfg.Scrape.AdapterTimeoutSec != 45 {
		t.Errorf("scrape = %+v", cfg.Scrape)
	}
	if cfg.Sources.RemoteOK.Endpoint != "http://localhost:8081/api" {
		t.Errorf("remoteok endpoint = %q", cfg.Sources.RemoteOK.Endpoint)
	}
	// Untouched keys keep their defaults.
	if cfg.Store.Database != "jobportal" {
		t.Errorf("database = %q, want default", cfg.Store.Database)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("PORT", "7070")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.URI != "mongodb://db.internal:27017" {
		t.Errorf("uri = %q", cfg.Store.URI)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scrape:\n  adapter_timeout_sec: -5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for non-positive adapter timeout")
	}
}
