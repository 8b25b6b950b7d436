package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StoreConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type ScrapeConfig struct {
	UserAgent         string `yaml:"user_agent"`
	AdapterTimeoutSec int    `yaml:"adapter_timeout_sec"`
	// Cron spec for periodic runs, e.g. "@every 6h". Empty disables the
	// scheduler; runs are then manual-trigger only.
	Schedule string `yaml:"schedule"`
}

type SourcesConfig struct {
	RemoteOK struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"remoteok"`
	WeWorkRemotely struct {
		FeedURL string `yaml:"feed_url"`
	} `yaml:"weworkremotely"`
	Craigslist struct {
		SearchURL string `yaml:"search_url"`
		Location  string `yaml:"location"`
	} `yaml:"craigslist"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Sources SourcesConfig `yaml:"sources"`
}

func defaults() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Store.URI = "mongodb://localhost:27017"
	cfg.Store.Database = "jobportal"
	cfg.Scrape.UserAgent = "job-portal-aggregator/1.0"
	cfg.Scrape.AdapterTimeoutSec = 30
	return cfg
}

// Load reads an optional YAML file over the built-in defaults, then applies
// MONGODB_URI and PORT env overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		cfg.Store.URI = uri
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if cfg.Scrape.AdapterTimeoutSec <= 0 {
		return nil, fmt.Errorf("adapter_timeout_sec must be positive")
	}
	return &cfg, nil
}
