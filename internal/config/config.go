package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// AllowedOrigins feeds CORS for the REST API; empty allows any origin.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		Env   string `yaml:"env"`
	} `yaml:"log"`
	Catalog struct {
		URL      string `yaml:"url"`
		Source   string `yaml:"source"` // "api" or "mirror"
		Limit    int    `yaml:"limit"`
		Timeout  string `yaml:"timeout"`
		Retries  uint64 `yaml:"retries"`
		Backoff  string `yaml:"backoff"`
		Mode     string `yaml:"mode"`
		MinGrade string `yaml:"min_grade"`
		TTL      string `yaml:"ttl"`
	} `yaml:"catalog"`
	Quiz struct {
		Size            int    `yaml:"size"`
		Cooldown        string `yaml:"cooldown"`
		TransitionDelay string `yaml:"transition_delay"`
		IdleTTL         string `yaml:"idle_ttl"` // in-memory sessions; redis.ttl applies with redis
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path. A missing file yields the zero config,
// which every consumer treats as "use defaults".
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// IntOr returns v unless it is zero or negative.
func IntOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
