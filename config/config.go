package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Labs       []LabConfig      `yaml:"labs"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// LabConfig declares one laboratory and the contiguous PC range it owns.
type LabConfig struct {
	ID      int64  `yaml:"id"`
	Name    string `yaml:"name"`
	FirstPC int    `yaml:"first_pc"`
	LastPC  int    `yaml:"last_pc"`
}

// MatcherConfig holds the login-to-reservation tolerance window, in minutes.
type MatcherConfig struct {
	ToleranceBeforeMinutes int `yaml:"tolerance_before_minutes"`
	ToleranceAfterMinutes  int `yaml:"tolerance_after_minutes"`
}

// SweeperConfig controls the optional end-of-day reservation finalizer.
type SweeperConfig struct {
	Enabled         bool   `yaml:"enabled"`
	RunAt           string `yaml:"run_at"` // "HH:MM" local time
	Timezone        string `yaml:"timezone"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Labs) == 0 {
		cfg.Labs = DefaultLabs()
	}
	for i, lab := range cfg.Labs {
		if lab.FirstPC <= 0 || lab.LastPC < lab.FirstPC {
			return nil, fmt.Errorf("lab %d: invalid PC range %d-%d", lab.ID, lab.FirstPC, lab.LastPC)
		}
		for _, other := range cfg.Labs[:i] {
			if lab.FirstPC <= other.LastPC && other.FirstPC <= lab.LastPC {
				return nil, fmt.Errorf("lab %d: PC range %d-%d overlaps lab %d", lab.ID, lab.FirstPC, lab.LastPC, other.ID)
			}
		}
	}

	if cfg.Matcher.ToleranceBeforeMinutes <= 0 {
		cfg.Matcher.ToleranceBeforeMinutes = 10
	}
	if cfg.Matcher.ToleranceAfterMinutes <= 0 {
		cfg.Matcher.ToleranceAfterMinutes = 20
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Sweeper.RunAt == "" {
		cfg.Sweeper.RunAt = "21:00"
	}
	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}

// DefaultLabs returns the faculty's standard three-lab PC partition.
func DefaultLabs() []LabConfig {
	return []LabConfig{
		{ID: 1, Name: "LAB 1", FirstPC: 1, LastPC: 40},
		{ID: 2, Name: "LAB 2", FirstPC: 41, LastPC: 60},
		{ID: 3, Name: "LAB 3", FirstPC: 61, LastPC: 80},
	}
}
