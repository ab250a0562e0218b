package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	PlacesAPIKey     string
	PlacesAPIURL     string
	PlacesReverseURL string
	PlacesTimeout    time.Duration

	OpenWeatherAPIKey  string
	OpenWeatherAPIURL  string
	OpenWeatherTimeout time.Duration

	IBGELocalitiesURL string
	IBGEAggregatesURL string
	IBGETimeout       time.Duration

	RequestTimeout time.Duration

	HealthTTL    time.Duration
	ProbeTimeout time.Duration

	CacheTTL              time.Duration
	CacheBackend          string // "in_memory" or "memcached"
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RateLimitRPS   int
	RateLimitBurst int

	MaxSearchResults int
	SyntheticSeed    int64 // 0 = seed from entropy

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Places struct {
		URL        string `yaml:"url"`
		ReverseURL string `yaml:"reverse_url"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"places"`

	OpenWeather struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"openweather"`

	IBGE struct {
		LocalitiesURL string `yaml:"localities_url"`
		AggregatesURL string `yaml:"aggregates_url"`
		Timeout       string `yaml:"timeout"`
	} `yaml:"ibge"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Health struct {
		TTL          string `yaml:"ttl"`
		ProbeTimeout string `yaml:"probe_timeout"`
	} `yaml:"health"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Search struct {
		MaxResults int `yaml:"max_results"`
	} `yaml:"search"`

	Scoring struct {
		Seed int64 `yaml:"seed"`
	} `yaml:"scoring"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	PlacesAPIKey      string `yaml:"places_api_key"`
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. Provider API keys come from PLACES_API_KEY /
// OPENWEATHER_API_KEY env or the secrets file. An absent key is a normal
// configuration state: the matching adapter runs in estimate mode.
// Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	var sec secretsFile
	secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
	secretsData, err := os.ReadFile(secretsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read secrets file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(secretsData, &sec); err != nil {
			return nil, fmt.Errorf("parse secrets file: %w", err)
		}
	}

	cfg.PlacesAPIKey = os.Getenv("PLACES_API_KEY")
	if cfg.PlacesAPIKey == "" {
		cfg.PlacesAPIKey = sec.PlacesAPIKey
	}
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		cfg.OpenWeatherAPIKey = sec.OpenWeatherAPIKey
	}

	cfg.PlacesAPIURL = fc.Places.URL
	if cfg.PlacesAPIURL == "" {
		cfg.PlacesAPIURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	}
	cfg.PlacesReverseURL = fc.Places.ReverseURL
	if cfg.PlacesReverseURL == "" {
		cfg.PlacesReverseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	}
	cfg.PlacesTimeout = parseDuration(fc.Places.Timeout, 3*time.Second)

	cfg.OpenWeatherAPIURL = fc.OpenWeather.URL
	if cfg.OpenWeatherAPIURL == "" {
		cfg.OpenWeatherAPIURL = "https://api.openweathermap.org/data/2.5"
	}
	cfg.OpenWeatherTimeout = parseDuration(fc.OpenWeather.Timeout, 3*time.Second)

	cfg.IBGELocalitiesURL = fc.IBGE.LocalitiesURL
	if cfg.IBGELocalitiesURL == "" {
		cfg.IBGELocalitiesURL = "https://servicodados.ibge.gov.br/api/v1/localidades"
	}
	cfg.IBGEAggregatesURL = fc.IBGE.AggregatesURL
	if cfg.IBGEAggregatesURL == "" {
		cfg.IBGEAggregatesURL = "https://servicodados.ibge.gov.br/api/v3/agregados"
	}
	cfg.IBGETimeout = parseDuration(fc.IBGE.Timeout, 5*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 10*time.Second)

	cfg.HealthTTL = parseDuration(fc.Health.TTL, 5*time.Minute)
	cfg.ProbeTimeout = parseDuration(fc.Health.ProbeTimeout, 3*time.Second)

	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 10*time.Minute)
	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "in_memory"
	}
	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 50
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 100
	}

	cfg.MaxSearchResults = fc.Search.MaxResults
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = 5
	}
	cfg.SyntheticSeed = fc.Scoring.Seed

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. The request timeout must cover the
// slowest provider timeout so adapter fetches are not cut off mid-request.
func validate(cfg *Config) error {
	maxProvider := cfg.PlacesTimeout
	if cfg.OpenWeatherTimeout > maxProvider {
		maxProvider = cfg.OpenWeatherTimeout
	}
	if cfg.IBGETimeout > maxProvider {
		maxProvider = cfg.IBGETimeout
	}
	if cfg.RequestTimeout <= maxProvider {
		cfg.RequestTimeout = maxProvider + time.Second
	}
	switch cfg.CacheBackend {
	case "in_memory", "memcached":
		// valid
	default:
		return fmt.Errorf("cache.backend must be in_memory or memcached, got %q", cfg.CacheBackend)
	}
	return nil
}
