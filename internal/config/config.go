package config

import "time"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Filter    FilterConfig    `yaml:"filter"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxBodyBytes     int64         `yaml:"max_body_bytes"`
}

// RedisConfig is optional. An empty Address disables every redis-backed
// feature: the cache falls back to memory (or nothing) and rate limits fail open.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Cache backends.
const (
	CacheBackendAuto   = "auto"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

type CacheConfig struct {
	// Backend is one of auto, redis, memory, none. auto picks redis when an
	// address is configured and reachable, otherwise memory.
	Backend    string        `yaml:"backend"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	KeyPrefix  string        `yaml:"key_prefix"`
}

// UpstreamConfig describes the language model provider.
type UpstreamConfig struct {
	// Provider is one of openai, anthropic, gemini.
	Provider string `yaml:"provider"`
	// BaseURL overrides the provider's public endpoint when set.
	BaseURL      string            `yaml:"base_url"`
	APIKey       string            `yaml:"api_key"`
	Model        string            `yaml:"model"`
	ImageModel   string            `yaml:"image_model"`
	Temperature  float64           `yaml:"temperature"`
	MaxTokens    int               `yaml:"max_tokens"`
	ImageSize    string            `yaml:"image_size"`
	ImageQuality string            `yaml:"image_quality"`
	Timeout      time.Duration     `yaml:"timeout"`
	Headers      map[string]string `yaml:"headers,omitempty"`

	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	Enabled               bool          `yaml:"enabled"`
	FailureThreshold      int           `yaml:"failure_threshold"`
	RecoveryProbeInterval time.Duration `yaml:"recovery_probe_interval"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerWindow int           `yaml:"requests_per_window"`
	Window            time.Duration `yaml:"window"`
}

type FilterConfig struct {
	Secrets   SecretsFilterConfig   `yaml:"secrets"`
	Injection InjectionFilterConfig `yaml:"injection"`
	Policy    PolicyFilterConfig    `yaml:"policy"`
}

type SecretsFilterConfig struct {
	Enabled bool `yaml:"enabled"`
}

type InjectionFilterConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BlockThreshold float64 `yaml:"block_threshold"`
	FlagThreshold  float64 `yaml:"flag_threshold"`
}

type PolicyFilterConfig struct {
	Enabled           bool          `yaml:"enabled"`
	BundlePath        string        `yaml:"bundle_path"`
	EvaluationTimeout time.Duration `yaml:"evaluation_timeout"`
}

type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// LogFile, when set, receives a copy of every log line with size-based rotation.
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             3001,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     90 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
			MaxBodyBytes:     64 << 10,
		},
		Redis: RedisConfig{
			PoolSize: 20,
		},
		Cache: CacheConfig{
			Backend:    CacheBackendAuto,
			TTL:        time.Hour,
			MaxEntries: 10_000,
			KeyPrefix:  "assistant:",
		},
		Upstream: UpstreamConfig{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			ImageModel:   "dall-e-3",
			Temperature:  0.7,
			MaxTokens:    500,
			ImageSize:    "1024x1024",
			ImageQuality: "standard",
			Timeout:      30 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:               true,
				FailureThreshold:      5,
				RecoveryProbeInterval: 15 * time.Second,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerWindow: 100,
			Window:            15 * time.Minute,
		},
		Filter: FilterConfig{
			Secrets: SecretsFilterConfig{Enabled: true},
			Injection: InjectionFilterConfig{
				Enabled:        true,
				BlockThreshold: 0.9,
				FlagThreshold:  0.7,
			},
			Policy: PolicyFilterConfig{
				Enabled:           false,
				BundlePath:        "configs/policies",
				EvaluationTimeout: 100 * time.Millisecond,
			},
		},
		Telemetry: TelemetryConfig{
			LogLevel:      "info",
			LogFormat:     "json",
			LogMaxSizeMB:  50,
			LogMaxBackups: 3,
		},
	}
}
