// Package config loads the funding-discovery core's configuration surface
// via viper, binding environment variables and applying defaults. The key
// set covers per-engine connection settings, bus/store/cache addresses,
// LLM parameters, and circuit-breaker thresholds.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EngineConfig is one external search engine's connection and policy
// settings.
type EngineConfig struct {
	BaseURL     string
	APIKey      string
	Enabled     bool
	Timeout     time.Duration
	MaxRetries  int
	RateLimit   int // requests per RateWindow
	RateWindow  time.Duration
}

// LLMConfig is the pluggable query-generator backend's connection
// settings.
type LLMConfig struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// CircuitBreakerConfig holds the default per-engine breaker parameters.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Cooldown         time.Duration
}

// Config is the fully resolved process configuration.
type Config struct {
	HTTPAddr string

	BusBrokers []string

	PostgresDSN string
	RedisAddr   string
	RedisDB     int

	Engines map[string]EngineConfig
	LLM     LLMConfig

	ConfidenceThreshold int64 // fixed-point hundredths, scale 2
	CircuitBreaker      CircuitBreakerConfig

	SessionSoftDeadline time.Duration
	ConsumerWorkersPerTopic int
}

// knownEngines lists the engine keys this build recognizes.
var knownEngines = []string{"keyword_a", "keyword_b", "meta_search", "ai_answer"}

// Load builds a Config from environment variables (and any config file
// viper is pointed at), applying the defaults documented alongside each
// key below.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("bus.brokers", []string{"localhost:9092"})
	v.SetDefault("store.postgres_dsn", "postgres://localhost:5432/fundingdiscovery?sslmode=disable")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("confidence.threshold", 60) // 0.60 in hundredths
	v.SetDefault("circuitbreaker.failure_threshold", 5)
	v.SetDefault("circuitbreaker.success_threshold", 3)
	v.SetDefault("circuitbreaker.cooldown", "30s")
	v.SetDefault("session.soft_deadline", "30m")
	v.SetDefault("consumer.workers_per_topic", 3)

	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.2)

	for _, engine := range knownEngines {
		prefix := fmt.Sprintf("engine.%s.", engine)
		v.SetDefault(prefix+"enabled", false)
		v.SetDefault(prefix+"timeout", "8s")
		v.SetDefault(prefix+"max_retries", 3)
		v.SetDefault(prefix+"rate_limit", 100)
		v.SetDefault(prefix+"rate_window", "24h")
	}

	cooldown, err := time.ParseDuration(v.GetString("circuitbreaker.cooldown"))
	if err != nil {
		return Config{}, fmt.Errorf("parse circuitbreaker.cooldown: %w", err)
	}

	softDeadline, err := time.ParseDuration(v.GetString("session.soft_deadline"))
	if err != nil {
		return Config{}, fmt.Errorf("parse session.soft_deadline: %w", err)
	}

	llmTimeout, err := time.ParseDuration(v.GetString("llm.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("parse llm.timeout: %w", err)
	}

	engines := make(map[string]EngineConfig, len(knownEngines))
	for _, engine := range knownEngines {
		prefix := fmt.Sprintf("engine.%s.", engine)
		timeout, err := time.ParseDuration(v.GetString(prefix + "timeout"))
		if err != nil {
			return Config{}, fmt.Errorf("parse %stimeout: %w", prefix, err)
		}
		window, err := time.ParseDuration(v.GetString(prefix + "rate_window"))
		if err != nil {
			return Config{}, fmt.Errorf("parse %srate_window: %w", prefix, err)
		}
		engines[engine] = EngineConfig{
			BaseURL:    v.GetString(prefix + "base_url"),
			APIKey:     v.GetString(prefix + "api_key"),
			Enabled:    v.GetBool(prefix + "enabled"),
			Timeout:    timeout,
			MaxRetries: v.GetInt(prefix + "max_retries"),
			RateLimit:  v.GetInt(prefix + "rate_limit"),
			RateWindow: window,
		}
	}

	return Config{
		HTTPAddr:    v.GetString("http.addr"),
		BusBrokers:  v.GetStringSlice("bus.brokers"),
		PostgresDSN: v.GetString("store.postgres_dsn"),
		RedisAddr:   v.GetString("cache.redis_addr"),
		RedisDB:     v.GetInt("cache.redis_db"),
		Engines:     engines,
		LLM: LLMConfig{
			BaseURL:     v.GetString("llm.base_url"),
			Model:       v.GetString("llm.model"),
			Timeout:     llmTimeout,
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Temperature: v.GetFloat64("llm.temperature"),
		},
		ConfidenceThreshold: int64(v.GetInt("confidence.threshold")),
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: v.GetInt("circuitbreaker.failure_threshold"),
			SuccessThreshold: v.GetInt("circuitbreaker.success_threshold"),
			Cooldown:         cooldown,
		},
		SessionSoftDeadline:     softDeadline,
		ConsumerWorkersPerTopic: v.GetInt("consumer.workers_per_topic"),
	}, nil
}
