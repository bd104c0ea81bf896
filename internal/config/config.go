package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	URL               string        // inference service base URL
	Prompt            string        // prompt text sent once the service is healthy
	NPredict          int           // token budget requested from the service
	Temperature       float64       // sampling temperature; negative omits it from the payload
	HealthAttempts    int           // how many health probes before giving up
	HealthInterval    time.Duration // wait after a non-200 health response
	ErrorInterval     time.Duration // wait after a transport error
	HealthTimeout     time.Duration // per-attempt health timeout
	PromptTimeout     time.Duration // prompt request timeout
	SkipHealth        bool          // send the prompt without a health pre-check
	FailOnPromptError bool          // exit non-zero when the prompt request fails
	LogDir            string        // rotated JSON logs; empty disables file logging
	SlackWebhook      string        // optional run summary destination
}

const (
	DefaultURL      = "http://localhost:30085"
	DefaultPrompt   = "Hello, my name is"
	DefaultNPredict = 50
)

func FromEnv() Config {
	cfg := Config{
		URL:            DefaultURL,
		Prompt:         DefaultPrompt,
		NPredict:       DefaultNPredict,
		Temperature:    0.7,
		HealthAttempts: 10,
		HealthInterval: 10 * time.Second,
		ErrorInterval:  5 * time.Second,
		HealthTimeout:  5 * time.Second,
		PromptTimeout:  30 * time.Second,
		LogDir:         "logs",
	}

	if v := strings.TrimSpace(os.Getenv("PROBE_URL")); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("PROBE_PROMPT"); v != "" {
		cfg.Prompt = v
	}
	if v := os.Getenv("PROBE_N_PREDICT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NPredict = n
		}
	}
	if v := os.Getenv("PROBE_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}

	// Retry tuning
	if v := os.Getenv("HEALTH_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HealthAttempts = n
		}
	}
	cfg.HealthInterval = durationMS("HEALTH_INTERVAL_MS", cfg.HealthInterval, true)
	cfg.ErrorInterval = durationMS("HEALTH_ERROR_INTERVAL_MS", cfg.ErrorInterval, true)
	cfg.HealthTimeout = durationMS("HEALTH_TIMEOUT_MS", cfg.HealthTimeout, false)
	cfg.PromptTimeout = durationMS("PROMPT_TIMEOUT_MS", cfg.PromptTimeout, false)

	// LOG_DIR set to "" turns file logging off, so presence matters here.
	if v, ok := os.LookupEnv("LOG_DIR"); ok {
		cfg.LogDir = strings.TrimSpace(v)
	}
	cfg.SlackWebhook = strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL"))

	return cfg
}

func durationMS(key string, def time.Duration, allowZero bool) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 || (ms == 0 && !allowZero) {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Validate rejects settings the probe cannot run with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.URL) == "":
		return errors.New("url is required")
	case c.Prompt == "":
		return errors.New("prompt must not be empty")
	case c.NPredict <= 0:
		return errors.New("n_predict must be positive")
	case c.HealthAttempts <= 0:
		return errors.New("attempts must be positive")
	case c.HealthInterval < 0 || c.ErrorInterval < 0:
		return errors.New("intervals must not be negative")
	case c.HealthTimeout <= 0 || c.PromptTimeout <= 0:
		return errors.New("timeouts must be positive")
	}
	return nil
}
