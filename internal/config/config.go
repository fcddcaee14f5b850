package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrAttributesFile is returned when ATTRIBUTES_FILE cannot be used.
var ErrAttributesFile = errors.New("invalid attributes file")

type Config struct {
	Port string

	// Auth
	APIKey string

	// Publisher connection; optional
	PublishURL    string
	PublishAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Conversion defaults
	AttributesFile string
	Attributes     map[string]string
	LegacySyntax   bool

	MetricsEnabled bool
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("ADOCGEST_API_KEY"),

		PublishURL:    os.Getenv("PUBLISH_URL"),
		PublishAPIKey: os.Getenv("PUBLISH_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20), // 10MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		AttributesFile: os.Getenv("ATTRIBUTES_FILE"),
		LegacySyntax:   envBool("LEGACY_SYNTAX", false),

		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// LoadAttributes reads AttributesFile into Attributes. It is a no-op when no
// file is configured.
func (c *Config) LoadAttributes() error {
	if c.AttributesFile == "" {
		return nil
	}
	attrs, err := ReadAttributesFile(c.AttributesFile)
	if err != nil {
		return err
	}
	c.Attributes = attrs
	return nil
}

// ReadAttributesFile parses a YAML mapping of attribute names to values.
// Scalars of any type are accepted; a null value unsets the attribute.
func ReadAttributesFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAttributesFile, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAttributesFile, path, err)
	}
	attrs := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			attrs[k+"!"] = ""
		case string:
			attrs[k] = v
		case bool, int, int64, uint64, float64:
			attrs[k] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("%w: %s: attribute %q is not a scalar", ErrAttributesFile, path, k)
		}
	}
	return attrs, nil
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.PublishAPIKey != "" && c.PublishURL == "" {
		return fmt.Errorf("PUBLISH_API_KEY is set but PUBLISH_URL is empty")
	}
	if c.MaxQueueSize < c.WorkerCount {
		return fmt.Errorf("MAX_QUEUE_SIZE (%d) must be at least WORKER_COUNT (%d)", c.MaxQueueSize, c.WorkerCount)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
