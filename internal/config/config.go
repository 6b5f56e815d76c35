// Package config provides configuration loading and structs for the docqa server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hyperjump/docqa/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Session   SessionConfig   `yaml:"session"`
	Prompt    PromptConfig    `yaml:"prompt"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// LLMConfig holds settings for the chat model behind the answer synthesizer.
// The API key is never stored in the file; it is read from the env var named by APIKeyEnv.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	APIKeyEnv   string        `yaml:"api_key_env"`
}

// Embedding providers.
const (
	ProviderOpenAI  = "openai"  // any OpenAI-compatible endpoint, NVIDIA NIM by default
	ProviderHashing = "hashing" // local feature hashing, no network
)

// EmbeddingConfig holds embedding provider settings.
// InputTypes sends input_type "query" or "passage" with each request, which
// asymmetric models such as nvidia/nv-embed-v1 require. Unset means on for
// NVIDIA endpoints and off elsewhere.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	CacheSize   int    `yaml:"cache_size"`
	Concurrency int    `yaml:"concurrency"`
	BatchSize   int    `yaml:"batch_size"`
	MaxAttempts int    `yaml:"max_attempts"`
	InputTypes  *bool  `yaml:"input_types"`
}

// SendInputTypes reports whether embedding requests carry input_type.
func (e EmbeddingConfig) SendInputTypes() bool {
	if e.InputTypes != nil {
		return *e.InputTypes
	}
	return strings.Contains(strings.ToLower(e.BaseURL), "nvidia")
}

// ChunkingConfig holds chunker settings, measured in characters.
// Overlap is a pointer so that an explicit 0 can be told apart from a missing value.
type ChunkingConfig struct {
	MaxSize int  `yaml:"max_size"`
	Overlap *int `yaml:"overlap"`
}

// OverlapChars returns the configured overlap, 0 when unset.
func (c ChunkingConfig) OverlapChars() int {
	if c.Overlap == nil {
		return 0
	}
	return *c.Overlap
}

// RetrievalConfig holds vector index and top-k settings.
type RetrievalConfig struct {
	TopK      int    `yaml:"top_k"`
	IndexType string `yaml:"index_type"`
}

// SessionConfig holds session lifetime settings.
type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// PromptConfig holds the QA prompt; Template uses Go template syntax with
// {{.context}} and {{.input}} placeholders. Empty means the built-in prompt.
type PromptConfig struct {
	Template string `yaml:"template"`
}

// Load reads and parses the config file at path, applies defaults, and validates.
// Returns an error if the file cannot be read or parsed, or a value is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault is Load, except that a missing file yields the default config.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse parses YAML config data, applies defaults, and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Validate checks value ranges. Failures are *models.InvalidArgumentError.
func (c *Config) Validate() error {
	if c.Chunking.MaxSize <= 0 {
		return models.InvalidArgument("chunking.max_size", "must be positive, got %d", c.Chunking.MaxSize)
	}
	if ov := c.Chunking.OverlapChars(); ov < 0 || ov >= c.Chunking.MaxSize {
		return models.InvalidArgument("chunking.overlap", "must be in [0, %d), got %d", c.Chunking.MaxSize, ov)
	}
	if c.Retrieval.TopK <= 0 {
		return models.InvalidArgument("retrieval.top_k", "must be positive, got %d", c.Retrieval.TopK)
	}
	switch c.Retrieval.IndexType {
	case "memory", "chromem":
	default:
		return models.InvalidArgument("retrieval.index_type", "unknown index type %q (supported: memory, chromem)", c.Retrieval.IndexType)
	}
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderHashing:
	default:
		return models.InvalidArgument("embedding.provider", "unknown provider %q (supported: openai, hashing)", c.Embedding.Provider)
	}
	if c.Embedding.Provider == ProviderHashing && c.Embedding.Dimensions <= 0 {
		return models.InvalidArgument("embedding.dimensions", "must be positive for the hashing provider")
	}
	if c.Embedding.Concurrency <= 0 {
		return models.InvalidArgument("embedding.concurrency", "must be positive, got %d", c.Embedding.Concurrency)
	}
	if c.Embedding.BatchSize <= 0 {
		return models.InvalidArgument("embedding.batch_size", "must be positive, got %d", c.Embedding.BatchSize)
	}
	return nil
}

// ResolveAPIKey returns the provider credential from the environment.
// It fails when the variable is unset so that startup fails before first use.
func (c *Config) ResolveAPIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(c.LLM.APIKeyEnv))
	if key == "" {
		return "", fmt.Errorf("missing credential: environment variable %s is not set", c.LLM.APIKeyEnv)
	}
	return key, nil
}
