// Package config loads the sermondex YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the server and CLI configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Search    SearchConfig    `yaml:"search"`
	Index     IndexConfig     `yaml:"index"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"` // ingest with LLM extraction is slow
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBodyMB       int `yaml:"max_body_mb"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding settings. Providers are tried in order.
type EmbeddingConfig struct {
	Providers           []ProviderConfig `yaml:"providers"`
	Model               string           `yaml:"model"`
	Dimensions          int              `yaml:"dimensions"`
	DocumentInstruction string           `yaml:"document_instruction"`
	QueryInstruction    string           `yaml:"query_instruction"`
	BatchSize           int              `yaml:"batch_size"`
	Cache               CacheConfig      `yaml:"cache"`
}

// ProviderConfig holds one OpenAI-compatible endpoint. An empty Model uses
// the section model.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheRedis  = "redis"
	CacheBadger = "badger"
)

// CacheConfig selects where embedding vectors are cached.
type CacheConfig struct {
	Backend  string `yaml:"backend"` // redis (default), badger, none
	Dir      string `yaml:"dir"`     // badger directory, empty for in-memory
	TTLHours int    `yaml:"ttl_hours"`
}

// LLMConfig holds language model settings. Providers are tried in order.
type LLMConfig struct {
	Providers          []ProviderConfig `yaml:"providers"`
	Temperature        float64          `yaml:"temperature"`
	MaxTokens          int              `yaml:"max_tokens"`
	CorrectTranscripts bool             `yaml:"correct_transcripts"`
	ExtractMetadata    *bool            `yaml:"extract_metadata"`
}

// Enabled reports whether any provider is configured.
func (c LLMConfig) Enabled() bool { return len(c.Providers) > 0 }

// Extraction reports whether per-chunk extraction should run.
func (c LLMConfig) Extraction() bool {
	return c.Enabled() && (c.ExtractMetadata == nil || *c.ExtractMetadata)
}

// IngestConfig holds chunking and pipeline settings.
type IngestConfig struct {
	ChunkSize         int `yaml:"chunk_size"`
	OverlapPercent    int `yaml:"overlap_percent"`
	ExtractionWorkers int `yaml:"extraction_workers"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	RAGContextSize int `yaml:"rag_context_size"`
}

// IndexConfig holds HNSW settings used when indexes are created.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyMB <= 0 {
		c.HTTP.MaxBodyMB = 32
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "sermondex:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 100
	}
	if c.Embedding.Cache.Backend == "" {
		c.Embedding.Cache.Backend = CacheRedis
	}
	for i := range c.Embedding.Providers {
		p := &c.Embedding.Providers[i]
		if p.Model == "" {
			p.Model = c.Embedding.Model
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("embedding-%d", i)
		}
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.7
	}
	for i := range c.LLM.Providers {
		if c.LLM.Providers[i].Name == "" {
			c.LLM.Providers[i].Name = fmt.Sprintf("llm-%d", i)
		}
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 500
	}
	if c.Ingest.OverlapPercent <= 0 {
		c.Ingest.OverlapPercent = 20
	}
	if c.Search.RAGContextSize <= 0 {
		c.Search.RAGContextSize = 3
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	if len(c.Embedding.Providers) == 0 {
		return errors.New("embedding.providers needs at least one provider")
	}
	for i, p := range c.Embedding.Providers {
		if p.APIKey == "" && p.BaseURL == "" {
			return fmt.Errorf("embedding.providers[%d] (%s) needs api_key or base_url", i, p.Name)
		}
	}
	for i, p := range c.LLM.Providers {
		if p.Model == "" {
			return fmt.Errorf("llm.providers[%d] (%s).model is required", i, p.Name)
		}
	}
	switch c.Embedding.Cache.Backend {
	case CacheRedis, CacheBadger, CacheNone:
	default:
		return fmt.Errorf("embedding.cache.backend must be %q, %q or %q, got %q",
			CacheRedis, CacheBadger, CacheNone, c.Embedding.Cache.Backend)
	}
	if c.LLM.CorrectTranscripts && !c.LLM.Enabled() {
		return errors.New("llm.correct_transcripts needs at least one llm provider")
	}
	if c.Ingest.OverlapPercent >= 100 {
		return fmt.Errorf("ingest.overlap_percent must be below 100, got %d", c.Ingest.OverlapPercent)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
