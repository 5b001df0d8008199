package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{
			Providers: []ProviderConfig{{Name: "openai", APIKey: "sk-test"}},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"no embedding providers", func(c *Config) { c.Embedding.Providers = nil }, "embedding.providers"},
		{"provider without credentials", func(c *Config) {
			c.Embedding.Providers = []ProviderConfig{{Name: "bare"}}
		}, "embedding.providers[0] (bare)"},
		{"llm provider without model", func(c *Config) {
			c.LLM.Providers = []ProviderConfig{{Name: "gpt", APIKey: "k"}}
		}, "llm.providers[0] (gpt).model"},
		{"unknown cache backend", func(c *Config) { c.Embedding.Cache.Backend = "memcached" }, "embedding.cache.backend"},
		{"correction without llm", func(c *Config) { c.LLM.CorrectTranscripts = true }, "llm.correct_transcripts"},
		{"overlap too large", func(c *Config) { c.Ingest.OverlapPercent = 100 }, "ingest.overlap_percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{Providers: []ProviderConfig{{APIKey: "k"}, {Model: "bge-m3", APIKey: "k"}}},
		LLM:       LLMConfig{Providers: []ProviderConfig{{Model: "gpt-4o-mini"}}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 300 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected http timeouts %+v", cfg.HTTP)
	}
	if cfg.Storage.KeyPrefix != "sermondex:" {
		t.Errorf("expected KeyPrefix='sermondex:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected embedding defaults %s/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Providers[0].Model != "text-embedding-3-small" || cfg.Embedding.Providers[1].Model != "bge-m3" {
		t.Errorf("provider model defaults wrong: %+v", cfg.Embedding.Providers)
	}
	if cfg.Embedding.Providers[0].Name != "embedding-0" || cfg.LLM.Providers[0].Name != "llm-0" {
		t.Errorf("provider names not filled: %+v %+v", cfg.Embedding.Providers, cfg.LLM.Providers)
	}
	if cfg.Embedding.Cache.Backend != CacheRedis {
		t.Errorf("expected redis cache by default, got %q", cfg.Embedding.Cache.Backend)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.LLM.Temperature)
	}
	if cfg.Ingest.ChunkSize != 500 || cfg.Ingest.OverlapPercent != 20 {
		t.Errorf("unexpected chunking defaults %+v", cfg.Ingest)
	}
	if cfg.Search.RAGContextSize != 3 {
		t.Errorf("expected rag context 3, got %d", cfg.Search.RAGContextSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index:   IndexConfig{HNSWM: 32, HNSWEFConstruct: 400},
		Storage: StorageConfig{KeyPrefix: "custom:"},
		Ingest:  IngestConfig{ChunkSize: 800, OverlapPercent: 10},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Ingest.ChunkSize != 800 || cfg.Ingest.OverlapPercent != 10 {
		t.Errorf("chunking overridden: %+v", cfg.Ingest)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("SD_REDIS", "redis:6379")
	t.Setenv("SD_KEY", "sk-live")

	cfg, err := Parse([]byte(`
http:
  port: ${SD_PORT:-8090}
database:
  addrs: ["${SD_REDIS}"]
embedding:
  providers:
    - name: openai
      api_key: ${SD_KEY}
    - name: local
      base_url: http://localhost:8000/v1
      model: bge-m3
  cache:
    backend: badger
    dir: /tmp/sd-cache
llm:
  providers:
    - name: gpt
      api_key: ${SD_KEY}
      model: gpt-4o-mini
  extract_metadata: false
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8090 {
		t.Errorf("expected default port 8090, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "redis:6379" {
		t.Errorf("expected expanded addr, got %v", cfg.Database.Addrs)
	}
	if cfg.Embedding.Providers[0].APIKey != "sk-live" || cfg.Embedding.Providers[1].Model != "bge-m3" {
		t.Errorf("unexpected providers %+v", cfg.Embedding.Providers)
	}
	if cfg.Embedding.Cache.Backend != CacheBadger || cfg.Embedding.Cache.Dir != "/tmp/sd-cache" {
		t.Errorf("unexpected cache %+v", cfg.Embedding.Cache)
	}
	if !cfg.LLM.Enabled() || cfg.LLM.Extraction() {
		t.Errorf("expected llm enabled with extraction off, got %+v", cfg.LLM)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLLMConfig_Extraction(t *testing.T) {
	off := false
	if (LLMConfig{}).Extraction() {
		t.Error("extraction needs a provider")
	}
	withProvider := LLMConfig{Providers: []ProviderConfig{{Model: "m"}}}
	if !withProvider.Extraction() {
		t.Error("extraction defaults on when a provider exists")
	}
	withProvider.ExtractMetadata = &off
	if withProvider.Extraction() {
		t.Error("extraction can be switched off")
	}
}
