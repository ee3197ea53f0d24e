// Package config loads docqa settings from a YAML file, a .env file and
// environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/docqa"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Index backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Embedding providers.
const (
	ProviderGemini = "gemini"
	ProviderHash   = "hash"
)

// ChunkingConfig sizes the word windows pages are split into.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`

	// Concurrent embedding calls while processing a corpus.
	Concurrency int `yaml:"concurrency"`

	// Embedding calls per second. Zero means unlimited.
	RateLimit float64 `yaml:"rate_limit"`
}

// LLMConfig configures the language model.
type LLMConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key,omitempty"`

	// Maximum prompt size in tokens. Zero disables trimming.
	TokenBudget int `yaml:"token_budget"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root configuration.
type Config struct {
	DocsRoot     string `yaml:"docs_root"`
	VectorRoot   string `yaml:"vector_root"`
	Database     string `yaml:"database"`
	IndexBackend string `yaml:"index_backend"`
	TopK         int    `yaml:"top_k"`

	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Server    ServerConfig    `yaml:"server"`
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with default values.
func (c *Config) ApplyDefaults() {
	if c.DocsRoot == "" {
		c.DocsRoot = "~/.docqa/docs"
	}
	if c.VectorRoot == "" {
		c.VectorRoot = "~/.docqa/vectorstores"
	}
	if c.Database == "" {
		c.Database = "~/.docqa/docqa.db"
	}
	if c.IndexBackend == "" {
		c.IndexBackend = BackendSQLite
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.Chunking.Size == 0 {
		c.Chunking.Size = 200
		if c.Chunking.Overlap == 0 {
			c.Chunking.Overlap = 40
		}
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderGemini
	}
	if c.Embedding.Model == "" && c.Embedding.Provider == ProviderGemini {
		c.Embedding.Model = "gemini-embedding-001"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 768
	}
	if c.Embedding.Concurrency == 0 {
		c.Embedding.Concurrency = 4
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.5-flash"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8000"
	}
}

// Validate returns an error if the configuration cannot be used.
func (c *Config) Validate() error {
	switch c.IndexBackend {
	case BackendSQLite, BackendBolt:
	default:
		return docqa.Errorf(docqa.EINVALID, "unknown index backend %q", c.IndexBackend)
	}
	switch c.Embedding.Provider {
	case ProviderGemini, ProviderHash:
	default:
		return docqa.Errorf(docqa.EINVALID, "unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return docqa.Errorf(docqa.EINVALID, "embedding dimensions must be positive")
	}
	if c.TopK <= 0 {
		return docqa.Errorf(docqa.EINVALID, "top_k must be positive")
	}
	return c.ChunkOptions().Validate()
}

// ChunkOptions returns the chunking settings.
func (c *Config) ChunkOptions() docqa.ChunkOptions {
	return docqa.ChunkOptions{Size: c.Chunking.Size, Overlap: c.Chunking.Overlap}
}

// Load reads the configuration at path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, docqa.WrapError(err, docqa.EINVALID, "invalid config file %q", path)
		}
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// Save writes the configuration to path, creating directories as needed.
// The API key is never written.
func Save(path string, cfg *Config) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	c := *cfg
	c.LLM.APIKey = ""
	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnvFile loads variables from a .env file into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides fields from DOCQA_* variables and GEMINI_API_KEY.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"DOCQA_DOCS_ROOT":          &c.DocsRoot,
		"DOCQA_VECTOR_ROOT":        &c.VectorRoot,
		"DOCQA_DB":                 &c.Database,
		"DOCQA_INDEX_BACKEND":      &c.IndexBackend,
		"DOCQA_EMBEDDING_PROVIDER": &c.Embedding.Provider,
		"DOCQA_EMBEDDING_MODEL":    &c.Embedding.Model,
		"DOCQA_LLM_MODEL":          &c.LLM.Model,
		"DOCQA_ADDR":               &c.Server.Addr,
		"GEMINI_API_KEY":           &c.LLM.APIKey,
	}
	for key, field := range strs {
		if v := getenv(key); v != "" {
			*field = v
		}
	}

	ints := map[string]*int{
		"DOCQA_TOP_K":                &c.TopK,
		"DOCQA_CHUNK_SIZE":           &c.Chunking.Size,
		"DOCQA_CHUNK_OVERLAP":        &c.Chunking.Overlap,
		"DOCQA_EMBEDDING_DIMENSIONS": &c.Embedding.Dimensions,
		"DOCQA_TOKEN_BUDGET":         &c.LLM.TokenBudget,
	}
	for key, field := range ints {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return docqa.Errorf(docqa.EINVALID, "%s must be an integer, got %q", key, v)
		}
		*field = n
	}
	return nil
}

// ExpandHome replaces a leading "~" with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
