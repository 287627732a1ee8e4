// Package config loads the indexer's configuration from defaults, an
// optional YAML file, and environment variable overrides, in that order
// of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/forge-indexer/forge-indexer/pkg/ignore"
)

// Config holds all configuration for the indexing/retrieval service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Indexing   IndexingConfig   `yaml:"indexing"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	VectorDB   VectorDBConfig   `yaml:"vectordb"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
	Ignore     IgnoreConfig     `yaml:"ignore"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ChunkingConfig carries the chunker's size thresholds and merge
// behavior. They are configurable so operators can tune them without a
// rebuild.
type ChunkingConfig struct {
	MaxChunkBytes              int     `yaml:"max_chunk_bytes"`
	MinChunkBytes              int     `yaml:"min_chunk_bytes"`
	MinSplitBytes              int     `yaml:"min_split_bytes"`
	FallbackWindowLines        int     `yaml:"fallback_window_lines"`
	FallbackSnapLines          int     `yaml:"fallback_snap_lines"`
	MergeUpSimilarityThreshold float64 `yaml:"merge_up_similarity_threshold"`
}

type IndexingConfig struct {
	BatchSize          int  `yaml:"batch_size"`
	MaxConcurrentFiles int  `yaml:"max_concurrent_files"`
	MaxFileSizeMB      int  `yaml:"max_file_size_mb"`
	Incremental        bool `yaml:"incremental"`
}

// CacheConfig names where the incremental-reindex file-hash cache is
// persisted, the way the teacher's pkg/config.CacheConfig does for its
// FileHashManager.
type CacheConfig struct {
	Directory string `yaml:"directory"`
}

// EmbeddingsConfig selects and configures the embedder backend. Backend
// is one of "openai", "local", "hybrid".
type EmbeddingsConfig struct {
	Backend            string `yaml:"backend"`
	OpenAIAPIKey       string `yaml:"-"`
	OpenAIModel        string `yaml:"openai_model"`
	OpenAIBaseURL      string `yaml:"openai_base_url"`
	LocalModelPath     string `yaml:"local_model_path"`
	LocalTokenizerPath string `yaml:"local_tokenizer_path"`
	TruncateDimension  int    `yaml:"truncate_dimension"`
}

type VectorDBConfig struct {
	URL             string `yaml:"url"`
	CollectionBase  string `yaml:"collection_base"`
	NamespacePrefix string `yaml:"namespace_prefix"`
	DistanceMetric  string `yaml:"distance_metric"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type IgnoreConfig struct {
	AllowExtensions []string `yaml:"allow_extensions"`
}

// Load loads configuration from defaults, an optional config file, then
// environment variable overrides, in that order.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := getConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.Cache.Directory = expandPath(cfg.Cache.Directory)

	return cfg, nil
}

// expandPath resolves a leading "~" against the user's home directory,
// the way the teacher's pkg/config.expandPath does for its cache/log
// directories.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// DefaultConfig returns the default configuration, with the chunking
// constants set to the standard defaults (MAX_CHUNK=2000, MIN_CHUNK=100,
// MIN_SPLIT=100) and the usual collection base/namespace-prefix defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "forge-indexer",
			Version: "0.1.0",
		},
		Chunking: ChunkingConfig{
			MaxChunkBytes:              2000,
			MinChunkBytes:              100,
			MinSplitBytes:              100,
			FallbackWindowLines:        50,
			FallbackSnapLines:          20,
			MergeUpSimilarityThreshold: 0.3,
		},
		Indexing: IndexingConfig{
			BatchSize:          10,
			MaxConcurrentFiles: 5,
			MaxFileSizeMB:      1,
			Incremental:        true,
		},
		Embeddings: EmbeddingsConfig{
			Backend:       "openai",
			OpenAIModel:   "text-embedding-3-large",
			OpenAIBaseURL: "https://api.openai.com/v1",
		},
		VectorDB: VectorDBConfig{
			URL:             "http://localhost:6334",
			CollectionBase:  "forge-indexer",
			NamespacePrefix: "",
			DistanceMetric:  "cosine",
		},
		Cache: CacheConfig{
			Directory: "~/.forge-indexer/cache",
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
		Ignore: IgnoreConfig{
			AllowExtensions: ignore.DefaultAllowExtensions(),
		},
	}
}

func getConfigPath() string {
	if path := os.Getenv("FORGE_INDEXER_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	home, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(home, ".forge-indexer", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies the recognized environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.VectorDB.URL = v
	}
	if v := os.Getenv("QDRANT_COLLECTION"); v != "" {
		cfg.VectorDB.CollectionBase = v
	}
	if v := os.Getenv("QDRANT_NAMESPACE_PREFIX"); v != "" {
		cfg.VectorDB.NamespacePrefix = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Embeddings.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_EMBEDDING_MODEL"); v != "" {
		cfg.Embeddings.OpenAIModel = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_JSON_FORMAT"); v == "true" || v == "1" {
		cfg.Logging.JSON = true
	}
}

// CollectionName returns the namespace-prefixed collection name.
func (c *VectorDBConfig) CollectionName() string {
	if c.NamespacePrefix == "" {
		return c.CollectionBase
	}
	return c.NamespacePrefix + "-" + c.CollectionBase
}
