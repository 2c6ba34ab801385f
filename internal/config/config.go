// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

// Package config loads the assistant configuration with the standard
// precedence flag > env > file > defaults, via Viper.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// Config is the top-level configuration.
type Config struct {
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Pinecone PineconeConfig `mapstructure:"pinecone"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Index    IndexConfig    `mapstructure:"index"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

// GeminiConfig holds Gemini API credentials and model selection.
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	EmbedModel string `mapstructure:"embed_model"`
	ChatModel  string `mapstructure:"chat_model"`
	Dimension  int    `mapstructure:"dimension"`
}

// PineconeConfig holds Pinecone credentials and index provisioning.
type PineconeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Index  string `mapstructure:"index"`
	Cloud  string `mapstructure:"cloud"`
	Region string `mapstructure:"region"`
}

// Neo4jConfig holds graph store connection settings.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig controls the embedding cache.
type CacheConfig struct {
	Path           string        `mapstructure:"path"`
	TTL            time.Duration `mapstructure:"ttl"`
	MaxEntries     int           `mapstructure:"max_entries"`
	RetainFraction float64       `mapstructure:"retain_fraction"`
}

// IndexConfig selects the vector-index backend.
type IndexConfig struct {
	Backend   string `mapstructure:"backend"`
	LocalPath string `mapstructure:"local_path"`
}

// ChatConfig controls retrieval breadth.
type ChatConfig struct {
	TopK int `mapstructure:"top_k"`
}

// IngestConfig controls the dataset upload pipeline.
type IngestConfig struct {
	Dataset   string `mapstructure:"dataset"`
	BatchSize int    `mapstructure:"batch_size"`
}

// Vector-index backends.
const (
	BackendPinecone = "pinecone"
	BackendLocal    = "local"
)

// SetDefaults registers every configuration default on v.
func SetDefaults(v *viper.Viper) {
	// Credential keys default to empty so environment overrides are
	// visible to Unmarshal.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("pinecone.api_key", "")
	v.SetDefault("neo4j.password", "")

	v.SetDefault("gemini.embed_model", "text-embedding-004")
	v.SetDefault("gemini.chat_model", "gemini-2.5-flash")
	v.SetDefault("gemini.dimension", 768)

	v.SetDefault("pinecone.index", "vietnam-travel")
	v.SetDefault("pinecone.cloud", "aws")
	v.SetDefault("pinecone.region", "us-east-1")

	v.SetDefault("neo4j.uri", "neo4j://127.0.0.1:7687")
	v.SetDefault("neo4j.username", "neo4j")

	v.SetDefault("cache.path", "embeddings_cache.sqlite")
	v.SetDefault("cache.ttl", 30*24*time.Hour)
	v.SetDefault("cache.max_entries", 200_000)
	v.SetDefault("cache.retain_fraction", 0.9)

	v.SetDefault("index.backend", BackendPinecone)
	v.SetDefault("index.local_path", "vector_index.sqlite")

	v.SetDefault("chat.top_k", 5)

	v.SetDefault("ingest.dataset", "vietnam_travel_dataset.json")
	v.SetDefault("ingest.batch_size", 32)
}

// SetupEnv binds HYBRIDCHAT_-prefixed environment variables, e.g.
// HYBRIDCHAT_GEMINI_API_KEY for gemini.api_key.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("HYBRIDCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeConfigParseInvalidFormat, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from an optional file path with defaults and
// environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.Wrapf(err, apperr.CodeConfigLoadReadFailure, "reading config %s", path)
		}
	}

	return FromViper(v)
}

// Validate rejects out-of-range values. Credentials are checked lazily
// by the component that needs them, so read-only commands work without
// a full set of keys.
func (c *Config) Validate() error {
	if c.Gemini.Dimension <= 0 {
		return apperr.Errorf(apperr.CodeConfigValidateInvalidValue, "gemini.dimension %d must be positive", c.Gemini.Dimension)
	}
	if c.Cache.TTL < 0 {
		return apperr.Errorf(apperr.CodeConfigValidateInvalidValue, "cache.ttl %s must not be negative", c.Cache.TTL)
	}
	if c.Cache.MaxEntries <= 0 {
		return apperr.Errorf(apperr.CodeConfigValidateInvalidValue, "cache.max_entries %d must be positive", c.Cache.MaxEntries)
	}
	if c.Cache.RetainFraction <= 0 || c.Cache.RetainFraction > 1 {
		return apperr.Errorf(apperr.CodeConfigValidateInvalidValue, "cache.retain_fraction %v must be in (0, 1]", c.Cache.RetainFraction)
	}
	if c.Chat.TopK <= 0 {
		return apperr.Errorf(apperr.CodeConfigValidateInvalidValue, "chat.top_k %d must be positive", c.Chat.TopK)
	}
	if c.Ingest.BatchSize <= 0 {
		return apperr.Errorf(apperr.CodeConfigValidateInvalidValue, "ingest.batch_size %d must be positive", c.Ingest.BatchSize)
	}
	if c.Index.Backend != BackendPinecone && c.Index.Backend != BackendLocal {
		return apperr.Errorf(apperr.CodeConfigValidateInvalidValue, "index.backend %q must be %q or %q", c.Index.Backend, BackendPinecone, BackendLocal)
	}
	return nil
}
