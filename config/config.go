package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Defaults for the tunables that may be left unset. Chunking and
// retrieval values must match the corpus the index was built with;
// changing them calls for a re-ingest.
const (
	DefaultMaxChunkSize   = 1000
	DefaultOverlapSize    = 200
	DefaultTopK           = 5
	DefaultMaxContextSize = 8000
	DefaultEmbedBatchSize = 32
	DefaultRequestTimeout = 30 * time.Second
)

type Config struct {
	Port           string          `mapstructure:"port"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	AI             AIConfig        `mapstructure:"ai"`
	Weaviate       WeaviateConfig  `mapstructure:"weaviate"`
	Chunking       ChunkingConfig  `mapstructure:"chunking"`
	Retrieval      RetrievalConfig `mapstructure:"retrieval"`
	Ingest         IngestConfig    `mapstructure:"ingest"`
}

type AIConfig struct {
	Provider        string `mapstructure:"provider"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
	GenerationModel string `mapstructure:"generation_model"`
	Endpoint        string `mapstructure:"endpoint"` // OpenAI-compatible base URL, openai provider only
	GoogleAPIKey    string `mapstructure:"google_api_key"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"` // scheme optional, e.g. "http://localhost:8080"
	APIKey string `mapstructure:"api_key"`
}

type ChunkingConfig struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
	OverlapSize  int `mapstructure:"overlap_size"`
}

type RetrievalConfig struct {
	TopK           int     `mapstructure:"top_k"`
	MinCertainty   float64 `mapstructure:"min_certainty"` // 0 disables the similarity floor
	MaxContextSize int     `mapstructure:"max_context_size"`
}

type IngestConfig struct {
	SourceDir      string `mapstructure:"source_dir"`
	EmbedBatchSize int    `mapstructure:"embed_batch_size"`
}

// LoadConfig reads the optional yaml file at configPath and overlays
// environment variables (dots become underscores, e.g. AI_PROVIDER).
// Secrets are env-only: GOOGLE_API_KEY, OPENAI_API_KEY, WEAVIATE_API_KEY.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Required options have no usable default; Validate catches them.
	v.SetDefault("port", "8000")
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.embedding_model", "")
	v.SetDefault("ai.generation_model", "")
	v.SetDefault("ai.endpoint", "")
	v.SetDefault("weaviate.host", "")
	v.SetDefault("chunking.max_chunk_size", DefaultMaxChunkSize)
	v.SetDefault("chunking.overlap_size", DefaultOverlapSize)
	v.SetDefault("retrieval.top_k", DefaultTopK)
	v.SetDefault("retrieval.min_certainty", 0.0)
	v.SetDefault("retrieval.max_context_size", DefaultMaxContextSize)
	v.SetDefault("ingest.source_dir", "knowledge_source")
	v.SetDefault("ingest.embed_batch_size", DefaultEmbedBatchSize)

	v.BindEnv("ai.google_api_key", "GOOGLE_API_KEY")
	v.BindEnv("ai.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("weaviate.api_key", "WEAVIATE_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		// The yaml file is an optional base; env alone is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate enforces the options that must be present at process start.
func (c *Config) Validate() error {
	if c.AI.EmbeddingModel == "" {
		return fmt.Errorf("ai.embedding_model is required")
	}
	if c.AI.GenerationModel == "" {
		return fmt.Errorf("ai.generation_model is required")
	}
	if c.Weaviate.Host == "" {
		return fmt.Errorf("weaviate.host is required")
	}
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" && c.AI.Endpoint == "" {
			return fmt.Errorf("OPENAI_API_KEY or ai.endpoint is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.Chunking.OverlapSize >= c.Chunking.MaxChunkSize {
		return fmt.Errorf("chunking.overlap_size must be smaller than chunking.max_chunk_size")
	}
	return nil
}
