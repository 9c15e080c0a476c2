package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// PathsConfig locates the chunk corpus and the scoring artifact.
type PathsConfig struct {
	ChunkDir    string `yaml:"chunk_dir" env:"CHUNK_DIR"`
	MetricsFile string `yaml:"metrics_file" env:"METRICS_FILE"`
	ParentExt   string `yaml:"parent_ext" env:"PARENT_EXT"`
}

// TimelinessConfig selects the timeliness policy: filename, coinflip or fixed.
type TimelinessConfig struct {
	Mode       string  `yaml:"mode" env:"MODE"`
	Marker     string  `yaml:"marker" env:"MARKER"`
	Fallback   float64 `yaml:"fallback" env:"FALLBACK"`
	FixedValue float64 `yaml:"fixed_value" env:"FIXED_VALUE"`
	Seed       uint64  `yaml:"seed" env:"SEED"`
}

// ScoringConfig tunes the chunk metric extractor and the worker pool.
type ScoringConfig struct {
	Workers          int              `yaml:"workers" env:"WORKERS"`
	SpellWordCap     int              `yaml:"spell_word_cap" env:"SPELL_WORD_CAP"`
	MinCompleteChars int              `yaml:"min_complete_chars" env:"MIN_COMPLETE_CHARS"`
	DictionaryPath   string           `yaml:"dictionary_path" env:"DICTIONARY_PATH"`
	Timeliness       TimelinessConfig `yaml:"timeliness" envPrefix:"TIMELINESS_"`
}

// TiersConfig holds every trust threshold. ValidationHigh and ValidationLow
// bound the cohesion bands; scores strictly between them are in neither.
type TiersConfig struct {
	High           float64 `yaml:"high" env:"HIGH"`
	Medium         float64 `yaml:"medium" env:"MEDIUM"`
	Partition      float64 `yaml:"partition" env:"PARTITION"`
	ValidationHigh float64 `yaml:"validation_high" env:"VALIDATION_HIGH"`
	ValidationLow  float64 `yaml:"validation_low" env:"VALIDATION_LOW"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string `yaml:"api_key_env" env:"API_KEY_ENV"`
	Model       string `yaml:"model" env:"MODEL"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
	MaxRetries  int    `yaml:"max_retries" env:"MAX_RETRIES"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type" env:"TYPE"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how plain-text documents are split into chunk files.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap int `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type" env:"TYPE"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
// Each trust tier gets its own collection named {collection_prefix}_{tier}.
type QdrantConfig struct {
	Host             string `yaml:"host" env:"HOST"`
	Port             int    `yaml:"port" env:"PORT"`
	APIKey           string `yaml:"api_key" env:"API_KEY"`
	UseTLS           bool   `yaml:"use_tls" env:"USE_TLS"`
	CollectionPrefix string `yaml:"collection_prefix" env:"COLLECTION_PREFIX"`
}

// ChatConfig configures the OpenAI-compatible chat completions answerer.
type ChatConfig struct {
	BaseURL     string  `yaml:"base_url" env:"BASE_URL"`
	APIKeyEnv   string  `yaml:"api_key_env" env:"API_KEY_ENV"`
	Model       string  `yaml:"model" env:"MODEL"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS"`
	TimeoutSecs int     `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
}

// AnswererConfig selects how tier answers are produced: extractive or openai.
type AnswererConfig struct {
	Type         string      `yaml:"type" env:"TYPE"`
	MaxSentences int         `yaml:"max_sentences" env:"MAX_SENTENCES"`
	OpenAI       *ChatConfig `yaml:"openai,omitempty"`
}

// RetrievalConfig configures per-tier retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" env:"TOP_K"`
}

// ArchiveConfig selects an optional run archive: none or sqlite.
type ArchiveConfig struct {
	Type string `yaml:"type" env:"TYPE"`
	Path string `yaml:"path" env:"PATH"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Paths       PathsConfig       `yaml:"paths" envPrefix:"PATHS_"`
	Scoring     ScoringConfig     `yaml:"scoring" envPrefix:"SCORING_"`
	Tiers       TiersConfig       `yaml:"tiers" envPrefix:"TIERS_"`
	Embedder    EmbedderConfig    `yaml:"embedder" envPrefix:"EMBEDDER_"`
	Chunker     ChunkerConfig     `yaml:"chunker" envPrefix:"CHUNKER_"`
	VectorStore VectorStoreConfig `yaml:"vector_store" envPrefix:"VECTOR_STORE_"`
	Answerer    AnswererConfig    `yaml:"answerer" envPrefix:"ANSWERER_"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" envPrefix:"RETRIEVAL_"`
	Archive     ArchiveConfig     `yaml:"archive" envPrefix:"ARCHIVE_"`
}

// EnvPrefix prefixes every environment override, e.g. TRUSTRAG_TIERS_PARTITION.
const EnvPrefix = "TRUSTRAG_"

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied on top in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, finish(cfg)
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, finish(cfg)
}

// LoadDefault tries ./config.yaml first, then ~/.config/trustrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/trustrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, finish(cfg)
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects thresholds outside [0, 1] and inverted validation bands.
func (c *AppConfig) Validate() error {
	for name, v := range map[string]float64{
		"tiers.high":            c.Tiers.High,
		"tiers.medium":          c.Tiers.Medium,
		"tiers.partition":       c.Tiers.Partition,
		"tiers.validation_high": c.Tiers.ValidationHigh,
		"tiers.validation_low":  c.Tiers.ValidationLow,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	if c.Tiers.Medium > c.Tiers.High {
		return fmt.Errorf("tiers.medium (%v) must not exceed tiers.high (%v)", c.Tiers.Medium, c.Tiers.High)
	}
	if c.Tiers.ValidationLow > c.Tiers.ValidationHigh {
		return fmt.Errorf("tiers.validation_low (%v) must not exceed tiers.validation_high (%v)",
			c.Tiers.ValidationLow, c.Tiers.ValidationHigh)
	}
	switch c.Scoring.Timeliness.Mode {
	case "filename", "coinflip", "fixed":
	default:
		return fmt.Errorf("unknown timeliness mode: %s", c.Scoring.Timeliness.Mode)
	}
	return nil
}

func finish(cfg *AppConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	applyConfigDefaults(cfg)
	return cfg.Validate()
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trustrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Paths: PathsConfig{ChunkDir: "data/processed", MetricsFile: "data/processed/metrics.json", ParentExt: ".pdf"},
		Scoring: ScoringConfig{
			SpellWordCap:     500,
			MinCompleteChars: 100,
			Timeliness:       TimelinessConfig{Mode: "filename", Marker: "2023", Fallback: 0.5, FixedValue: 1.0},
		},
		Tiers:       TiersConfig{High: 0.75, Medium: 0.5, Partition: 0.75, ValidationHigh: 0.76, ValidationLow: 0.75},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{ChunkSize: 800, ChunkOverlap: 100},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Answerer:    AnswererConfig{Type: "extractive", MaxSentences: 3},
		Retrieval:   RetrievalConfig{TopK: 3},
		Archive:     ArchiveConfig{Type: "none"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Paths.ParentExt == "" {
		cfg.Paths.ParentExt = ".pdf"
	}
	if cfg.Paths.MetricsFile == "" {
		cfg.Paths.MetricsFile = filepath.Join(cfg.Paths.ChunkDir, "metrics.json")
	}
	if cfg.Scoring.Timeliness.Mode == "" {
		cfg.Scoring.Timeliness.Mode = "filename"
	}
	if cfg.Chunker.ChunkSize <= 0 {
		cfg.Chunker.ChunkSize = 800
	}
	if cfg.Chunker.ChunkOverlap < 0 || cfg.Chunker.ChunkOverlap >= cfg.Chunker.ChunkSize {
		cfg.Chunker.ChunkOverlap = 0
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Answerer.MaxSentences <= 0 {
		cfg.Answerer.MaxSentences = 3
	}
	if cfg.Archive.Type == "" {
		cfg.Archive.Type = "none"
	}
	if cfg.Archive.Type == "sqlite" && cfg.Archive.Path == "" {
		cfg.Archive.Path = filepath.Join(filepath.Dir(cfg.Paths.MetricsFile), "score_runs.db")
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.Host == "" {
			cfg.VectorStore.Qdrant.Host = "localhost"
		}
		if cfg.VectorStore.Qdrant.Port == 0 {
			cfg.VectorStore.Qdrant.Port = 6334
		}
		if cfg.VectorStore.Qdrant.CollectionPrefix == "" {
			cfg.VectorStore.Qdrant.CollectionPrefix = "trustrag"
		}
	}
	if cfg.Answerer.Type == "openai" {
		if cfg.Answerer.OpenAI == nil {
			cfg.Answerer.OpenAI = &ChatConfig{}
		}
		if cfg.Answerer.OpenAI.BaseURL == "" {
			cfg.Answerer.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Answerer.OpenAI.APIKeyEnv == "" {
			cfg.Answerer.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Answerer.OpenAI.Model == "" {
			cfg.Answerer.OpenAI.Model = "gpt-4o-mini"
		}
		if cfg.Answerer.OpenAI.Temperature == 0 {
			cfg.Answerer.OpenAI.Temperature = 0.3
		}
		if cfg.Answerer.OpenAI.MaxTokens == 0 {
			cfg.Answerer.OpenAI.MaxTokens = 512
		}
		if cfg.Answerer.OpenAI.TimeoutSecs == 0 {
			cfg.Answerer.OpenAI.TimeoutSecs = 120
		}
	}
}
