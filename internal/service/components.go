package service

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"trustrag/internal/answer"
	"trustrag/internal/config"
	"trustrag/internal/domain"
	"trustrag/internal/metrics"
	"trustrag/internal/scorestore"
	"trustrag/internal/scorestore/sqlite"
	"trustrag/internal/spell"
	"trustrag/internal/tier"
	"trustrag/internal/vectorstore/memory"
	"trustrag/internal/vectorstore/qdrant"
)

// NewExtractor builds the chunk metric extractor described by cfg.
func NewExtractor(cfg config.ScoringConfig) (*metrics.Extractor, error) {
	policy, err := NewTimelinessPolicy(cfg.Timeliness)
	if err != nil {
		return nil, err
	}
	opts := []metrics.Option{
		metrics.WithTimeliness(policy),
		metrics.WithOptions(metrics.Options{
			SpellWordCap:     cfg.SpellWordCap,
			MinCompleteChars: cfg.MinCompleteChars,
		}),
	}
	if cfg.DictionaryPath != "" {
		dict, err := spell.LoadFile(cfg.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		slog.Debug("loaded dictionary", "path", cfg.DictionaryPath, "words", dict.Len())
		opts = append(opts, metrics.WithDictionary(dict))
	}
	return metrics.NewExtractor(opts...), nil
}

// NewTimelinessPolicy maps the configured mode to a policy.
func NewTimelinessPolicy(cfg config.TimelinessConfig) (metrics.TimelinessPolicy, error) {
	switch cfg.Mode {
	case "filename", "":
		return metrics.FilenameMarker(cfg.Marker, cfg.Fallback), nil
	case "coinflip":
		return metrics.CoinFlip(cfg.Marker, cfg.Fallback, cfg.Seed), nil
	case "fixed":
		return metrics.Fixed(cfg.FixedValue), nil
	default:
		return nil, fmt.Errorf("unknown timeliness mode: %s", cfg.Mode)
	}
}

// Thresholds converts the configured tier bounds.
func Thresholds(cfg config.TiersConfig) tier.Thresholds {
	return tier.Thresholds{High: cfg.High, Low: cfg.Medium}
}

// Bands converts the configured validation bounds.
func Bands(cfg config.TiersConfig) tier.Bands {
	return tier.Bands{High: cfg.ValidationHigh, Low: cfg.ValidationLow}
}

// NewTierStore builds the vector store for one readiness tier. The returned
// closer releases any connection and is never nil.
func NewTierStore(cfg config.VectorStoreConfig, r tier.Readiness) (domain.VectorStore, io.Closer, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.NewStorage(), nopCloser{}, nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		st, err := qdrant.NewStorage(qdrant.Config{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
			Collection: CollectionName(cfg.Qdrant.CollectionPrefix, r),
		})
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

// CollectionName names a tier's collection, e.g. trustrag_ai_ready.
func CollectionName(prefix string, r tier.Readiness) string {
	if r == tier.AIReady {
		return prefix + "_ai_ready"
	}
	return prefix + "_non_ai_ready"
}

// NewAnswerer builds the answer generator described by cfg.
func NewAnswerer(cfg config.AnswererConfig) (domain.Answerer, error) {
	switch cfg.Type {
	case "extractive", "":
		return answer.NewExtractive(cfg.MaxSentences), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai answerer config missing")
		}
		c := cfg.OpenAI
		return answer.NewChat(c.APIKeyEnv,
			answer.WithBaseURL(c.BaseURL),
			answer.WithModel(c.Model),
			answer.WithTemperature(c.Temperature),
			answer.WithMaxTokens(c.MaxTokens),
			answer.WithTimeout(time.Duration(c.TimeoutSecs)*time.Second),
		), nil
	default:
		return nil, fmt.Errorf("unknown answerer: %s", cfg.Type)
	}
}

// OpenArchive opens the configured run archive, or returns nil when
// archiving is off.
func OpenArchive(cfg config.ArchiveConfig) (scorestore.Archive, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "sqlite":
		a, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive: %s", cfg.Type)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
