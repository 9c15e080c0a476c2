// Package embedding selects the text embedder shared by both trust tiers.
package embedding

import (
	"fmt"
	"time"

	"trustrag/internal/config"
	"trustrag/internal/domain"
	"trustrag/internal/embedding/openai"
	"trustrag/internal/embedding/tfidf"
)

// Embedder converts free text into a numeric vector representation.
type Embedder = domain.Embedder

// New builds the embedder named by cfg.Type.
func New(cfg config.EmbedderConfig) (Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}
