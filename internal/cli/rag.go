package cli

import (
	"context"
	"errors"
	"io"

	"trustrag/internal/embedding"
	"trustrag/internal/service"
	"trustrag/internal/tier"
)

// buildRAG loads the scored corpus and indexes both tiers. The returned
// cleanup closes the tier stores.
func buildRAG(ctx context.Context) (*service.RAGService, func(), error) {
	corpus, err := service.LoadCorpus(cfg.Paths.ChunkDir, cfg.Paths.ParentExt, cfg.Paths.MetricsFile)
	if err != nil {
		return nil, nil, err
	}
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, nil, err
	}
	ans, err := service.NewAnswerer(cfg.Answerer)
	if err != nil {
		return nil, nil, err
	}
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	ready, rc, err := service.NewTierStore(cfg.VectorStore, tier.AIReady)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, rc)
	notReady, nc, err := service.NewTierStore(cfg.VectorStore, tier.NonAIReady)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, nc)

	svc := service.NewRAGService(emb, ans, ready, notReady, service.RAGOptions{
		Thresholds: service.Thresholds(cfg.Tiers),
		Partition:  cfg.Tiers.Partition,
		TopK:       cfg.Retrieval.TopK,
	})
	if _, err := svc.Index(ctx, corpus); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func tierErr(err error) string {
	if errors.Is(err, service.ErrTierUnavailable) {
		return "No documents available in this tier."
	}
	return err.Error()
}
