package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"trustrag/internal/compare"
	"trustrag/internal/domain"
	"trustrag/internal/tier"
)

// ErrTierUnavailable is reported for a readiness tier that has no chunks.
var ErrTierUnavailable = errors.New("no documents available in this tier")

// RAGOptions tunes the tiered retrieval service.
type RAGOptions struct {
	Thresholds tier.Thresholds
	Partition  float64
	TopK       int
}

type tierIndex struct {
	readiness tier.Readiness
	store     domain.VectorStore
	chunks    []domain.Chunk
}

// RAGService answers each question twice, once from AI-ready documents and
// once from the rest, so the two answers can be compared.
type RAGService struct {
	embedder domain.Embedder
	answerer domain.Answerer
	opts     RAGOptions
	tiers    [2]*tierIndex
	scores   tier.ScoreIndex
	records  []domain.DocumentScore
}

// NewRAGService creates a service backed by one store per readiness tier.
// Both tiers share the embedder.
func NewRAGService(embedder domain.Embedder, answerer domain.Answerer, ready, notReady domain.VectorStore, opts RAGOptions) *RAGService {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	s := &RAGService{embedder: embedder, answerer: answerer, opts: opts}
	s.tiers[tier.AIReady] = &tierIndex{readiness: tier.AIReady, store: ready}
	s.tiers[tier.NonAIReady] = &tierIndex{readiness: tier.NonAIReady, store: notReady}
	return s
}

// IndexSummary counts the chunks placed in each tier.
type IndexSummary struct {
	Ready    int
	NotReady int
}

// Index partitions corpus chunks by their parent's score and fills both
// stores. A chunk whose parent was never scored counts as 0 and lands in
// the non-AI-ready tier. The embedder is prepared once over every chunk so
// both tiers share one vector space.
func (s *RAGService) Index(ctx context.Context, corpus *Corpus) (*IndexSummary, error) {
	s.scores = corpus.Scores
	s.records = corpus.Records
	ready, notReady := tier.Partition(corpus.Chunks, corpus.Scores.ChunkScore, s.opts.Partition)
	s.tiers[tier.AIReady].chunks = ready
	s.tiers[tier.NonAIReady].chunks = notReady

	texts := make([]string, len(corpus.Chunks))
	for i, c := range corpus.Chunks {
		texts[i] = c.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", s.embedder.Name(), err)
	}
	for _, t := range s.tiers {
		if err := s.indexTier(ctx, t); err != nil {
			return nil, fmt.Errorf("index %s tier: %w", t.readiness, err)
		}
	}
	slog.Info("indexed tiers", "ai_ready", len(ready), "non_ai_ready", len(notReady), "embedder", s.embedder.Name())
	return &IndexSummary{Ready: len(ready), NotReady: len(notReady)}, nil
}

func (s *RAGService) indexTier(ctx context.Context, t *tierIndex) error {
	if err := t.store.Init(ctx, s.embedder.Dimension()); err != nil {
		return err
	}
	if err := t.store.Clear(ctx); err != nil {
		return err
	}
	if len(t.chunks) == 0 {
		return nil
	}
	vectors := make([][]float64, len(t.chunks))
	for i := range t.chunks {
		vec, err := s.embedder.Embed(ctx, t.chunks[i].Text)
		if err != nil {
			return fmt.Errorf("embed %s: %w", t.chunks[i].Filename, err)
		}
		vectors[i] = vec
	}
	return t.store.Upsert(ctx, t.chunks, vectors)
}

// Records returns the document records the service was indexed with.
func (s *RAGService) Records() []domain.DocumentScore { return s.records }

// Summary returns the corpus-level trust summary.
func (s *RAGService) Summary() tier.Summary {
	return tier.Summarize(s.records, s.opts.Thresholds)
}

// Available reports whether tier r has any chunks.
func (s *RAGService) Available(r tier.Readiness) bool {
	return len(s.tiers[r].chunks) > 0
}

// Query retrieves the topK chunks of tier r closest to query. It falls back
// to lexical overlap when the query embeds to a zero vector or nothing in
// the store scores above zero.
func (s *RAGService) Query(ctx context.Context, r tier.Readiness, query string, topK int) ([]domain.SearchResult, error) {
	t := s.tiers[r]
	if len(t.chunks) == 0 {
		return nil, ErrTierUnavailable
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	// Detect zero vector (no tokens)
	zero := true
	for _, v := range vec {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		return lexicalSearch(t.chunks, query, topK), nil
	}
	res, err := t.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, hit := range res {
		if hit.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return lexicalSearch(t.chunks, query, topK), nil
	}
	return res, nil
}

// Source is a retrieved chunk with its parent's trust badge.
type Source struct {
	Filename  string
	ParentID  string
	Relevance float64
	Score     float64
	Scored    bool
	Badge     string
}

// TierAnswer is one tier's reply. Err is ErrTierUnavailable when the tier
// is empty.
type TierAnswer struct {
	Readiness tier.Readiness
	Answer    string
	Sources   []Source
	Err       error
}

// Comparison holds both tiers' answers and, when both answered, how much
// they differ.
type Comparison struct {
	Question   string
	Ready      TierAnswer
	NotReady   TierAnswer
	Similarity *compare.Result
}

// Ask answers question from both tiers concurrently.
func (s *RAGService) Ask(ctx context.Context, question string) (*Comparison, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("empty question")
	}
	out := &Comparison{Question: question}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Ready, err = s.answerTier(gctx, tier.AIReady, question)
		return err
	})
	g.Go(func() error {
		var err error
		out.NotReady, err = s.answerTier(gctx, tier.NonAIReady, question)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.Ready.Err == nil && out.NotReady.Err == nil {
		res := compare.Answers(out.Ready.Answer, out.NotReady.Answer)
		out.Similarity = &res
	}
	return out, nil
}

func (s *RAGService) answerTier(ctx context.Context, r tier.Readiness, question string) (TierAnswer, error) {
	ta := TierAnswer{Readiness: r}
	results, err := s.Query(ctx, r, question, s.opts.TopK)
	if errors.Is(err, ErrTierUnavailable) {
		ta.Err = err
		return ta, nil
	}
	if err != nil {
		return ta, fmt.Errorf("%s retrieval: %w", r, err)
	}
	passages := make([]string, len(results))
	for i, res := range results {
		passages[i] = res.Chunk.Text
		ta.Sources = append(ta.Sources, s.source(res))
	}
	ta.Answer, err = s.answerer.Answer(ctx, question, passages)
	if err != nil {
		return ta, fmt.Errorf("%s answer: %w", r, err)
	}
	return ta, nil
}

func (s *RAGService) source(res domain.SearchResult) Source {
	src := Source{Filename: res.Chunk.Filename, ParentID: res.Chunk.ParentID, Relevance: res.Score, Badge: "unknown"}
	if score, ok := s.scores.Lookup(res.Chunk.ParentID); ok {
		src.Score, src.Scored = score, true
		src.Badge = tier.Classify(score, s.opts.Thresholds).String()
	}
	return src
}

var (
	unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

func lexicalSearch(chunks []domain.Chunk, query string, topK int) []domain.SearchResult {
	qset := toTokenSet(query)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(chunks))
	for i, ch := range chunks {
		scores[i] = pair{i, overlapOchiai(qset, ch.Text)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK <= 0 {
		topK = 5
	}
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		p := scores[i]
		out = append(out, domain.SearchResult{Chunk: chunks[p.idx], Score: p.score})
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func overlapOchiai(qset map[string]struct{}, text string) float64 {
	stoks := unicodeWordRe.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(stoks))
	inter := 0
	for _, t := range stoks {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	// Ochiai coefficient: |A∩B| / sqrt(|A||B|)
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
