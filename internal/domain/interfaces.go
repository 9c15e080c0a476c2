package domain

import "context"

// Document represents a single plain-text source file before chunking.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a contiguous span of text from one parent document.
// ParentID is resolved once when the chunk is produced or loaded and is
// carried from then on; nothing downstream parses filenames.
type Chunk struct {
	ParentID string
	Index    int
	Filename string
	Text     string
}

// ChunkMetrics holds the five per-chunk quality signals, each in [0, 1],
// plus the chunk's token count.
type ChunkMetrics struct {
	Completeness float64
	Accuracy     float64
	Secure       float64
	Quality      float64
	Timeliness   float64
	TokenCount   int
}

// ScoredChunk pairs a chunk's identity with its computed metrics.
type ScoredChunk struct {
	ParentID string
	Index    int
	Metrics  ChunkMetrics
}

// DocumentScore is the persisted per-document trust record.
type DocumentScore struct {
	File         string `json:"file"`
	Completeness Score  `json:"completeness"`
	Accuracy     Score  `json:"accuracy"`
	Secure       Score  `json:"secure"`
	Quality      Score  `json:"quality"`
	Timeliness   Score  `json:"timeliness"`
	AITrustScore Score  `json:"ai_trust_score"`
	TokenCount   int    `json:"token_count"`
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for scoring and indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Answerer produces an answer to a question from retrieved context passages.
type Answerer interface {
	Answer(ctx context.Context, question string, passages []string) (string, error)
}
