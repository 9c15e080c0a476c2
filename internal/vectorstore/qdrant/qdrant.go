package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"trustrag/internal/domain"
	"trustrag/internal/vectorstore"
)

// Storage keeps one tier's chunks in a Qdrant collection over gRPC.
// It uses cosine distance and recreates the collection on Init.
type Storage struct {
	client     *qdrant.Client
	collection string
	dimension  int
	next       uint64
}

type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// NewStorage connects to Qdrant. The caller owns the returned store and
// must Close it.
func NewStorage(cfg Config) (*Storage, error) {
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection name is required")
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &Storage{client: client, collection: cfg.Collection}, nil
}

// Close closes the Qdrant client connection
func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}
	s.dimension = dimension
	s.next = 0
	if err := s.drop(ctx); err != nil {
		return err
	}
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return vectorstore.ErrLengthMismatch
	}
	if len(chunks) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(s.next + uint64(i)),
			Vectors: qdrant.NewVectors(toFloat32(vectors[i])...),
			Payload: map[string]*qdrant.Value{
				"parent_id": qdrant.NewValueString(c.ParentID),
				"index":     qdrant.NewValueInt(int64(c.Index)),
				"filename":  qdrant.NewValueString(c.Filename),
				"text":      qdrant.NewValueString(c.Text),
			},
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	s.next += uint64(len(chunks))
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	response, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	results := make([]domain.SearchResult, 0, len(response))
	for _, point := range response {
		var c domain.Chunk
		if payload := point.Payload; payload != nil {
			c.ParentID = payload["parent_id"].GetStringValue()
			c.Index = int(payload["index"].GetIntegerValue())
			c.Filename = payload["filename"].GetStringValue()
			c.Text = payload["text"].GetStringValue()
		}
		results = append(results, domain.SearchResult{Chunk: c, Score: float64(point.Score)})
	}
	return results, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.next = 0
	return s.drop(ctx)
}

func (s *Storage) drop(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

var _ vectorstore.Storage = (*Storage)(nil)
