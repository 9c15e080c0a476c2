// Package vectorstore holds the per-tier vector indexes used for retrieval.
package vectorstore

import (
	"errors"

	"trustrag/internal/domain"
)

// Storage persists vectors and supports similarity search.
type Storage = domain.VectorStore

var (
	// ErrInvalidDimension is returned by Init for a non-positive dimension.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrLengthMismatch is returned when chunks and vectors differ in count.
	ErrLengthMismatch = errors.New("chunks and vectors length mismatch")

	// ErrDimensionMismatch is returned when a vector's length differs from the
	// store's dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
