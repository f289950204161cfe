package database

import (
	"context"

	"github.com/Regeleardealului/diabetes-agent/types"
)

// VectorIndex defines the interface for vector index operations.
// Upsert is idempotent by record ID: re-upserting an ID overwrites the
// stored record. Query returns matches in descending-similarity order
// and an empty slice, not an error, when nothing qualifies.
type VectorIndex interface {
	// EnsureSchema creates the knowledge class if it does not exist.
	EnsureSchema(ctx context.Context) error

	// ReInit drops and recreates the knowledge class, discarding all records.
	ReInit(ctx context.Context) error

	// Upsert writes records in batches.
	Upsert(ctx context.Context, records []types.IndexRecord) error

	// Query returns the k records nearest to vector.
	Query(ctx context.Context, vector []float32, k int) ([]types.RetrievedMatch, error)

	// Count reports the number of stored records.
	Count(ctx context.Context) (int64, error)
}
