package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/database"
	"github.com/Regeleardealului/diabetes-agent/types"
)

// Retriever embeds a question and pulls the most similar chunks from
// the vector index. Nothing is cached: every call re-embeds the
// question and re-queries the index.
type Retriever struct {
	embedder Embedder
	index    database.VectorIndex
}

func NewRetriever(embedder Embedder, index database.VectorIndex) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
	}
}

// Retrieve returns up to k matches for question, ordered by descending
// similarity. A blank question fails before any network call is made.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]types.RetrievedMatch, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("retrieve: %w: question is empty", types.ErrInvalidInput)
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := r.index.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	return matches, nil
}
