package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/config"
	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	KNOWLEDGE_CLASS        = "DiabetesKnowledge"
	KNOWLEDGE_CLASS_OBJECT = &models.Class{
		Class:       KNOWLEDGE_CLASS,
		Description: "Embedded diabetes knowledge chunks with source provenance",
		Properties: []*models.Property{
			{Name: "text", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
		},
		// Vectors are computed client-side and pushed with each record.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
	}
)

type WeaviateStore struct {
	client       *weaviate.Client
	minCertainty float32
}

func NewWeaviateStore(cfg config.WeaviateConfig, minCertainty float64) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	weaviateConfig := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		weaviateConfig.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(weaviateConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}
	return &WeaviateStore{
		client:       client,
		minCertainty: float32(minCertainty),
	}, nil
}

// EnsureSchema creates the knowledge class if it does not exist yet.
func (s *WeaviateStore) EnsureSchema(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("get schema: %w: %v", types.ErrServiceUnavailable, err)
	}
	for _, class := range schema.Classes {
		if class.Class == KNOWLEDGE_CLASS {
			return nil
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(KNOWLEDGE_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w: %v", KNOWLEDGE_CLASS, types.ErrServiceUnavailable, err)
	}
	log.Printf("Created Weaviate class %s", KNOWLEDGE_CLASS)
	return nil
}

// ReInit drops and recreates the knowledge class, discarding every record.
func (s *WeaviateStore) ReInit(ctx context.Context) error {
	if err := s.client.Schema().ClassDeleter().WithClassName(KNOWLEDGE_CLASS).Do(ctx); err != nil {
		return fmt.Errorf("delete class %s: %w: %v", KNOWLEDGE_CLASS, types.ErrServiceUnavailable, err)
	}
	if err := s.client.Schema().ClassCreator().WithClass(KNOWLEDGE_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w: %v", KNOWLEDGE_CLASS, types.ErrServiceUnavailable, err)
	}
	return nil
}

// Upsert writes records in batches. Record IDs are client-provided, so
// re-upserting the same corpus overwrites objects instead of duplicating
// them.
func (s *WeaviateStore) Upsert(ctx context.Context, records []types.IndexRecord) error {
	total := len(records)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: KNOWLEDGE_CLASS,
				ID:    strfmt.UUID(records[j].ID),
				Properties: map[string]interface{}{
					"text":   records[j].Text,
					"source": records[j].Source,
					"page":   records[j].Page,
				},
				Vector: records[j].Vector,
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w: %v", i, end, types.ErrServiceUnavailable, err)
		}
		// Batch inserts report per-object failures in the response body.
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("upsert object %s: %w: %s",
					obj.ID, types.ErrServiceUnavailable, obj.Result.Errors.Error[0].Message)
			}
		}

		log.Printf("Upserted batch %d-%d of %d records", i, end, total)
	}
	return nil
}

// Query runs a nearVector search and returns up to k matches ordered by
// descending certainty. An empty index or a floor nothing clears yields
// an empty slice, not an error.
func (s *WeaviateStore) Query(ctx context.Context, vector []float32, k int) ([]types.RetrievedMatch, error) {
	fields := []graphql.Field{
		{Name: "text"},
		{Name: "source"},
		{Name: "page"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	if s.minCertainty > 0 {
		nearVector = nearVector.WithCertainty(s.minCertainty)
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(KNOWLEDGE_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w: %v", types.ErrServiceUnavailable, err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("similarity query: %w: %v", types.ErrServiceUnavailable, result.Errors[0].Message)
	}

	return parseMatches(result), nil
}

// Count reports the number of records in the knowledge class.
func (s *WeaviateStore) Count(ctx context.Context) (int64, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(KNOWLEDGE_CLASS).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate count: %w: %v", types.ErrServiceUnavailable, err)
	}
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("aggregate count: %w: %v", types.ErrServiceUnavailable, result.Errors[0].Message)
	}

	data, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	items, ok := data[KNOWLEDGE_CLASS].([]interface{})
	if !ok || len(items) == 0 {
		return 0, nil
	}
	obj, ok := items[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := obj["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	return int64(asFloat(meta["count"])), nil
}

// parseMatches flattens a GraphQL Get response into RetrievedMatch
// values, tolerating missing fields.
func parseMatches(result *models.GraphQLResponse) []types.RetrievedMatch {
	matches := []types.RetrievedMatch{}
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return matches
	}
	items, ok := data[KNOWLEDGE_CLASS].([]interface{})
	if !ok {
		return matches
	}
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		match := types.RetrievedMatch{
			Text:   asString(obj["text"]),
			Source: asString(obj["source"]),
			Page:   int(asFloat(obj["page"])),
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			match.Score = float32(asFloat(additional["certainty"]))
		}
		matches = append(matches, match)
	}
	return matches
}

// Helper functions
func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
