package database

import (
	"encoding/json"
	"testing"

	"github.com/Regeleardealului/diabetes-agent/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func TestNewWeaviateStore(t *testing.T) {
	t.Run("accepts hosts with and without a scheme", func(t *testing.T) {
		for _, host := range []string{
			"http://localhost:8080",
			"https://cluster.weaviate.network",
			"localhost:8080",
		} {
			store, err := NewWeaviateStore(config.WeaviateConfig{Host: host}, 0.5)

			require.NoError(t, err, host)
			require.NotNil(t, store, host)
			assert.Equal(t, float32(0.5), store.minCertainty)
		}
	})

	t.Run("accepts an api key", func(t *testing.T) {
		store, err := NewWeaviateStore(config.WeaviateConfig{
			Host:   "https://cluster.weaviate.network",
			APIKey: "secret",
		}, 0)

		require.NoError(t, err)
		require.NotNil(t, store)
	})
}

func TestKnowledgeClassDefinition(t *testing.T) {
	assert.Equal(t, "DiabetesKnowledge", KNOWLEDGE_CLASS)
	assert.Equal(t, "none", KNOWLEDGE_CLASS_OBJECT.Vectorizer)
	assert.Equal(t, "hnsw", KNOWLEDGE_CLASS_OBJECT.VectorIndexType)

	indexConfig, ok := KNOWLEDGE_CLASS_OBJECT.VectorIndexConfig.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cosine", indexConfig["distance"])

	names := make([]string, 0, len(KNOWLEDGE_CLASS_OBJECT.Properties))
	for _, prop := range KNOWLEDGE_CLASS_OBJECT.Properties {
		names = append(names, prop.Name)
	}
	assert.ElementsMatch(t, []string{"text", "source", "page"}, names)
}

func TestParseMatches(t *testing.T) {
	t.Run("flattens a populated response", func(t *testing.T) {
		result := &models.GraphQLResponse{
			Data: map[string]models.JSONObject{
				"Get": map[string]interface{}{
					KNOWLEDGE_CLASS: []interface{}{
						map[string]interface{}{
							"text":   "Insulin moves glucose into cells.",
							"source": "doc.pdf",
							"page":   float64(2),
							"_additional": map[string]interface{}{
								"certainty": float64(0.91),
							},
						},
						map[string]interface{}{
							"text":   "Fiber slows absorption.",
							"source": "diet.pdf",
							"page":   json.Number("7"),
						},
					},
				},
			},
		}

		matches := parseMatches(result)

		require.Len(t, matches, 2)
		assert.Equal(t, "Insulin moves glucose into cells.", matches[0].Text)
		assert.Equal(t, "doc.pdf", matches[0].Source)
		assert.Equal(t, 2, matches[0].Page)
		assert.InDelta(t, 0.91, float64(matches[0].Score), 1e-6)

		assert.Equal(t, "diet.pdf", matches[1].Source)
		assert.Equal(t, 7, matches[1].Page)
		assert.Zero(t, matches[1].Score)
	})

	t.Run("empty response yields an empty slice", func(t *testing.T) {
		matches := parseMatches(&models.GraphQLResponse{Data: map[string]models.JSONObject{}})

		require.NotNil(t, matches)
		assert.Empty(t, matches)
	})

	t.Run("skips entries that are not objects", func(t *testing.T) {
		result := &models.GraphQLResponse{
			Data: map[string]models.JSONObject{
				"Get": map[string]interface{}{
					KNOWLEDGE_CLASS: []interface{}{
						"garbage",
						map[string]interface{}{"text": "kept"},
					},
				},
			},
		}

		matches := parseMatches(result)

		require.Len(t, matches, 1)
		assert.Equal(t, "kept", matches[0].Text)
	})
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected float64
	}{
		{"float64", float64(3.5), 3.5},
		{"json number", json.Number("42"), 42},
		{"string", "7", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, asFloat(tt.value), 1e-9)
		})
	}
}

func TestAsString(t *testing.T) {
	assert.Equal(t, "text", asString("text"))
	assert.Equal(t, "", asString(nil))
	assert.Equal(t, "", asString(7))
}
