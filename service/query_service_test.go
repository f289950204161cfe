package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryService_AnswerQuestion(t *testing.T) {
	t.Run("rejects a blank question", func(t *testing.T) {
		embedder := &fakeEmbedder{vector: []float32{0.1}}
		generator := &fakeGenerator{answer: "unused"}
		query := newTestQueryService(embedder, &fakeIndex{}, generator)

		_, err := query.AnswerQuestion(context.Background(), "   ")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidInput)
		assert.Zero(t, embedder.embedCalls)
		assert.Zero(t, generator.calls)
	})

	t.Run("answers with grounded context and citations", func(t *testing.T) {
		embedder := &fakeEmbedder{vector: []float32{0.1}}
		index := &fakeIndex{matches: []types.RetrievedMatch{
			{Text: "Insulin lowers blood sugar.", Source: "doc.pdf", Page: 2, Score: 0.95},
			{Text: "It is produced by the pancreas.", Source: "doc.pdf", Page: 1, Score: 0.91},
			{Text: "Dosage varies per patient.", Source: "other.pdf", Page: 5, Score: 0.88},
		}}
		generator := &fakeGenerator{answer: "Insulin lowers blood sugar and comes from the pancreas."}
		query := newTestQueryService(embedder, index, generator)

		response, err := query.AnswerQuestion(context.Background(), "What does insulin do?")

		require.NoError(t, err)
		assert.Equal(t, "Insulin lowers blood sugar and comes from the pancreas.", response.Answer)
		assert.Equal(t, []string{"doc.pdf, Page 1", "doc.pdf, Page 2", "other.pdf, Page 5"}, response.Sources)

		assert.Equal(t, 5, index.lastK)
		assert.Contains(t, generator.gotSystem, "MediBot")
		assert.Equal(t, "Insulin lowers blood sugar.\n\nIt is produced by the pancreas.\n\nDosage varies per patient.", generator.gotContext)
		assert.Equal(t, "What does insulin do?", generator.gotQuestion)
	})

	t.Run("still generates when retrieval comes back empty", func(t *testing.T) {
		generator := &fakeGenerator{answer: "I don't have enough information to answer that."}
		query := newTestQueryService(&fakeEmbedder{vector: []float32{0.1}}, &fakeIndex{}, generator)

		response, err := query.AnswerQuestion(context.Background(), "What about gestational diabetes?")

		require.NoError(t, err)
		assert.Equal(t, 1, generator.calls)
		assert.Equal(t, "", generator.gotContext)
		require.NotNil(t, response.Sources)
		assert.Empty(t, response.Sources)
	})

	t.Run("propagates retrieval failures", func(t *testing.T) {
		index := &fakeIndex{queryErr: fmt.Errorf("query records: %w: boom", types.ErrServiceUnavailable)}
		generator := &fakeGenerator{answer: "unused"}
		query := newTestQueryService(&fakeEmbedder{vector: []float32{0.1}}, index, generator)

		_, err := query.AnswerQuestion(context.Background(), "question")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrServiceUnavailable)
		assert.Zero(t, generator.calls)
	})

	t.Run("propagates generation failures", func(t *testing.T) {
		generator := &fakeGenerator{err: fmt.Errorf("generate answer: %w: boom", types.ErrServiceUnavailable)}
		query := newTestQueryService(&fakeEmbedder{vector: []float32{0.1}}, &fakeIndex{}, generator)

		_, err := query.AnswerQuestion(context.Background(), "question")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrServiceUnavailable)
	})

	t.Run("reports an expired deadline as a timeout", func(t *testing.T) {
		query := newTestQueryService(&blockingEmbedder{}, &fakeIndex{}, &fakeGenerator{answer: "unused"})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := query.AnswerQuestion(ctx, "question")

		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrTimeout)
		assert.NotErrorIs(t, err, types.ErrServiceUnavailable)
	})
}
