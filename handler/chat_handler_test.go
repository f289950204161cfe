package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Regeleardealului/diabetes-agent/service"
	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns a canned vector, or hangs until the context
// expires when block is set.
type stubEmbedder struct {
	vector []float32
	err    error
	block  bool
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = s.vector
	}
	return vectors, nil
}

// stubIndex implements database.VectorIndex with canned matches.
type stubIndex struct {
	matches  []types.RetrievedMatch
	queryErr error
	count    int64
	countErr error
}

func (s *stubIndex) EnsureSchema(ctx context.Context) error                        { return nil }
func (s *stubIndex) ReInit(ctx context.Context) error                              { return nil }
func (s *stubIndex) Upsert(ctx context.Context, records []types.IndexRecord) error { return nil }

func (s *stubIndex) Query(ctx context.Context, vector []float32, k int) ([]types.RetrievedMatch, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches, nil
}

func (s *stubIndex) Count(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

type stubGenerator struct {
	answer string
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, systemInstruction, contextText, question string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestChatHandler(embedder service.Embedder, index *stubIndex, generator service.Generator, timeout time.Duration) *ChatHandler {
	retriever := service.NewRetriever(embedder, index)
	assembler := service.NewContextAssembler(8000)
	query := service.NewQueryService(retriever, assembler, generator, 5)
	return NewChatHandler(query, timeout)
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleChat().ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestChatHandler_HandleChat(t *testing.T) {
	t.Run("answers a question", func(t *testing.T) {
		index := &stubIndex{matches: []types.RetrievedMatch{
			{Text: "Insulin lowers blood sugar.", Source: "doc.pdf", Page: 2, Score: 0.9},
			{Text: "It comes from the pancreas.", Source: "doc.pdf", Page: 1, Score: 0.8},
		}}
		generator := &stubGenerator{answer: "Insulin lowers blood sugar."}
		h := newTestChatHandler(&stubEmbedder{vector: []float32{0.1}}, index, generator, time.Second)

		rec := postChat(t, h, `{"question": "What does insulin do?"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var response types.ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "Insulin lowers blood sugar.", response.Answer)
		assert.Equal(t, []string{"doc.pdf, Page 1", "doc.pdf, Page 2"}, response.Sources)
	})

	t.Run("accepts chat history without using it", func(t *testing.T) {
		h := newTestChatHandler(&stubEmbedder{vector: []float32{0.1}}, &stubIndex{}, &stubGenerator{answer: "ok"}, time.Second)

		rec := postChat(t, h, `{
			"question": "And what about type 1?",
			"chat_history": [
				{"role": "user", "content": "What is diabetes?"},
				{"role": "assistant", "content": "A metabolic condition."}
			]
		}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("serializes empty sources as a list", func(t *testing.T) {
		h := newTestChatHandler(&stubEmbedder{vector: []float32{0.1}}, &stubIndex{}, &stubGenerator{answer: "ok"}, time.Second)

		rec := postChat(t, h, `{"question": "question"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sources":[]`)
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		h := newTestChatHandler(&stubEmbedder{vector: []float32{0.1}}, &stubIndex{}, &stubGenerator{answer: "ok"}, time.Second)
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		rec := httptest.NewRecorder()

		h.HandleChat().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		h := newTestChatHandler(&stubEmbedder{vector: []float32{0.1}}, &stubIndex{}, &stubGenerator{answer: "ok"}, time.Second)

		rec := postChat(t, h, `{"question": `)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body.", decodeDetail(t, rec))
	})

	t.Run("rejects a blank question", func(t *testing.T) {
		h := newTestChatHandler(&stubEmbedder{vector: []float32{0.1}}, &stubIndex{}, &stubGenerator{answer: "ok"}, time.Second)

		rec := postChat(t, h, `{"question": "   "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, types.MsgInvalidQuestion, decodeDetail(t, rec))
	})

	t.Run("hides upstream errors behind a generic message", func(t *testing.T) {
		index := &stubIndex{queryErr: fmt.Errorf("query records: %w: secret-host refused", types.ErrServiceUnavailable)}
		h := newTestChatHandler(&stubEmbedder{vector: []float32{0.1}}, index, &stubGenerator{answer: "ok"}, time.Second)

		rec := postChat(t, h, `{"question": "question"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, types.MsgUnavailable, decodeDetail(t, rec))
		assert.NotContains(t, rec.Body.String(), "secret-host")
	})

	t.Run("times out a slow request", func(t *testing.T) {
		h := newTestChatHandler(&stubEmbedder{block: true}, &stubIndex{}, &stubGenerator{answer: "ok"}, 20*time.Millisecond)

		rec := postChat(t, h, `{"question": "question"}`)

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Equal(t, types.MsgTimeout, decodeDetail(t, rec))
	})
}
