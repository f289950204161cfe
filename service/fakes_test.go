package service

import (
	"context"

	"github.com/Regeleardealului/diabetes-agent/types"
)

// fakeEmbedder returns a canned vector and records every call.
type fakeEmbedder struct {
	vector     []float32
	err        error
	embedCalls int
	batchCalls [][]string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls = append(f.batchCalls, texts)
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

// blockingEmbedder hangs until the context expires, imitating a stuck
// upstream service.
type blockingEmbedder struct{}

func (b *blockingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// fakeIndex implements database.VectorIndex in memory.
type fakeIndex struct {
	matches     []types.RetrievedMatch
	queryErr    error
	upsertErr   error
	upserts     [][]types.IndexRecord
	count       int64
	schemaCalls int
	reinitCalls int
	lastVector  []float32
	lastK       int
}

func (f *fakeIndex) EnsureSchema(ctx context.Context) error {
	f.schemaCalls++
	return nil
}

func (f *fakeIndex) ReInit(ctx context.Context) error {
	f.reinitCalls++
	return nil
}

func (f *fakeIndex) Upsert(ctx context.Context, records []types.IndexRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, records)
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, k int) ([]types.RetrievedMatch, error) {
	f.lastVector = vector
	f.lastK = k
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeIndex) Count(ctx context.Context) (int64, error) {
	return f.count, nil
}

// fakeGenerator records the prompt pieces it was handed.
type fakeGenerator struct {
	answer      string
	err         error
	calls       int
	gotSystem   string
	gotContext  string
	gotQuestion string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemInstruction, contextText, question string) (string, error) {
	f.calls++
	f.gotSystem = systemInstruction
	f.gotContext = contextText
	f.gotQuestion = question
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestQueryService(embedder Embedder, index *fakeIndex, generator Generator) *QueryService {
	retriever := NewRetriever(embedder, index)
	assembler := NewContextAssembler(8000)
	return NewQueryService(retriever, assembler, generator, 5)
}
