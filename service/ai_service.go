package service

import "context"

// generationTemperature keeps answers close to the supplied context.
const generationTemperature = 0.2

// Embedder converts text into fixed-dimension vectors. The same
// embedder configuration must serve both ingestion and querying:
// vectors produced by different models are not comparable.
type Embedder interface {
	// Embed converts a single text into its embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in one request, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a grounded answer from a system instruction, the
// assembled context and the user question.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, contextText, question string) (string, error)
}
