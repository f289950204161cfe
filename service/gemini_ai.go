package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService implements Embedder and Generator against the Gemini
// API. The defaults pair text-embedding-004 (768-dimension vectors)
// with gemini-2.0-flash for generation.
type GeminiService struct {
	client          *genai.Client
	embeddingModel  string
	generationModel string
}

func NewGeminiService(ctx context.Context, apiKey, embeddingModel, generationModel string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("no API key provided")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %v", err)
	}

	return &GeminiService{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}, nil
}

// Close releases the underlying API client.
func (s *GeminiService) Close() error {
	return s.client.Close()
}

func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed: %w: text is empty", types.ErrInvalidInput)
	}

	res, err := s.client.EmbeddingModel(s.embeddingModel).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed content: %w: %v", types.ErrServiceUnavailable, err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embed content: %w: empty embedding returned", types.ErrServiceUnavailable)
	}
	return res.Embedding.Values, nil
}

func (s *GeminiService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embed batch: %w: no texts provided", types.ErrInvalidInput)
	}

	em := s.client.EmbeddingModel(s.embeddingModel)
	batch := em.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embed contents: %w: %v", types.ErrServiceUnavailable, err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("batch embed contents: %w: got %d embeddings for %d texts",
			types.ErrServiceUnavailable, len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, embedding := range res.Embeddings {
		vectors[i] = embedding.Values
	}
	return vectors, nil
}

// Generate answers the question using only contextText. The context
// rides along with the system instruction; the question is the sole
// user turn.
func (s *GeminiService) Generate(ctx context.Context, systemInstruction, contextText, question string) (string, error) {
	model := s.client.GenerativeModel(s.generationModel)
	model.SetTemperature(generationTemperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction + "\n\nContext:\n" + contextText)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		return "", fmt.Errorf("generate content: %w: %v", types.ErrServiceUnavailable, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("generate content: %w: no response generated", types.ErrServiceUnavailable)
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}
	return content, nil
}
