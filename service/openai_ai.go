package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/sashabaranov/go-openai"
)

// OpenAIService implements Embedder and Generator against any
// OpenAI-compatible endpoint, including local model servers.
type OpenAIService struct {
	client          *openai.Client
	embeddingModel  string
	generationModel string
}

func NewOpenAIService(baseURL, apiKey, embeddingModel, generationModel string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL // Set this to your local LLM server URL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}
}

func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embed: %w: text is empty", types.ErrInvalidInput)
	}
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *OpenAIService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embed batch: %w: no texts provided", types.ErrInvalidInput)
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w: %v", types.ErrServiceUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("create embeddings: %w: got %d embeddings for %d texts",
			types.ErrServiceUnavailable, len(resp.Data), len(texts))
	}

	// The API reports the input index per embedding; order by it rather
	// than trusting response order.
	vectors := make([][]float32, len(resp.Data))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("create embeddings: %w: embedding index %d out of range",
				types.ErrServiceUnavailable, data.Index)
		}
		vectors[data.Index] = data.Embedding
	}
	return vectors, nil
}

func (s *OpenAIService) Generate(ctx context.Context, systemInstruction, contextText, question string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.generationModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemInstruction + "\n\nContext:\n" + contextText,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: question,
				},
			},
			Temperature: generationTemperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w: %v", types.ErrServiceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("create chat completion: %w: no response generated", types.ErrServiceUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
