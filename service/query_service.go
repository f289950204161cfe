package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/types"
)

// SystemInstruction grounds the model: answers may only draw on the
// supplied context, and a context gap must be admitted rather than
// papered over.
const SystemInstruction = "You are MediBot, a friendly, helpful, and empathetic medical assistant specializing in diabetes. " +
	"Your goal is to provide clear, concise, and accurate information to users based *only* on the provided context. " +
	"If the context does not contain enough information to answer the question, state that you don't have enough information. " +
	"When answering, be as thorough as possible by including all relevant details from the context. " +
	"If the answer involves a list or multiple points, present them clearly using standard Markdown bullet points or numbered lists. " +
	"Avoid making up information or providing medical advice beyond what is explicitly stated in the context."

// QueryService answers one question end to end: retrieve, assemble
// context, generate, cite. It holds no state between calls and is safe
// for concurrent use.
type QueryService struct {
	retriever *Retriever
	assembler *ContextAssembler
	generator Generator
	topK      int
}

func NewQueryService(retriever *Retriever, assembler *ContextAssembler, generator Generator, topK int) *QueryService {
	if topK <= 0 {
		topK = 5
	}
	return &QueryService{
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		topK:      topK,
	}
}

// AnswerQuestion answers a question from the indexed corpus. When
// retrieval comes back empty the generator still runs with an empty
// context, which instructs it to admit it cannot answer.
func (s *QueryService) AnswerQuestion(ctx context.Context, question string) (*types.ChatResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("answer question: %w: question is empty", types.ErrInvalidInput)
	}

	matches, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("answer question: %w", err))
	}

	contextText, citations := s.assembler.Assemble(matches)

	answer, err := s.generator.Generate(ctx, SystemInstruction, contextText, question)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("answer question: %w", err))
	}

	log.Printf("Answered question using %d matches, cited: %s", len(matches), RenderCitations(citations))

	return &types.ChatResponse{
		Answer:  answer,
		Sources: FormatCitations(citations),
	}, nil
}

// classify upgrades an upstream failure to a timeout when the request
// deadline has expired. SDK errors do not reliably wrap
// context.DeadlineExceeded themselves, so the request context is
// checked as well.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", types.ErrTimeout, err)
	}
	return err
}
