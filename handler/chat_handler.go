package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Regeleardealului/diabetes-agent/service"
	"github.com/Regeleardealului/diabetes-agent/types"
)

// ChatHandler serves POST /chat, the synchronous question-answering
// endpoint.
type ChatHandler struct {
	query   *service.QueryService
	timeout time.Duration
}

func NewChatHandler(query *service.QueryService, timeout time.Duration) *ChatHandler {
	return &ChatHandler{
		query:   query,
		timeout: timeout,
	}
}

func (h *ChatHandler) HandleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var chatRequest types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&chatRequest); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		// chat_history is accepted for wire compatibility but not used:
		// every answer is grounded in the indexed corpus alone.
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		response, err := h.query.AnswerQuestion(ctx, chatRequest.Question)
		if err != nil {
			log.Printf("Chat error: %v", err)
			writeDetail(w, statusFor(err), types.UserFacingMessage(err))
			return
		}

		writeJSON(w, http.StatusOK, response)
	}
}

// statusFor maps the failure classes onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
