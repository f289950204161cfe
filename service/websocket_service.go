package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/gorilla/websocket"
)

// WebSocketService serves chat over a websocket. Answers arrive as
// complete messages, not token streams; a processing notice covers the
// wait in between.
type WebSocketService struct {
	query    *QueryService
	timeout  time.Duration
	upgrader websocket.Upgrader
}

func NewWebSocketService(query *QueryService, timeout time.Duration) *WebSocketService {
	return &WebSocketService{
		query:   query,
		timeout: timeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	// Set connection properties
	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "Could not parse message.")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			s.handleChatMessage(r.Context(), conn, req.Payload)
		case types.TypeWebsocketPing:
			// Send a pong message back to the client
			pongRes := types.WebSocketResponse{
				Type:    types.TypeWebsocketPong,
				Payload: nil,
			}
			if err := conn.WriteJSON(pongRes); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type:", req.Type)
			s.writeError(conn, "Unknown message type.")
		}
	}
}

func (s *WebSocketService) handleChatMessage(ctx context.Context, conn *websocket.Conn, rawPayload interface{}) {
	payloadBytes, err := json.Marshal(rawPayload)
	if err != nil {
		log.Println("Marshal error:", err)
		s.writeError(conn, "Could not parse message.")
		return
	}
	var payload types.WebSocketChatPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		log.Println("Unmarshal error:", err)
		s.writeError(conn, "Could not parse message.")
		return
	}

	processing := types.WebSocketResponse{
		Type:    types.TypeWebsocketProcessing,
		Payload: types.WebSocketProcessingResponse{Message: "Looking that up..."},
	}
	if err := conn.WriteJSON(processing); err != nil {
		log.Println("Write error:", err)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.query.AnswerQuestion(reqCtx, payload.Question)
	if err != nil {
		log.Printf("Chat error: %v", err)
		s.writeError(conn, types.UserFacingMessage(err))
		return
	}

	botMessage := types.WebSocketResponse{
		Type:    types.TypeWebsocketChat,
		Payload: res,
	}
	if err := conn.WriteJSON(botMessage); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, detail string) {
	res := types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketErrorResponse{Detail: detail},
	}
	if err := conn.WriteJSON(res); err != nil {
		log.Println("Write error:", err)
	}
}
