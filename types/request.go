package types

// ChatRequest is the inbound question. ChatHistory is accepted for
// forward compatibility; the service is stateless per request and
// ignores it.
type ChatRequest struct {
	Question    string    `json:"question"`
	ChatHistory []Message `json:"chat_history"`
}
