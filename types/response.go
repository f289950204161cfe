package types

// ChatResponse carries the generated answer plus one source string per
// cited (source, page) pair, each formatted "{source}, Page {page}".
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ErrorResponse is the error body returned by the chat endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// DataResponse wraps payloads of the operational endpoints.
type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// IndexStats describes the state of the vector index.
type IndexStats struct {
	Class   string `json:"class"`
	Records int64  `json:"records"`
}
