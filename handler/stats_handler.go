package handler

import (
	"log"
	"net/http"

	"github.com/Regeleardealului/diabetes-agent/database"
	"github.com/Regeleardealului/diabetes-agent/types"
)

// StatsHandler reports how many records the vector index holds, which
// is the quickest way to see whether ingestion actually landed.
type StatsHandler struct {
	index database.VectorIndex
}

func NewStatsHandler(index database.VectorIndex) *StatsHandler {
	return &StatsHandler{
		index: index,
	}
}

func (h *StatsHandler) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		count, err := h.index.Count(r.Context())
		if err != nil {
			log.Printf("Stats error: %v", err)
			writeDetail(w, http.StatusInternalServerError, types.MsgUnavailable)
			return
		}

		writeJSON(w, http.StatusOK, types.DataResponse{
			Status: "ok",
			Data: types.IndexStats{
				Class:   database.KNOWLEDGE_CLASS,
				Records: count,
			},
		})
	}
}
