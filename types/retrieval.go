package types

// IndexRecord is the persisted unit in the vector index: one embedded
// chunk plus its provenance. IDs are deterministic (UUIDv5 over
// source, page and sequence), so re-ingesting an unchanged corpus
// overwrites records in place.
type IndexRecord struct {
	ID     string
	Vector []float32
	Text   string
	Source string
	Page   int
}

// RetrievedMatch is a transient per-query result from the vector index.
type RetrievedMatch struct {
	Text   string
	Source string
	Page   int
	Score  float32 // certainty, higher is closer
}

// Citation pairs a source with the distinct, ascending page numbers
// that contributed context to an answer.
type Citation struct {
	Source string
	Pages  []int
}
