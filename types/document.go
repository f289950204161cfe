package types

// Document is an immutable knowledge source: one file with one or more
// pages of raw text. Read once during ingestion, never mutated.
type Document struct {
	Source string // base file name, e.g. "diabetes_common.pdf"
	Path   string // path the document was loaded from
	Pages  []Page
}

// Page holds the raw text of a single page. Numbers are 1-based; formats
// without native pages (CSV, plain text) load as a single page 1.
type Page struct {
	Number int
	Text   string
}

// DocumentChunk is a bounded span of one page's text, the unit of
// embedding and retrieval. No chunk crosses a page boundary.
type DocumentChunk struct {
	Source string // owning document's source name
	Page   int    // page the text was cut from, 1-based
	Seq    int    // position within the document, increasing
	Text   string
}

// ChunkerConfig contains configuration options for text chunking.
type ChunkerConfig struct {
	MaxChunkSize int // maximum chunk length in runes
	OverlapSize  int // overlap between consecutive chunks of a page
}
