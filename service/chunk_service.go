package service

import (
	"fmt"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/types"
)

// ChunkerService splits document pages into bounded, overlapping chunks.
type ChunkerService struct {
	maxChunkSize int // Maximum size of each text chunk, in runes
	overlapSize  int // Size of overlap between consecutive chunks
}

var DefaultChunkerConfig = types.ChunkerConfig{
	MaxChunkSize: 1000,
	OverlapSize:  200,
}

// NewChunkerService creates a chunker with configurable sizes. A
// non-positive chunk size falls back to the default; an overlap that
// would prevent forward progress is clamped to a quarter of the chunk
// size.
func NewChunkerService(config types.ChunkerConfig) *ChunkerService {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultChunkerConfig.MaxChunkSize
	}
	if config.OverlapSize < 0 {
		config.OverlapSize = DefaultChunkerConfig.OverlapSize
	}
	if config.OverlapSize >= config.MaxChunkSize {
		config.OverlapSize = config.MaxChunkSize / 4
	}

	return &ChunkerService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}
}

// Chunk splits every page of doc into segments no longer than the
// configured maximum. Chunks never cross a page boundary, so each one
// cites exactly one page; the sequence index runs across the whole
// document. Identical input always produces identical chunks.
func (s *ChunkerService) Chunk(doc types.Document) ([]types.DocumentChunk, error) {
	var chunks []types.DocumentChunk
	seq := 0
	for _, page := range doc.Pages {
		text := cleanText(page.Text)
		if text == "" {
			continue
		}
		for _, segment := range s.splitPage(text) {
			chunks = append(chunks, types.DocumentChunk{
				Source: doc.Source,
				Page:   page.Number,
				Seq:    seq,
				Text:   segment,
			})
			seq++
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunk %s: %w: document has no extractable text", doc.Source, types.ErrIngest)
	}
	return chunks, nil
}

// splitPage cuts text into segments of at most maxChunkSize runes with
// proper sentence boundaries: each cut prefers the nearest sentence
// end, then the nearest space, then a hard cut. Consecutive segments
// overlap by up to overlapSize runes.
func (s *ChunkerService) splitPage(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.maxChunkSize {
		return []string{text}
	}

	var segments []string
	currentPos := 0
	for currentPos < len(runes) {
		chunkEnd := currentPos + s.maxChunkSize
		if chunkEnd >= len(runes) {
			// Handle last segment
			if segment := strings.TrimSpace(string(runes[currentPos:])); segment != "" {
				segments = append(segments, segment)
			}
			break
		}

		cut := findCut(runes, currentPos, chunkEnd)
		if segment := strings.TrimSpace(string(runes[currentPos:cut])); segment != "" {
			segments = append(segments, segment)
		}

		// Step back by the overlap, but always make progress.
		next := cut - s.overlapSize
		if next <= currentPos {
			next = cut
		}
		currentPos = next
	}

	return segments
}

// findCut picks a cut position in (start, end]: the nearest sentence
// end scanning backwards from end, else the nearest space, else end.
func findCut(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		switch runes[i-1] {
		case '.', '?', '!':
			return i
		}
	}
	for i := end; i > start; i-- {
		if runes[i-1] == ' ' {
			return i
		}
	}
	return end
}

// cleanText strips the control characters and footnote markers that PDF
// extraction tends to leave behind, then collapses repeated spaces.
func cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"":      "",   // Private-use glyph
		"‡":      "",   // Double dagger
		"†":      "",   // Dagger
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}

	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}

	return strings.TrimSpace(cleaned)
}
