package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Regeleardealului/diabetes-agent/types"
)

// contextSeparator sits between match texts in the assembled context.
const contextSeparator = "\n\n"

// ContextAssembler packs retrieved matches into a bounded prompt
// context and derives citations from the matches that made it in.
type ContextAssembler struct {
	maxContextSize int // Maximum context length, in runes
}

func NewContextAssembler(maxContextSize int) *ContextAssembler {
	if maxContextSize <= 0 {
		maxContextSize = 8000
	}
	return &ContextAssembler{maxContextSize: maxContextSize}
}

// Assemble concatenates match texts in the given order until the size
// budget runs out, so the lowest-similarity matches are dropped first.
// Citations come only from matches actually included. When even the
// first match alone exceeds the budget it is truncated rather than
// dropped, so a non-empty result set still grounds the answer.
func (a *ContextAssembler) Assemble(matches []types.RetrievedMatch) (string, []types.Citation) {
	if len(matches) == 0 {
		return "", nil
	}

	var included []types.RetrievedMatch
	var b strings.Builder
	size := 0
	for _, match := range matches {
		textLen := len([]rune(match.Text))
		sepLen := 0
		if len(included) > 0 {
			sepLen = len(contextSeparator)
		}

		if size+sepLen+textLen > a.maxContextSize {
			if len(included) == 0 {
				match.Text = truncateRunes(match.Text, a.maxContextSize)
				b.WriteString(match.Text)
				included = append(included, match)
			}
			break
		}

		if sepLen > 0 {
			b.WriteString(contextSeparator)
		}
		b.WriteString(match.Text)
		size += sepLen + textLen
		included = append(included, match)
	}

	return b.String(), Citations(included)
}

// Citations groups matches by source. Sources keep the order they were
// first encountered in; each group carries its distinct page numbers in
// ascending order.
func Citations(matches []types.RetrievedMatch) []types.Citation {
	var citations []types.Citation
	index := make(map[string]int)
	for _, match := range matches {
		i, ok := index[match.Source]
		if !ok {
			index[match.Source] = len(citations)
			citations = append(citations, types.Citation{
				Source: match.Source,
				Pages:  []int{match.Page},
			})
			continue
		}
		if !containsInt(citations[i].Pages, match.Page) {
			citations[i].Pages = append(citations[i].Pages, match.Page)
		}
	}

	for i := range citations {
		sort.Ints(citations[i].Pages)
	}
	return citations
}

// FormatCitations flattens citations into the response contract's
// "{source}, Page {page}" strings, one per cited page. The slice is
// never nil so an empty list serializes as [] rather than null.
func FormatCitations(citations []types.Citation) []string {
	sources := []string{}
	for _, citation := range citations {
		for _, page := range citation.Pages {
			sources = append(sources, fmt.Sprintf("%s, Page %d", citation.Source, page))
		}
	}
	return sources
}

// RenderCitations renders citations as a single line, one group per
// source, e.g. "doc.pdf: Page 1, Page 2; other.pdf: Page 5".
func RenderCitations(citations []types.Citation) string {
	groups := make([]string, 0, len(citations))
	for _, citation := range citations {
		pages := make([]string, 0, len(citation.Pages))
		for _, page := range citation.Pages {
			pages = append(pages, fmt.Sprintf("Page %d", page))
		}
		groups = append(groups, fmt.Sprintf("%s: %s", citation.Source, strings.Join(pages, ", ")))
	}
	return strings.Join(groups, "; ")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
