package pipeline

import (
	"fmt"
	"strings"

	"github.com/mentora/ragline/pipeline_type"
)

const contextDivider = "\n\n---\n\n"

const (
	snippetLength  = 150
	dedupKeyLength = 50
)

// BuildContext concatenates ranked chunks into the provenance-tagged block
// handed to the generation prompt, most relevant first.
func BuildContext(chunks []pipeline_type.RankedChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	blocks := make([]string, len(chunks))
	for i, ch := range chunks {
		blocks[i] = fmt.Sprintf("[Source %d: %s, Page %d]\n%s",
			i+1, ch.Metadata.FileName, ch.Metadata.Page, ch.Content)
	}
	return strings.Join(blocks, contextDivider)
}

// DedupeSources builds the citation list for an answer. Chunks from the same
// file and page whose snippets share a 50-character prefix collapse to the
// first occurrence, preserving rank order.
func DedupeSources(chunks []pipeline_type.RankedChunk) []pipeline_type.SourceCitation {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]pipeline_type.SourceCitation, 0, len(chunks))

	for _, ch := range chunks {
		snippet := truncate(ch.Content, snippetLength)
		key := fmt.Sprintf("%s|%d|%s", ch.Metadata.FileName, ch.Metadata.Page, truncate(snippet, dedupKeyLength))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sources = append(sources, pipeline_type.SourceCitation{
			PDFName: ch.Metadata.FileName,
			PageNo:  ch.Metadata.Page,
			Snippet: snippet,
		})
	}
	return sources
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
