package pipeline

import (
	"strings"
	"testing"

	"github.com/mentora/ragline/pipeline_type"
)

func rankedChunk(file string, page int, content string, score float64) pipeline_type.RankedChunk {
	return pipeline_type.RankedChunk{
		Content:  content,
		Metadata: pipeline_type.ChunkMetadata{FileName: file, Page: page},
		Score:    score,
	}
}

func TestBuildContext(t *testing.T) {
	chunks := []pipeline_type.RankedChunk{
		rankedChunk("biology.pdf", 3, "Cells divide by mitosis.", 0.9),
		rankedChunk("chemistry.pdf", 7, "Acids donate protons.", 0.7),
	}

	got := BuildContext(chunks)

	if !strings.Contains(got, "[Source 1: biology.pdf, Page 3]\nCells divide by mitosis.") {
		t.Errorf("missing first source block:\n%s", got)
	}
	if !strings.Contains(got, "[Source 2: chemistry.pdf, Page 7]\nAcids donate protons.") {
		t.Errorf("missing second source block:\n%s", got)
	}
	if strings.Index(got, "biology.pdf") > strings.Index(got, "chemistry.pdf") {
		t.Error("rank order not preserved")
	}
	if !strings.Contains(got, contextDivider) {
		t.Error("blocks not separated by divider")
	}
}

func TestBuildContext_Empty(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestDedupeSources_CollapsesOverlappingSnippets(t *testing.T) {
	// Two chunks from the same file and page sharing a snippet prefix, as
	// produced by overlap carry.
	shared := strings.Repeat("the krebs cycle oxidizes acetyl-coa ", 3)
	chunks := []pipeline_type.RankedChunk{
		rankedChunk("unit1.pdf", 3, shared+"and produces NADH", 0.9),
		rankedChunk("unit1.pdf", 3, shared+"within the matrix", 0.8),
	}

	sources := DedupeSources(chunks)
	if len(sources) != 1 {
		t.Fatalf("expected 1 deduplicated source, got %d", len(sources))
	}
	if sources[0].PDFName != "unit1.pdf" || sources[0].PageNo != 3 {
		t.Errorf("unexpected source: %+v", sources[0])
	}
}

func TestDedupeSources_DifferentPagesKept(t *testing.T) {
	chunks := []pipeline_type.RankedChunk{
		rankedChunk("unit1.pdf", 3, "identical content", 0.9),
		rankedChunk("unit1.pdf", 4, "identical content", 0.8),
	}

	sources := DedupeSources(chunks)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources for distinct pages, got %d", len(sources))
	}
}

func TestDedupeSources_FirstOccurrenceWins(t *testing.T) {
	chunks := []pipeline_type.RankedChunk{
		rankedChunk("a.pdf", 1, "alpha content", 0.9),
		rankedChunk("b.pdf", 2, "beta content", 0.8),
		rankedChunk("a.pdf", 1, "alpha content", 0.5),
	}

	sources := DedupeSources(chunks)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].PDFName != "a.pdf" || sources[1].PDFName != "b.pdf" {
		t.Errorf("order not preserved: %+v", sources)
	}
}

func TestDedupeSources_SnippetLength(t *testing.T) {
	long := strings.Repeat("x", 500)
	sources := DedupeSources([]pipeline_type.RankedChunk{
		rankedChunk("a.pdf", 1, long, 0.9),
	})
	if len(sources[0].Snippet) != snippetLength {
		t.Errorf("snippet length = %d, want %d", len(sources[0].Snippet), snippetLength)
	}
}
