package chunk_service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/mentora/ragline/pipeline_type"
	"github.com/mentora/ragline/services/token_service"
)

// Chunker turns extracted document text into token-bounded, overlapping
// chunks tagged with provenance. It is a pure function of its input and the
// configured budgets; malformed input degrades into more, smaller chunks
// instead of erroring.
type Chunker struct {
	chunkTokenBudget   int
	overlapTokenBudget int
	logger             *slog.Logger
}

func NewChunker(chunkTokenBudget, overlapTokenBudget int, logger *slog.Logger) *Chunker {
	if chunkTokenBudget <= 0 {
		chunkTokenBudget = 400
	}
	if overlapTokenBudget < 0 {
		overlapTokenBudget = 0
	}
	return &Chunker{
		chunkTokenBudget:   chunkTokenBudget,
		overlapTokenBudget: overlapTokenBudget,
		logger:             logger,
	}
}

// CreateChunks splits text into chunks within the token budget. Each chunk
// after the first carries the trailing overlapTokenBudget/2 words of its
// predecessor as a prefix, so retrieval can recover answers that straddle a
// chunk boundary. Chunks that still exceed 1.2x the budget after overlap, and
// blank chunks, are dropped.
func (c *Chunker) CreateChunks(text, fileName, fileID string, pageNumber int) []pipeline_type.Chunk {
	if pageNumber < 1 {
		pageNumber = 1
	}

	lang, confidence := DetectLanguage(text)
	pieces := token_service.SplitRecursively(text, c.chunkTokenBudget)
	if len(pieces) == 0 {
		return nil
	}

	maxTokens := c.chunkTokenBudget + c.chunkTokenBudget/5
	overlapWords := c.overlapTokenBudget / 2
	now := time.Now()

	chunks := make([]pipeline_type.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		content := piece
		if i > 0 && overlapWords > 0 {
			if tail := trailingWords(pieces[i-1], overlapWords); tail != "" {
				content = tail + " " + content
			}
		}

		if strings.TrimSpace(content) == "" {
			continue
		}
		if tokens := token_service.CountTokens(content); tokens > maxTokens {
			c.logger.Warn("Dropping oversized chunk",
				slog.String("file_id", fileID),
				slog.Int("page", pageNumber),
				slog.Int("chunk_index", i),
				slog.Int("token_count", tokens))
			continue
		}

		chunks = append(chunks, pipeline_type.Chunk{
			ID:                 fmt.Sprintf("%s_p%d_c%d", fileID, pageNumber, i),
			Content:            content,
			FileID:             fileID,
			FileName:           fileName,
			Page:               pageNumber,
			ChunkIndex:         i,
			Timestamp:          now,
			Language:           lang,
			LanguageConfidence: confidence,
		})
	}

	return chunks
}

// trailingWords returns the last n whitespace-separated words of text.
func trailingWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}

type scriptRange struct {
	table *unicode.RangeTable
	code  string
}

// Script ranges checked in order; first match wins per rune.
var scriptRanges = []scriptRange{
	{unicode.Han, "zh"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Arabic, "ar"},
	{unicode.Devanagari, "hi"},
	{unicode.Cyrillic, "ru"},
	{unicode.Greek, "el"},
	{unicode.Latin, "en"},
}

// DetectLanguage guesses the dominant language of text from Unicode script
// membership alone. Confidence is the share of letters belonging to the
// winning script.
func DetectLanguage(text string) (string, float64) {
	counts := make(map[string]int)
	letters := 0

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, s := range scriptRanges {
			if unicode.Is(s.table, r) {
				counts[s.code]++
				break
			}
		}
	}

	if letters == 0 {
		return "en", 0
	}

	best, bestCount := "en", 0
	for code, n := range counts {
		if n > bestCount {
			best, bestCount = code, n
		}
	}
	return best, float64(bestCount) / float64(letters)
}
