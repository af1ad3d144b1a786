package token_service

import (
	"strings"
	"unicode"
)

// CountTokens estimates the number of model tokens in text. Latin-script
// words cost roughly one token per four characters, CJK and other ideographic
// characters cost one token each. The estimate only has to be stable and
// monotonic; the chunk budget absorbs the slack.
func CountTokens(text string) int {
	tokens := 0
	wordLen := 0

	flush := func() {
		if wordLen == 0 {
			return
		}
		tokens += 1 + (wordLen-1)/4
		wordLen = 0
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r):
			flush()
			tokens++
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens++
		default:
			wordLen++
		}
	}
	flush()

	return tokens
}

// SplitRecursively splits text into pieces of at most maxTokens tokens.
// It prefers blank-line paragraph boundaries, packing consecutive paragraphs
// greedily into the current piece. A paragraph that alone exceeds the budget
// is split again; when no paragraph boundary exists the text is bisected at
// the character midpoint. Every recursion strictly shrinks its input, so the
// split always terminates.
func SplitRecursively(text string, maxTokens int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if CountTokens(trimmed) <= maxTokens {
		return []string{trimmed}
	}

	paragraphs := splitParagraphs(trimmed)
	if len(paragraphs) <= 1 {
		return bisect(trimmed, maxTokens)
	}

	var pieces []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
	}

	for _, para := range paragraphs {
		paraTokens := CountTokens(para)
		if paraTokens > maxTokens {
			flush()
			pieces = append(pieces, SplitRecursively(para, maxTokens)...)
			continue
		}
		if currentTokens+paraTokens > maxTokens {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}
	flush()

	return pieces
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// bisect splits a boundary-free block at the rune midpoint and recurses on
// each half until the halves fit the budget.
func bisect(text string, maxTokens int) []string {
	if CountTokens(text) <= maxTokens {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	runes := []rune(text)
	if len(runes) < 2 {
		return []string{text}
	}
	mid := len(runes) / 2

	var out []string
	out = append(out, bisect(string(runes[:mid]), maxTokens)...)
	out = append(out, bisect(string(runes[mid:]), maxTokens)...)
	return out
}
