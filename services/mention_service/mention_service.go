package mention_service

import (
	"regexp"
	"strings"

	"github.com/mentora/ragline/pipeline_type"
)

// The resolver parses a query for document references. A strict mention
// (@name) restricts retrieval to the named documents and fails closed when
// none resolve; soft mentions only bias the search and never restrict it.
//
// Extractors run in priority order. The first extractor that matches decides
// strictness; strict matches short-circuit so soft patterns are never
// evaluated alongside them.

var (
	strictMentionRe = regexp.MustCompile(`@([\w.-]+)`)
	softPhraseRe    = regexp.MustCompile(`(?i)\b(?:in|from|according to|refer to|check|see)\s+(?:the\s+)?(?:document\s+|file\s+|pdf\s+)?([\w-]+\.pdf)\b`)
	barePDFRe       = regexp.MustCompile(`(?i)\b([\w-]+\.pdf)\b`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

type extraction struct {
	documents  []string
	isStrict   bool
	cleanQuery string
}

// extractor inspects a query and returns a match or nil.
type extractor func(query string) *extraction

// Soft extractors all contribute when no strict mention exists; a strict
// match short-circuits them entirely.
var softExtractors = []extractor{
	extractSoftPhrases,
	extractBarePDFNames,
}

// ExtractMentionedDocuments parses query for explicit (@name) or implicit
// document references. CleanQuery only differs from the input when strict
// mentions were stripped out of it.
func ExtractMentionedDocuments(query string) pipeline_type.MentionResolution {
	if m := extractStrictMentions(query); m != nil {
		return pipeline_type.MentionResolution{
			Documents:  m.documents,
			IsStrict:   true,
			CleanQuery: m.cleanQuery,
		}
	}

	var documents []string
	for _, ex := range softExtractors {
		if m := ex(query); m != nil {
			for _, d := range m.documents {
				documents = appendUnique(documents, d)
			}
		}
	}
	return pipeline_type.MentionResolution{Documents: documents, CleanQuery: query}
}

func extractStrictMentions(query string) *extraction {
	matches := strictMentionRe.FindAllStringSubmatch(query, -1)
	if len(matches) == 0 {
		return nil
	}

	documents := make([]string, 0, len(matches))
	for _, m := range matches {
		documents = appendUnique(documents, m[1])
	}

	clean := strictMentionRe.ReplaceAllString(query, "")
	clean = strings.TrimSpace(spacesRe.ReplaceAllString(clean, " "))

	return &extraction{documents: documents, isStrict: true, cleanQuery: clean}
}

func extractSoftPhrases(query string) *extraction {
	matches := softPhraseRe.FindAllStringSubmatch(query, -1)
	if len(matches) == 0 {
		return nil
	}

	documents := make([]string, 0, len(matches))
	for _, m := range matches {
		documents = appendUnique(documents, m[1])
	}
	// Soft mentions never alter the query.
	return &extraction{documents: documents, cleanQuery: query}
}

func extractBarePDFNames(query string) *extraction {
	matches := barePDFRe.FindAllStringSubmatch(query, -1)
	if len(matches) == 0 {
		return nil
	}

	documents := make([]string, 0, len(matches))
	for _, m := range matches {
		documents = appendUnique(documents, m[1])
	}
	return &extraction{documents: documents, cleanQuery: query}
}

// ResolveFileIDs maps extracted document names to known corpus files using a
// case-insensitive substring match in both directions, deduplicated by file
// id. An empty result under strict mode means the pipeline must fail closed.
func ResolveFileIDs(resolution pipeline_type.MentionResolution, files []pipeline_type.CorpusFile) []string {
	if len(resolution.Documents) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, name := range resolution.Documents {
		needle := strings.ToLower(name)
		for _, f := range files {
			known := strings.ToLower(f.Name)
			if !strings.Contains(known, needle) && !strings.Contains(needle, known) {
				continue
			}
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}
