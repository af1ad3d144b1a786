package pipeline

import (
	"sort"

	"github.com/mentora/ragline/pipeline_type"
)

// Rerank converts distances to similarity scores (1 - distance), orders
// candidates best-first with retrieval order breaking ties, truncates to
// topK, then drops anything under the relevance floor. It never pads a short
// list back up to topK: returning fewer, or zero, results is the observable
// "insufficient evidence" signal downstream branches react to.
func Rerank(candidates []pipeline_type.RetrievalCandidate, topK int, scoreFloor float64) []pipeline_type.RankedChunk {
	if len(candidates) == 0 {
		return []pipeline_type.RankedChunk{}
	}

	ranked := make([]pipeline_type.RankedChunk, len(candidates))
	for i, c := range candidates {
		ranked[i] = pipeline_type.RankedChunk{
			Content:  c.Content,
			Metadata: c.Metadata,
			Score:    1 - c.Distance,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := ranked[:0]
	for _, r := range ranked {
		if r.Score >= scoreFloor {
			out = append(out, r)
		}
	}
	return out
}
