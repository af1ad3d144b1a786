package pipeline

import (
	"testing"

	"github.com/mentora/ragline/pipeline_type"
)

func candidate(id string, distance float64) pipeline_type.RetrievalCandidate {
	return pipeline_type.RetrievalCandidate{
		Content:  "content " + id,
		Metadata: pipeline_type.ChunkMetadata{FileID: id, FileName: id + ".pdf", Page: 1},
		Distance: distance,
	}
}

func TestRerank_OrderingAndFloor(t *testing.T) {
	cands := []pipeline_type.RetrievalCandidate{
		candidate("a", 0.5), // score 0.5
		candidate("b", 0.1), // score 0.9
		candidate("c", 0.8), // score 0.2, below floor
		candidate("d", 0.3), // score 0.7
	}

	ranked := Rerank(cands, 3, 0.3)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked chunks, got %d", len(ranked))
	}
	wantOrder := []string{"b", "d", "a"}
	for i, want := range wantOrder {
		if ranked[i].Metadata.FileID != want {
			t.Errorf("position %d: got %s, want %s", i, ranked[i].Metadata.FileID, want)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("scores not non-increasing at %d", i)
		}
	}
	for _, r := range ranked {
		if r.Score < 0.3 {
			t.Errorf("chunk %s below floor: %f", r.Metadata.FileID, r.Score)
		}
	}
}

func TestRerank_NeverPads(t *testing.T) {
	cands := []pipeline_type.RetrievalCandidate{
		candidate("a", 0.2),  // score 0.8
		candidate("b", 0.85), // score 0.15
		candidate("c", 0.9),  // score 0.1
	}

	ranked := Rerank(cands, 3, 0.3)
	if len(ranked) != 1 {
		t.Fatalf("expected sub-floor candidates dropped, got %d results", len(ranked))
	}
	if ranked[0].Metadata.FileID != "a" {
		t.Errorf("got %s, want a", ranked[0].Metadata.FileID)
	}
}

func TestRerank_AllBelowFloor(t *testing.T) {
	cands := []pipeline_type.RetrievalCandidate{
		candidate("a", 0.95),
		candidate("b", 1.4), // negative score, cosine distance > 1
	}

	ranked := Rerank(cands, 3, 0.3)
	if len(ranked) != 0 {
		t.Errorf("expected empty result, got %d", len(ranked))
	}
}

func TestRerank_Empty(t *testing.T) {
	ranked := Rerank(nil, 3, 0.3)
	if ranked == nil || len(ranked) != 0 {
		t.Errorf("Rerank(nil) should be an empty non-nil slice, got %v", ranked)
	}
}

func TestRerank_StableTies(t *testing.T) {
	cands := []pipeline_type.RetrievalCandidate{
		candidate("first", 0.4),
		candidate("second", 0.4),
		candidate("third", 0.4),
	}

	ranked := Rerank(cands, 3, 0.3)
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if ranked[i].Metadata.FileID != w {
			t.Errorf("tie order broken at %d: got %s, want %s", i, ranked[i].Metadata.FileID, w)
		}
	}
}

func TestRerank_TruncatesBeforeFloor(t *testing.T) {
	// Five admissible candidates, topK 2: only the best two survive.
	cands := []pipeline_type.RetrievalCandidate{
		candidate("a", 0.5),
		candidate("b", 0.4),
		candidate("c", 0.3),
		candidate("d", 0.2),
		candidate("e", 0.1),
	}

	ranked := Rerank(cands, 2, 0.3)
	if len(ranked) != 2 {
		t.Fatalf("expected 2, got %d", len(ranked))
	}
	if ranked[0].Metadata.FileID != "e" || ranked[1].Metadata.FileID != "d" {
		t.Errorf("unexpected top 2: %s, %s", ranked[0].Metadata.FileID, ranked[1].Metadata.FileID)
	}
}
