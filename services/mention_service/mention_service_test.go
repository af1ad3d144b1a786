package mention_service

import (
	"reflect"
	"testing"

	"github.com/mentora/ragline/pipeline_type"
)

func TestExtractMentionedDocuments(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		wantDocuments []string
		wantStrict    bool
		wantClean     string
	}{
		{
			name:          "Strict mention stripped from query",
			query:         "@biology.pdf explain cell structure",
			wantDocuments: []string{"biology.pdf"},
			wantStrict:    true,
			wantClean:     "explain cell structure",
		},
		{
			name:          "Multiple strict mentions",
			query:         "@unit1.pdf @unit2.pdf compare the chapters",
			wantDocuments: []string{"unit1.pdf", "unit2.pdf"},
			wantStrict:    true,
			wantClean:     "compare the chapters",
		},
		{
			name:          "Strict short-circuits soft patterns",
			query:         "@notes summarize everything in extra.pdf",
			wantDocuments: []string{"notes"},
			wantStrict:    true,
			wantClean:     "summarize everything in extra.pdf",
		},
		{
			name:          "Soft bare pdf keeps query intact",
			query:         "summarize notes.pdf please",
			wantDocuments: []string{"notes.pdf"},
			wantStrict:    false,
			wantClean:     "summarize notes.pdf please",
		},
		{
			name:          "Soft phrase mention",
			query:         "what does it say in chemistry.pdf about acids",
			wantDocuments: []string{"chemistry.pdf"},
			wantStrict:    false,
			wantClean:     "what does it say in chemistry.pdf about acids",
		},
		{
			name:          "Soft phrase with filler word",
			query:         "according to the document physics-notes.pdf, define momentum",
			wantDocuments: []string{"physics-notes.pdf"},
			wantStrict:    false,
			wantClean:     "according to the document physics-notes.pdf, define momentum",
		},
		{
			name:          "Duplicate soft mentions deduplicated",
			query:         "see notes.pdf and then check notes.pdf again",
			wantDocuments: []string{"notes.pdf"},
			wantStrict:    false,
			wantClean:     "see notes.pdf and then check notes.pdf again",
		},
		{
			name:          "No mentions",
			query:         "explain photosynthesis",
			wantDocuments: nil,
			wantStrict:    false,
			wantClean:     "explain photosynthesis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMentionedDocuments(tt.query)
			if !reflect.DeepEqual(got.Documents, tt.wantDocuments) {
				t.Errorf("Documents = %v, want %v", got.Documents, tt.wantDocuments)
			}
			if got.IsStrict != tt.wantStrict {
				t.Errorf("IsStrict = %v, want %v", got.IsStrict, tt.wantStrict)
			}
			if got.CleanQuery != tt.wantClean {
				t.Errorf("CleanQuery = %q, want %q", got.CleanQuery, tt.wantClean)
			}
		})
	}
}

func TestResolveFileIDs(t *testing.T) {
	files := []pipeline_type.CorpusFile{
		{ID: "f1", Name: "biology.pdf"},
		{ID: "f2", Name: "chapter2-chemistry.pdf"},
		{ID: "f3", Name: "notes.pdf"},
	}

	tests := []struct {
		name       string
		resolution pipeline_type.MentionResolution
		want       []string
	}{
		{
			name:       "Exact name",
			resolution: pipeline_type.MentionResolution{Documents: []string{"biology.pdf"}},
			want:       []string{"f1"},
		},
		{
			name:       "Mention is substring of file name",
			resolution: pipeline_type.MentionResolution{Documents: []string{"chemistry"}},
			want:       []string{"f2"},
		},
		{
			name:       "File name is substring of mention",
			resolution: pipeline_type.MentionResolution{Documents: []string{"my-notes.pdf"}},
			want:       []string{"f3"},
		},
		{
			name:       "Case insensitive",
			resolution: pipeline_type.MentionResolution{Documents: []string{"BIOLOGY.PDF"}},
			want:       []string{"f1"},
		},
		{
			name:       "Duplicates collapse by file id",
			resolution: pipeline_type.MentionResolution{Documents: []string{"notes", "notes.pdf"}},
			want:       []string{"f3"},
		},
		{
			name:       "Unresolvable",
			resolution: pipeline_type.MentionResolution{Documents: []string{"history.pdf"}},
			want:       nil,
		},
		{
			name:       "No documents",
			resolution: pipeline_type.MentionResolution{},
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFileIDs(tt.resolution, files)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveFileIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}
