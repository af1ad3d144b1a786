package pipeline_type

import "time"

// QueryType is the triage decision made by the query classifier.
type QueryType string

const (
	QueryTypeGreeting QueryType = "GREETING"
	QueryTypeSimple   QueryType = "SIMPLE"
	QueryTypeRAG      QueryType = "RAG"
)

// Strategy identifies which terminal branch of the pipeline produced a result.
type Strategy string

const (
	StrategyGreeting          Strategy = "GREETING"
	StrategySimpleChat        Strategy = "SIMPLE_CHAT"
	StrategySimpleChatNoDocs  Strategy = "SIMPLE_CHAT_NO_DOCS"
	StrategyDocumentNotFound  Strategy = "DOCUMENT_NOT_FOUND"
	StrategyNoRelevantContent Strategy = "NO_RELEVANT_CONTENT"
	StrategyRAG               Strategy = "RAG"
	StrategyError             Strategy = "ERROR"
)

// ChatTurn is one message of the recent conversation history. The pipeline
// only ever reads history, it never appends to it.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chunk is a token-bounded slice of a source document, created once at
// ingestion and immutable afterwards.
type Chunk struct {
	ID                 string    `json:"id"`
	Content            string    `json:"content"`
	FileID             string    `json:"file_id"`
	FileName           string    `json:"file_name"`
	Page               int       `json:"page"`
	ChunkIndex         int       `json:"chunk_index"`
	Timestamp          time.Time `json:"timestamp"`
	Language           string    `json:"language"`
	LanguageConfidence float64   `json:"language_confidence"`
}

// ChunkMetadata is the provenance subset of a Chunk carried alongside
// retrieval results.
type ChunkMetadata struct {
	FileID     string `json:"file_id"`
	FileName   string `json:"file_name"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
	Language   string `json:"language"`
}

// RetrievalCandidate is a raw nearest-neighbor hit, alive for one request.
type RetrievalCandidate struct {
	Content  string
	Metadata ChunkMetadata
	Distance float64
}

// RankedChunk is a retrieval candidate that survived the reranker.
// Score is 1 - distance.
type RankedChunk struct {
	Content  string
	Metadata ChunkMetadata
	Score    float64
}

// MentionResolution is the outcome of parsing a query for document
// references. IsStrict means retrieval must be restricted to the named
// documents and fails closed when none of them resolve.
type MentionResolution struct {
	Documents  []string `json:"documents"`
	IsStrict   bool     `json:"is_strict"`
	CleanQuery string   `json:"clean_query"`
}

// SourceCitation points the user at the evidence behind an answer.
type SourceCitation struct {
	PDFName string `json:"pdf_name"`
	PageNo  int    `json:"page_no"`
	Snippet string `json:"snippet"`
}

// ClassificationResult is produced once per query by the classifier and
// never mutated afterwards.
type ClassificationResult struct {
	Type                  QueryType `json:"type"`
	Reason                string    `json:"reason"`
	EstimatedOutputTokens int       `json:"estimated_output_tokens"`
}

// ResultMetadata carries tracing and branch information for a pipeline
// result. Optional fields are only set on the branches that produce them.
type ResultMetadata struct {
	CorrelationID  string        `json:"correlation_id"`
	Strategy       Strategy      `json:"strategy"`
	Duration       time.Duration `json:"duration"`
	ChunksFound    int           `json:"chunks_found"`
	DocumentFilter []string      `json:"document_filter,omitempty"`
	StrictMode     bool          `json:"strict_mode,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// PipelineResult is the terminal object handed back to the caller. It is
// always well formed; upstream failures are folded into it rather than
// escaping as raw errors.
type PipelineResult struct {
	Answer   string           `json:"answer"`
	Sources  []SourceCitation `json:"sources"`
	Metadata ResultMetadata   `json:"metadata"`
}

// CorpusFile describes one document known to a collection, used by the
// mention resolver to map referenced names to file ids.
type CorpusFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
