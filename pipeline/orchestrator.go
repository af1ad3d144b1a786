package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentora/ragline/pipeline_type"
	"github.com/mentora/ragline/services/embedding_service"
	"github.com/mentora/ragline/services/llm_service"
	"github.com/mentora/ragline/services/mention_service"
	"github.com/mentora/ragline/services/vector_store"
)

// QueryClassifier triages a query before any retrieval work happens.
type QueryClassifier interface {
	Classify(ctx context.Context, query string, hasDocuments bool, history []pipeline_type.ChatTurn) pipeline_type.ClassificationResult
}

// KeywordExtractor optionally expands the query before embedding. An empty
// slice means no augmentation.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, query string) ([]string, error)
}

// ResultPersister is the optional post-answer collaborator (message/citation
// storage). Its failures are logged and swallowed; the PipelineResult is
// already final when it runs.
type ResultPersister interface {
	PersistResult(ctx context.Context, collection, query string, result *pipeline_type.PipelineResult) error
}

// Options are the retrieval tunables. They are configuration, not semantics;
// the defaults mirror what the tests assume.
type Options struct {
	RetrieveTopK    int
	RerankTopK      int
	ScoreFloor      float64
	MaxHistoryTurns int
}

func DefaultOptions() Options {
	return Options{
		RetrieveTopK:    6,
		RerankTopK:      3,
		ScoreFloor:      0.3,
		MaxHistoryTurns: 6,
	}
}

// Orchestrator sequences classification, mention resolution, retrieval,
// reranking, context assembly and generation, and owns every fallback
// branch. Nothing throws past it: every outcome, including upstream
// outages, becomes a well-formed PipelineResult.
type Orchestrator struct {
	classifier QueryClassifier
	embedder   embedding_service.EmbeddingService
	store      vector_store.VectorStore
	llm        llm_service.LLMService
	keywords   KeywordExtractor
	persister  ResultPersister
	opts       Options
	logger     *slog.Logger
}

func NewOrchestrator(classifier QueryClassifier, embedder embedding_service.EmbeddingService, store vector_store.VectorStore, llm llm_service.LLMService, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.RetrieveTopK <= 0 {
		opts.RetrieveTopK = 6
	}
	if opts.RerankTopK <= 0 {
		opts.RerankTopK = 3
	}
	return &Orchestrator{
		classifier: classifier,
		embedder:   embedder,
		store:      store,
		llm:        llm,
		opts:       opts,
		logger:     logger,
	}
}

// WithKeywordExtractor enables query augmentation before embedding.
func (o *Orchestrator) WithKeywordExtractor(ke KeywordExtractor) *Orchestrator {
	o.keywords = ke
	return o
}

// WithPersister enables best-effort post-answer persistence.
func (o *Orchestrator) WithPersister(p ResultPersister) *Orchestrator {
	o.persister = p
	return o
}

// QueryRequest is one stateless query against an externally owned corpus and
// externally supplied history.
type QueryRequest struct {
	Query      string
	Collection string
	History    []pipeline_type.ChatTurn
}

// ProcessQuery runs the full pipeline. The only error it returns is
// pipeline_type.ErrEmptyQuery, raised before the pipeline starts; every
// other outcome is encoded in the PipelineResult.
func (o *Orchestrator) ProcessQuery(ctx context.Context, req QueryRequest) (*pipeline_type.PipelineResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, pipeline_type.ErrEmptyQuery
	}

	correlationID := uuid.NewString()
	start := time.Now()
	history := o.trimHistory(req.History)

	o.logger.Info("Processing query",
		slog.String("correlation_id", correlationID),
		slog.String("collection", req.Collection))

	// Corpus size feeds both the classifier's hasDocuments hint and the
	// empty-corpus short-circuit. A store outage here only matters if the
	// query actually needs retrieval.
	corpusSize, countErr := o.store.Count(ctx, req.Collection)
	if countErr != nil {
		o.logger.Warn("Corpus count failed",
			slog.String("correlation_id", correlationID),
			slog.String("error", countErr.Error()))
		corpusSize = 0
	}

	classification := o.classifier.Classify(ctx, req.Query, corpusSize > 0, history)
	o.logger.Debug("Query classified",
		slog.String("correlation_id", correlationID),
		slog.String("type", string(classification.Type)),
		slog.String("reason", classification.Reason))

	switch classification.Type {
	case pipeline_type.QueryTypeGreeting, pipeline_type.QueryTypeSimple:
		return o.directAnswer(ctx, req, classification, correlationID, start, history)
	}

	// RAG path.
	if countErr != nil {
		return o.errorResult(req, correlationID, start, countErr), nil
	}
	if corpusSize == 0 {
		return o.noDocsFallback(ctx, req, classification, correlationID, start, history)
	}

	resolution := mention_service.ExtractMentionedDocuments(req.Query)

	var fileFilter []string
	if len(resolution.Documents) > 0 {
		files, err := o.store.ListFiles(ctx, req.Collection)
		if err != nil {
			return o.errorResult(req, correlationID, start, err), nil
		}
		ids := mention_service.ResolveFileIDs(resolution, files)

		if resolution.IsStrict {
			if len(ids) == 0 {
				return o.documentNotFound(req, resolution, correlationID, start), nil
			}
			fileFilter = ids
		}
		// Soft mentions stay in the query text and bias the embedding;
		// they never restrict the search.
	}

	searchQuery := resolution.CleanQuery
	if o.keywords != nil {
		if kws, err := o.keywords.ExtractKeywords(ctx, searchQuery); err != nil {
			o.logger.Warn("Keyword augmentation failed",
				slog.String("correlation_id", correlationID),
				slog.String("error", err.Error()))
		} else if len(kws) > 0 {
			searchQuery = searchQuery + " " + strings.Join(kws, " ")
		}
	}

	embedding, err := o.embedder.Embed(ctx, searchQuery)
	if err != nil {
		return o.errorResult(req, correlationID, start, err), nil
	}

	retrieved, err := o.store.Query(ctx, req.Collection, embedding, o.opts.RetrieveTopK, fileFilter)
	if err != nil {
		return o.errorResult(req, correlationID, start, err), nil
	}

	candidates := make([]pipeline_type.RetrievalCandidate, len(retrieved.Documents))
	for i := range retrieved.Documents {
		candidates[i] = pipeline_type.RetrievalCandidate{
			Content:  retrieved.Documents[i],
			Metadata: retrieved.Metadatas[i],
			Distance: retrieved.Distances[i],
		}
	}

	ranked := Rerank(candidates, o.opts.RerankTopK, o.opts.ScoreFloor)
	if len(ranked) == 0 {
		return o.noRelevantContent(req, resolution, fileFilter, correlationID, start), nil
	}

	contextBlock := BuildContext(ranked)
	sources := DedupeSources(ranked)

	answer, err := o.llm.CallLLM(ctx, ragPrompt(contextBlock, resolution.CleanQuery), llm_service.CallOptions{
		SystemPrompt: "You are a study assistant. Answer using only the provided sources and cite them.",
		MaxTokens:    classification.EstimatedOutputTokens,
		History:      history,
	})
	if err != nil {
		return o.errorResult(req, correlationID, start, err), nil
	}

	result := &pipeline_type.PipelineResult{
		Answer:  answer,
		Sources: sources,
		Metadata: pipeline_type.ResultMetadata{
			CorrelationID:  correlationID,
			Strategy:       pipeline_type.StrategyRAG,
			Duration:       time.Since(start),
			ChunksFound:    len(ranked),
			DocumentFilter: fileFilter,
			StrictMode:     resolution.IsStrict,
		},
	}
	o.persist(ctx, req, result)
	return result, nil
}

func (o *Orchestrator) directAnswer(ctx context.Context, req QueryRequest, classification pipeline_type.ClassificationResult, correlationID string, start time.Time, history []pipeline_type.ChatTurn) (*pipeline_type.PipelineResult, error) {
	answer, err := o.llm.CallLLM(ctx, req.Query, llm_service.CallOptions{
		SystemPrompt: "You are a friendly study assistant. Keep the answer brief.",
		MaxTokens:    classification.EstimatedOutputTokens,
		History:      history,
	})
	if err != nil {
		return o.errorResult(req, correlationID, start, err), nil
	}

	strategy := pipeline_type.StrategySimpleChat
	if classification.Type == pipeline_type.QueryTypeGreeting {
		strategy = pipeline_type.StrategyGreeting
	}

	result := &pipeline_type.PipelineResult{
		Answer:  answer,
		Sources: []pipeline_type.SourceCitation{},
		Metadata: pipeline_type.ResultMetadata{
			CorrelationID: correlationID,
			Strategy:      strategy,
			Duration:      time.Since(start),
		},
	}
	o.persist(ctx, req, result)
	return result, nil
}

func (o *Orchestrator) noDocsFallback(ctx context.Context, req QueryRequest, classification pipeline_type.ClassificationResult, correlationID string, start time.Time, history []pipeline_type.ChatTurn) (*pipeline_type.PipelineResult, error) {
	prompt := req.Query + "\n\n(Answer from general knowledge; the user has not uploaded any documents yet. Mention that uploading documents enables grounded answers.)"
	answer, err := o.llm.CallLLM(ctx, prompt, llm_service.CallOptions{
		SystemPrompt: "You are a study assistant.",
		MaxTokens:    classification.EstimatedOutputTokens,
		History:      history,
	})
	if err != nil {
		return o.errorResult(req, correlationID, start, err), nil
	}

	result := &pipeline_type.PipelineResult{
		Answer:  answer,
		Sources: []pipeline_type.SourceCitation{},
		Metadata: pipeline_type.ResultMetadata{
			CorrelationID: correlationID,
			Strategy:      pipeline_type.StrategySimpleChatNoDocs,
			Duration:      time.Since(start),
		},
	}
	o.persist(ctx, req, result)
	return result, nil
}

func (o *Orchestrator) documentNotFound(req QueryRequest, resolution pipeline_type.MentionResolution, correlationID string, start time.Time) *pipeline_type.PipelineResult {
	result := &pipeline_type.PipelineResult{
		Answer: fmt.Sprintf(
			"I couldn't find %s in your documents. Please check the name or upload the file first.",
			strings.Join(resolution.Documents, ", ")),
		Sources: []pipeline_type.SourceCitation{},
		Metadata: pipeline_type.ResultMetadata{
			CorrelationID: correlationID,
			Strategy:      pipeline_type.StrategyDocumentNotFound,
			Duration:      time.Since(start),
			StrictMode:    true,
		},
	}
	o.persist(context.Background(), req, result)
	return result
}

func (o *Orchestrator) noRelevantContent(req QueryRequest, resolution pipeline_type.MentionResolution, fileFilter []string, correlationID string, start time.Time) *pipeline_type.PipelineResult {
	result := &pipeline_type.PipelineResult{
		Answer: "I couldn't find anything in your documents that answers this question. " +
			"Try rephrasing it, or ask about a different topic from your uploaded material.",
		Sources: []pipeline_type.SourceCitation{},
		Metadata: pipeline_type.ResultMetadata{
			CorrelationID:  correlationID,
			Strategy:       pipeline_type.StrategyNoRelevantContent,
			Duration:       time.Since(start),
			DocumentFilter: fileFilter,
			StrictMode:     resolution.IsStrict,
		},
	}
	o.persist(context.Background(), req, result)
	return result
}

func (o *Orchestrator) errorResult(req QueryRequest, correlationID string, start time.Time, cause error) *pipeline_type.PipelineResult {
	o.logger.Error("Pipeline degraded to error answer",
		slog.String("correlation_id", correlationID),
		slog.String("error", cause.Error()))

	return &pipeline_type.PipelineResult{
		Answer:  "I'm sorry, something went wrong while answering your question. Please try again in a moment.",
		Sources: []pipeline_type.SourceCitation{},
		Metadata: pipeline_type.ResultMetadata{
			CorrelationID: correlationID,
			Strategy:      pipeline_type.StrategyError,
			Duration:      time.Since(start),
			Error:         cause.Error(),
		},
	}
}

// persist hands the finished result to the optional persister. The result is
// already final; persistence failures are logged and swallowed.
func (o *Orchestrator) persist(ctx context.Context, req QueryRequest, result *pipeline_type.PipelineResult) {
	if o.persister == nil {
		return
	}
	if err := o.persister.PersistResult(ctx, req.Collection, req.Query, result); err != nil {
		o.logger.Warn("Failed to persist pipeline result",
			slog.String("correlation_id", result.Metadata.CorrelationID),
			slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) trimHistory(history []pipeline_type.ChatTurn) []pipeline_type.ChatTurn {
	if o.opts.MaxHistoryTurns > 0 && len(history) > o.opts.MaxHistoryTurns {
		return history[len(history)-o.opts.MaxHistoryTurns:]
	}
	return history
}

func ragPrompt(contextBlock, question string) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using the sources below. Cite the source number and page for every claim. If the sources don't contain the answer, say so.\n\nSources:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}
