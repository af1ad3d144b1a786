package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mentora/ragline/config"
	"github.com/mentora/ragline/db"
	"github.com/mentora/ragline/logging"
	"github.com/mentora/ragline/pipeline"
	"github.com/mentora/ragline/scheduler"
	"github.com/mentora/ragline/server"
	"github.com/mentora/ragline/services/chunk_service"
	"github.com/mentora/ragline/services/embedding_service"
	"github.com/mentora/ragline/services/ingest_service"
	"github.com/mentora/ragline/services/llm_service"
	"github.com/mentora/ragline/services/query_classifier"
	"github.com/mentora/ragline/services/vector_store"
	"github.com/urfave/negroni"
)

const classifierFastPathMaxTokens = 4

func main() {
	cfg := config.Load()

	handler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{Level: slog.LevelInfo})
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer pool.Close()

	embedder := embedding_service.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbedTimeout, logger)
	llm := llm_service.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.GenerateTimeout, logger)
	store := vector_store.NewPgStore(pool, vector_store.NewCollectionCache(), logger)
	classifier := query_classifier.New(llm, classifierFastPathMaxTokens, logger)
	chunker := chunk_service.NewChunker(cfg.ChunkTokenBudget, cfg.OverlapTokenBudget, logger)
	processor := ingest_service.NewProcessor(chunker, embedder, store, logger)

	orchestrator := pipeline.NewOrchestrator(classifier, embedder, store, llm, pipeline.Options{
		RetrieveTopK:    cfg.RetrieveTopK,
		RerankTopK:      cfg.RerankTopK,
		ScoreFloor:      cfg.RerankScoreFloor,
		MaxHistoryTurns: cfg.MaxHistoryTurns,
	}, logger).WithKeywordExtractor(llm_service.NewKeywordService(llm))

	maintainer := scheduler.NewIndexMaintainer(pool, cfg.IndexMaintenanceInterval, logger)
	go maintainer.Start(context.Background())

	r := server.SetupRoutes(orchestrator, processor, store, logger)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 2 * time.Minute,
		}
		logger.Info("Starting development server", slog.String("port", cfg.HTTPPort))
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(r)
	return n
}
