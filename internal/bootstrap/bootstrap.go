package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/legalmind/legalmind/internal/config"
	"github.com/legalmind/legalmind/internal/core/ports"
	"github.com/legalmind/legalmind/internal/core/usecase"
	"github.com/legalmind/legalmind/internal/infrastructure/chunking"
	"github.com/legalmind/legalmind/internal/infrastructure/index"
	"github.com/legalmind/legalmind/internal/infrastructure/llm/ollama"
	"github.com/legalmind/legalmind/internal/infrastructure/loader"
	"github.com/legalmind/legalmind/internal/infrastructure/queue/nats"
	"github.com/legalmind/legalmind/internal/infrastructure/repository/postgres"
	"github.com/legalmind/legalmind/internal/infrastructure/rerank"
	"github.com/legalmind/legalmind/internal/infrastructure/resilience"
	"github.com/legalmind/legalmind/internal/infrastructure/storage/localfs"
	"github.com/legalmind/legalmind/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	Retriever ports.Retriever

	closeFn func()
}

// Hooks are optional observability callbacks wired into the pipeline
// components. The zero value disables all of them.
type Hooks struct {
	OnLexicalRebuild    func()
	OnExpansionFallback func(stage string)
	OnRerankFallback    func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks Hooks) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	parents := postgres.NewChunkRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		RequestsPerMinute:  cfg.OllamaRPM,
		ResilienceExecutor: executor,
	})
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectors := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	lexical := index.NewManager(vectors, logger)
	if hooks.OnLexicalRebuild != nil {
		lexical.SetRebuildHook(hooks.OnLexicalRebuild)
	}

	chunker := chunking.NewHierarchicalChunker(chunking.Params{
		ChildSize:    cfg.ChildChunkSize,
		ChildOverlap: cfg.ChildChunkOverlap,
	})
	docLoader := loader.New(storage)

	hybrid := usecase.NewHybridSearch(embedder, vectors, lexical, cfg.FusionAlpha, logger)
	expander := usecase.NewQueryExpander(generator, logger)
	if hooks.OnExpansionFallback != nil {
		expander.SetFallbackHook(hooks.OnExpansionFallback)
	}

	var reranker *usecase.Reranker
	if cfg.RerankEnabled {
		reranker = usecase.NewReranker(rerank.NewLexicalScorer(), logger)
		if hooks.OnRerankFallback != nil {
			reranker.SetFallbackHook(hooks.OnRerankFallback)
		}
	}

	retrieveUC := usecase.NewRetrieveUseCase(hybrid, expander, reranker, parents, vectors, usecase.RetrieveConfig{
		TopK:               cfg.RetrievalTopK,
		TranslationEnabled: cfg.TranslationEnabled,
	}, logger)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, docLoader, chunker, embedder, vectors, parents, lexical, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,
		Repo:  repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		Retriever: retrieveUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
