package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bookchat/features/ask"
	"bookchat/features/auth"
	featingest "bookchat/features/ingest"
	"bookchat/features/stats"
	wstore "bookchat/internal/adapter/weaviate"
	"bookchat/internal/chat"
	"bookchat/internal/config"
	"bookchat/internal/extract"
	"bookchat/internal/index"
	"bookchat/internal/ingest"
	"bookchat/internal/middleware"
	"bookchat/internal/retrieval"
	"bookchat/internal/text"
	"bookchat/internal/worker"
)

type App struct {
	Handler http.Handler
	Port    int

	AuthService    *auth.Service
	IngestConsumer *worker.IngestConsumer
	ResultConsumer *worker.ResultConsumer
}

func New(cfg *config.Config, deps *Dependencies) (*App, error) {
	// Index: Weaviate backend + Gemini embedder behind one store handle,
	// shared by ingestion and retrieval.
	backend := wstore.NewStore(deps.Weaviate)
	store := index.NewStore(deps.Gemini, backend)

	// Ingestion pipeline
	splitter := text.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	pipeline := ingest.NewPipeline(extract.NewPDFExtractor(), store, splitter,
		cfg.IngestBatchSize, cfg.ExtractConcurrency)

	// Retrieval
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retriever := retrieval.NewService(store, cfg.RetrieveTopK, queryLogger)

	// Answer composition
	prompt, err := chat.NewPrompt(cfg.PromptPath, cfg.OutOfContextReply)
	if err != nil {
		return nil, err
	}
	memory := chat.NewMemory(cfg.HistoryLimit)
	composer := chat.NewComposer(retriever, deps.Gemini, memory, prompt,
		time.Duration(cfg.GenerationTimeout)*time.Second)

	// Feature: Auth
	authRepo := auth.NewPostgresRepo(deps.DB)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(authService)

	// Feature: Ask
	askRepo := ask.NewPostgresRepo(deps.DB)
	askService := ask.NewService(composer, askRepo)
	askHandler := ask.NewHandler(askService)

	// Feature: Ingest
	ingestRepo := featingest.NewPostgresRepo(deps.DB)
	ingestService := featingest.NewService(ingestRepo, deps.NSQProducer)
	ingestHandler := featingest.NewHandler(ingestService, cfg.PDFDir)

	// Feature: Stats
	statsHandler := stats.NewHandler(backend, askRepo)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /signup", middleware.CorrelationID(enableCORS(authHandler.Signup)))
	mux.Handle("POST /login", middleware.CorrelationID(enableCORS(authHandler.Login)))

	mux.Handle("POST /ask", middleware.CorrelationID(enableCORS(authHandler.RequireAuth(askHandler.Ask))))
	mux.Handle("GET /history", middleware.CorrelationID(enableCORS(authHandler.RequireAuth(askHandler.History))))

	mux.Handle("POST /ingest", middleware.CorrelationID(enableCORS(authHandler.RequireAdmin(ingestHandler.Trigger))))
	mux.Handle("GET /ingest/runs", middleware.CorrelationID(enableCORS(authHandler.RequireAuth(ingestHandler.ListRuns))))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Workers
	ingestConsumer := worker.NewIngestConsumer(pipeline, deps.NSQProducer)
	resultConsumer := worker.NewResultConsumer(ingestService)

	return &App{
		Handler:        mux,
		Port:           cfg.ServerPort,
		AuthService:    authService,
		IngestConsumer: ingestConsumer,
		ResultConsumer: resultConsumer,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
