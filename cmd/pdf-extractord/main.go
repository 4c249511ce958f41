package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pdftext"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/pipeline"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/prompts"
	repo "github.com/joseph-ayodele/pdf-data-extractor/internal/repository"
	svc "github.com/joseph-ayodele/pdf-data-extractor/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{DSN: cfg.Database.DSN, DialTimeout: 3 * time.Second}, logger)
	if err != nil {
		logger.Error("failed to open session store", "error", err, "db_url", cfg.Database.DSN)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	if err := repo.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping session store", "error", err)
		os.Exit(1)
	}
	ping := func(ctx context.Context) error {
		return repo.HealthCheck(ctx, db, 2*time.Second, logger)
	}

	var seed []prompts.ExtractionPrompt
	if path := cfg.Extraction.PromptsFile; path != "" {
		seed, err = prompts.LoadFile(path)
		if err != nil {
			logger.Error("failed to load prompts file", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("prompts preset loaded", "path", path, "count", len(seed))
	}

	sessionsRepo := repo.NewSessionRepository(db, logger)
	jobsRepo := repo.NewExtractJobRepository(db, logger)

	openaiClient := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	textExtractor := pdftext.NewExtractor(pdftext.Config{
		TempDir: cfg.Extraction.TempDir,
		Repair:  cfg.Extraction.RepairPDFs,
	}, logger)
	llmPipe := pipeline.NewPipeline(pipeline.Config{
		MaxTextChars: cfg.Extraction.MaxTextChars,
		ResponseMode: cfg.LLM.ResponseMode,
	}, openaiClient, logger)

	// Orchestrator
	processor := pipeline.NewProcessor(logger, textExtractor, llmPipe, jobsRepo, cfg.Extraction.Concurrency)

	api := svc.New(svc.Deps{
		Sessions:  sessionsRepo,
		Jobs:      jobsRepo,
		Processor: processor,
		Seed:      seed,
		Ping:      ping,
	}, svc.Options{
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("pdf-extractord listening", "addr", cfg.Server.HTTPAddr,
			"llm_base_url", cfg.LLM.BaseURL, "model", cfg.LLM.Model, "response_mode", cfg.LLM.ResponseMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	// gRPC health service, only when an address is configured
	var healthServer *svc.HealthServer
	if addr := cfg.Server.GRPCHealthAddr; addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", addr, "error", err)
			os.Exit(1)
		}
		healthServer = svc.NewHealthServer(ping, logger)
		go healthServer.Watch(ctx, 10*time.Second)
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("gRPC serve error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	if healthServer != nil {
		healthServer.Stop()
	}
}
