package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/capture-pipeline/internal/common"
	"github.com/joseph-ayodele/capture-pipeline/internal/llm"
	"github.com/joseph-ayodele/capture-pipeline/internal/ocr"
	"github.com/joseph-ayodele/capture-pipeline/internal/pipeline"
	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
	"github.com/joseph-ayodele/capture-pipeline/internal/repository"
)

// captured is the long-running pipeline daemon: it consumes all three
// queues concurrently and exposes a gRPC health endpoint for probes.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := queue.NewRedisQueue(cfg.Redis.URL)
	if err != nil {
		logger.Error("connect queue", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := transport.Close(); cerr != nil {
			logger.Error("close queue", "error", cerr)
		}
	}()
	if err := transport.Ping(ctx); err != nil {
		logger.Error("queue ping failed", "url", cfg.Redis.URL, "error", err)
		os.Exit(1)
	}
	logger.Info("queue transport OK", "url", cfg.Redis.URL)

	repo, closeRepo, err := repository.OpenResponseStore(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("open response store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	engine := ocr.NewTesseract(ocr.TesseractConfig{
		Binary:      cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		Logger:      logger,
	})
	extractor := ocr.NewExtractor(engine, cfg.OCR.Workers, logger)

	analyzer := buildAnalyzer(cfg, logger)

	stages := []*pipeline.Stage{
		pipeline.NewStage(pipeline.NewOCRStage(extractor, analyzer, transport, logger),
			transport, cfg.Redis.PopTimeout, cfg.Redis.Backoff, logger),
		pipeline.NewStage(pipeline.NewTextStage(analyzer, transport, logger),
			transport, cfg.Redis.PopTimeout, cfg.Redis.Backoff, logger),
		pipeline.NewStage(pipeline.NewStorageStage(repo, logger),
			transport, cfg.Redis.PopTimeout, cfg.Redis.Backoff, logger),
	}

	var wg sync.WaitGroup
	for _, st := range stages {
		wg.Add(1)
		go func(st *pipeline.Stage) {
			defer wg.Done()
			st.Run(ctx)
		}(st)
	}

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("health server serving", "addr", cfg.Server.GRPCAddr)
	go func() {
		if serr := grpcServer.Serve(lis); serr != nil {
			logger.Error("grpc serve", "error", serr)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()
	wg.Wait()
	logger.Info("stopped")
}

// buildAnalyzer picks Gemini as primary when configured, with OpenAI
// as fallback; otherwise OpenAI alone.
func buildAnalyzer(cfg *common.Config, logger *slog.Logger) llm.Analyzer {
	openai := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:      cfg.AI.OpenAIKey,
		BaseURL:     cfg.AI.OpenAIBaseURL,
		Model:       cfg.AI.OpenAIModel,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, logger)

	if cfg.AI.GeminiKey == "" {
		return llm.NewFallback(openai, nil, logger)
	}
	gemini := llm.NewGeminiClient(llm.GeminiConfig{
		APIKey:  cfg.AI.GeminiKey,
		Model:   cfg.AI.GeminiModel,
		Timeout: cfg.AI.Timeout,
	}, logger)
	if cfg.AI.OpenAIKey == "" {
		return llm.NewFallback(gemini, nil, logger)
	}
	return llm.NewFallback(gemini, openai, logger)
}
