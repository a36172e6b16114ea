package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/capture-pipeline/internal/common"
	"github.com/joseph-ayodele/capture-pipeline/internal/export"
	"github.com/joseph-ayodele/capture-pipeline/internal/repository"
)

// exportxlsx writes one user's stored responses to an XLSX file.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		user = flag.Int64("user", 1, "user id")
		from = flag.String("from", "", "start date (YYYY-MM-DD)")
		to   = flag.String("to", "", "end date (YYYY-MM-DD)")
		out  = flag.String("o", "responses.xlsx", "output file")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(2)
	}

	var fromT, toT *time.Time
	if *from != "" {
		t, err := time.Parse("2006-01-02", *from)
		if err != nil {
			logger.Error("invalid -from date", "value", *from, "error", err)
			os.Exit(2)
		}
		fromT = &t
	}
	if *to != "" {
		t, err := time.Parse("2006-01-02", *to)
		if err != nil {
			logger.Error("invalid -to date", "value", *to, "error", err)
			os.Exit(2)
		}
		toT = &t
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, closeRepo, err := repository.OpenResponseStore(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open response store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	svc := export.NewService(repo, logger)
	data, err := svc.ExportResponsesXLSX(ctx, *user, fromT, toT)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("write file", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(data))
}
