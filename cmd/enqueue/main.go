package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/capture-pipeline/constants"
	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
)

// enqueue submits a single job to the pipeline: an image file onto
// ocr_queue, or direct text onto text_analysis_queue.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		file   = flag.String("file", "", "image file to OCR")
		text   = flag.String("text", "", "direct text to analyze (skips OCR)")
		user   = flag.Int64("user", 0, "user id (0 -> server default)")
		folder = flag.Int64("folder", 0, "folder id (0 -> none)")
		lang   = flag.String("lang", "", "language hint for direct text")
	)
	flag.Parse()

	if (*file == "") == (*text == "") {
		logger.Error("exactly one of -file or -text is required")
		os.Exit(2)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	transport, err := queue.NewRedisQueue(redisURL)
	if err != nil {
		logger.Error("connect queue", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var userID, folderID *int64
	if *user > 0 {
		userID = user
	}
	if *folder > 0 {
		folderID = folder
	}

	switch {
	case *file != "":
		abs, err := filepath.Abs(*file)
		if err != nil {
			logger.Error("resolve path", "file", *file, "error", err)
			os.Exit(1)
		}
		if !constants.IsImageExt(filepath.Ext(abs)) {
			logger.Error("unsupported file extension", "file", abs)
			os.Exit(2)
		}
		if _, err := os.Stat(abs); err != nil {
			logger.Error("stat file", "file", abs, "error", err)
			os.Exit(1)
		}
		ts := time.Now().Unix()
		payload, err := queue.EncodeOCRJob(queue.OCRJob{
			FilePath:  abs,
			Timestamp: &ts,
			UserID:    userID,
			FolderID:  folderID,
		})
		if err != nil {
			logger.Error("encode job", "error", err)
			os.Exit(1)
		}
		if err := transport.Push(ctx, constants.OCRQueue, payload); err != nil {
			logger.Error("push job", "queue", constants.OCRQueue, "error", err)
			os.Exit(1)
		}
		logger.Info("job enqueued", "queue", constants.OCRQueue, "file", abs)

	case *text != "":
		ts := time.Now().Unix()
		payload, err := queue.EncodeTextJob(queue.TextJob{
			DirectText: *text,
			Timestamp:  &ts,
			UserID:     userID,
			FolderID:   folderID,
			Language:   *lang,
		})
		if err != nil {
			logger.Error("encode job", "error", err)
			os.Exit(1)
		}
		if err := transport.Push(ctx, constants.TextAnalysisQueue, payload); err != nil {
			logger.Error("push job", "queue", constants.TextAnalysisQueue, "error", err)
			os.Exit(1)
		}
		logger.Info("job enqueued", "queue", constants.TextAnalysisQueue, "chars", len(*text))
	}
}
