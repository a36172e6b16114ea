package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/capture-pipeline/internal/ocr"
	"github.com/joseph-ayodele/capture-pipeline/internal/quality"
)

// runocr performs a one-shot extraction on a local image and prints
// the result as JSON. No queue, no DB, no AI call.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <image-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		logger.Error("load image", "path", path, "error", err)
		os.Exit(1)
	}

	engine := ocr.NewTesseract(ocr.TesseractConfig{
		Binary:      os.Getenv("TESSERACT_BIN"),
		TessdataDir: os.Getenv("TESSDATA_PREFIX"),
		Logger:      logger,
	})
	extractor := ocr.NewExtractor(engine, 4, logger)

	metrics := quality.Assess(img)
	candidates := extractor.ExtractAll(ctx, img, metrics)
	best := ocr.SelectBest(candidates)
	best.Text = ocr.PostProcess(best.Text)

	out := struct {
		File            string          `json:"file"`
		Quality         quality.Metrics `json:"quality"`
		StrategiesTried int             `json:"strategies_tried"`
		Best            ocr.BestResult  `json:"best"`
	}{
		File:            path,
		Quality:         metrics,
		StrategiesTried: len(candidates),
		Best:            best,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
