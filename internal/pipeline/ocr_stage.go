package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/capture-pipeline/constants"
	"github.com/joseph-ayodele/capture-pipeline/internal/llm"
	"github.com/joseph-ayodele/capture-pipeline/internal/ocr"
	"github.com/joseph-ayodele/capture-pipeline/internal/quality"
	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
)

// OCRStage consumes ocr_queue: load image, assess quality, fan out
// extraction, score, post-process, analyze, publish a storage job.
type OCRStage struct {
	extractor *ocr.Extractor
	analyzer  llm.Analyzer
	out       queue.Queue
	logger    *slog.Logger
}

func NewOCRStage(extractor *ocr.Extractor, analyzer llm.Analyzer, out queue.Queue, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{extractor: extractor, analyzer: analyzer, out: out, logger: logger}
}

func (s *OCRStage) Name() string  { return "ocr" }
func (s *OCRStage) Queue() string { return constants.OCRQueue }

func (s *OCRStage) Handle(ctx context.Context, payload []byte) error {
	job, err := queue.DecodeOCRJob(payload)
	if err != nil {
		return err
	}

	img, err := imaging.Open(job.FilePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("load image %s: %w", job.FilePath, err)
	}

	metrics := quality.Assess(img)
	s.logger.Info("image quality assessed",
		"file", job.FilePath,
		"overall", metrics.OverallScore,
		"sharpness", metrics.Sharpness,
		"text_density", metrics.TextDensity,
	)

	candidates := s.extractor.ExtractAll(ctx, img, metrics)
	best := ocr.SelectBest(candidates)
	best.Text = ocr.PostProcess(best.Text)

	s.logger.Info("selected best result",
		"strategy", best.Strategy,
		"language", best.Language,
		"confidence", best.Confidence,
		"score", best.Score,
		"candidates", len(candidates),
	)

	// An empty transcription is still a recorded outcome; the job
	// proceeds to analysis and storage either way.
	analysis, err := s.analyzer.Analyze(ctx, best.Text)
	if err != nil {
		return fmt.Errorf("analyze text: %w", err)
	}

	userID := int64(constants.DefaultUserID)
	if job.UserID != nil {
		userID = *job.UserID
	}

	out := queue.StorageJob{
		UserID:            userID,
		FolderID:          job.FolderID,
		OCRText:           best.Text,
		AIResponse:        analysis.Text,
		ImagePath:         job.FilePath,
		OCRConfidence:     best.Confidence,
		OCRLanguage:       best.Language,
		AIModel:           analysis.Model,
		AITokens:          analysis.Tokens,
		OCRStrategy:       best.Strategy,
		PreprocessingType: best.Preprocessing,
		ImageQualityScore: metrics.OverallScore,
		StrategiesTried:   len(candidates),
		TextLength:        len(best.Text),
		WordCount:         len(strings.Fields(best.Text)),
	}
	data, err := queue.EncodeStorageJob(out)
	if err != nil {
		return fmt.Errorf("encode storage job: %w", err)
	}
	if err := s.out.Push(ctx, constants.StorageQueue, data); err != nil {
		return fmt.Errorf("publish storage job: %w", err)
	}
	return nil
}
