package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/capture-pipeline/constants"
	"github.com/joseph-ayodele/capture-pipeline/internal/llm"
	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
)

// TextStage consumes text_analysis_queue: clipboard text skips OCR and
// goes straight to analysis.
type TextStage struct {
	analyzer llm.Analyzer
	out      queue.Queue
	logger   *slog.Logger
}

func NewTextStage(analyzer llm.Analyzer, out queue.Queue, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{analyzer: analyzer, out: out, logger: logger}
}

func (s *TextStage) Name() string  { return "text-analysis" }
func (s *TextStage) Queue() string { return constants.TextAnalysisQueue }

func (s *TextStage) Handle(ctx context.Context, payload []byte) error {
	job, err := queue.DecodeTextJob(payload)
	if err != nil {
		return err
	}

	text := job.DirectText
	if strings.TrimSpace(text) == "" {
		// empty-after-trim short-circuits before analysis; nothing is
		// published
		return fmt.Errorf("empty text content received")
	}

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("analyze text: %w", err)
	}

	userID := int64(constants.DefaultUserID)
	if job.UserID != nil {
		userID = *job.UserID
	}
	language := job.Language
	if language == "" {
		language = "auto"
	}

	// Direct text is trusted as-is: full confidence, no preprocessing.
	out := queue.StorageJob{
		UserID:            userID,
		FolderID:          job.FolderID,
		OCRText:           text,
		AIResponse:        analysis.Text,
		ImagePath:         job.FilePath,
		OCRConfidence:     100,
		OCRLanguage:       language,
		AIModel:           analysis.Model,
		AITokens:          analysis.Tokens,
		OCRStrategy:       "clipboard_text",
		PreprocessingType: "none",
		ImageQualityScore: 100,
		StrategiesTried:   1,
		TextLength:        len(text),
		WordCount:         len(strings.Fields(text)),
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
