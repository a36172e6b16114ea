package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/capture-pipeline/constants"
	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
	"github.com/joseph-ayodele/capture-pipeline/internal/repository"
)

// StorageStage consumes storage_queue and writes one record per job.
// It is the pipeline's only writer of durable state and produces no
// further message.
type StorageStage struct {
	repo   repository.ResponseRepository
	logger *slog.Logger
}

func NewStorageStage(repo repository.ResponseRepository, logger *slog.Logger) *StorageStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageStage{repo: repo, logger: logger}
}

func (s *StorageStage) Name() string  { return "storage" }
func (s *StorageStage) Queue() string { return constants.StorageQueue }

func (s *StorageStage) Handle(ctx context.Context, payload []byte) error {
	job, err := queue.DecodeStorageJob(payload)
	if err != nil {
		return err
	}
	if job.UserID == 0 {
		return fmt.Errorf("missing user_id in storage job")
	}

	id, err := s.repo.Insert(ctx, &repository.Response{
		UserID:            job.UserID,
		FolderID:          job.FolderID,
		OCRText:           job.OCRText,
		AIResponse:        job.AIResponse,
		ImagePath:         job.ImagePath,
		OCRConfidence:     job.OCRConfidence,
		OCRLanguage:       job.OCRLanguage,
		AIModel:           job.AIModel,
		AITokens:          job.AITokens,
		OCRStrategy:       job.OCRStrategy,
		PreprocessingType: job.PreprocessingType,
		ImageQualityScore: job.ImageQualityScore,
		StrategiesTried:   job.StrategiesTried,
		TextLength:        job.TextLength,
		WordCount:         job.WordCount,
	})
	if err != nil {
		return fmt.Errorf("store response: %w", err)
	}
	s.logger.Info("response stored", "response_id", id, "user_id", job.UserID)
	return nil
}
