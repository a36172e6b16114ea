package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/capture-pipeline/internal/repository"
)

// Service is a tiny façade over the response repository that produces
// XLSX bytes for offline exports.
type Service struct {
	repo   repository.ResponseRepository
	logger *slog.Logger
}

func NewService(repo repository.ResponseRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportResponsesXLSX returns an XLSX workbook (as bytes) for one
// user's stored responses within an optional date window.
// If only from is provided -> from..today (inclusive).
func (s *Service) ExportResponsesXLSX(ctx context.Context, userID int64, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.repo.ListByUser(ctx, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Responses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Created At",
		"OCR Text",
		"AI Response",
		"Image Path",
		"Confidence",
		"Language",
		"Strategy",
		"Quality Score",
		"AI Model",
		"AI Tokens",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, r := range recs {
		row := rowIdx + 2
		values := []any{
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.OCRText,
			r.AIResponse,
			r.ImagePath,
			r.OCRConfidence,
			r.OCRLanguage,
			r.OCRStrategy,
			r.ImageQualityScore,
			r.AIModel,
			r.AITokens,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("exported responses",
		"user_id", userID,
		"rows", len(recs),
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
