package repository

import (
	"context"
	"time"
)

// Response is one stored analysis record, the pipeline's only durable
// output.
type Response struct {
	ID                int64
	UserID            int64
	FolderID          *int64
	OCRText           string
	AIResponse        string
	ImagePath         string
	OCRConfidence     float64
	OCRLanguage       string
	AIModel           string
	AITokens          int
	OCRStrategy       string
	PreprocessingType string
	ImageQualityScore float64
	StrategiesTried   int
	TextLength        int
	WordCount         int
	CreatedAt         time.Time
}

// ResponseRepository is the persistence contract the storage stage and
// the exporter depend on.
type ResponseRepository interface {
	// Insert stores one response and returns its id.
	Insert(ctx context.Context, r *Response) (int64, error)

	// ListByUser returns a user's responses, newest first, optionally
	// bounded by creation time.
	ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]Response, error)
}
