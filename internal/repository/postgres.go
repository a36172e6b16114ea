package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/capture-pipeline/internal/common"
)

// PostgresResponseRepository persists responses through the shared
// pgx pool.
type PostgresResponseRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresResponseRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresResponseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresResponseRepository{pool: pool, logger: logger}
}

const insertResponseSQL = `
INSERT INTO responses (
    user_id, folder_id, ocr_text, ai_response, image_path,
    ocr_confidence, ocr_language, ai_model, ai_tokens,
    ocr_strategy, preprocessing_type, image_quality_score,
    strategies_tried, text_length, word_count
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id`

func (r *PostgresResponseRepository) Insert(ctx context.Context, resp *Response) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertResponseSQL,
		resp.UserID, resp.FolderID, resp.OCRText, resp.AIResponse, resp.ImagePath,
		resp.OCRConfidence, resp.OCRLanguage, resp.AIModel, resp.AITokens,
		resp.OCRStrategy, resp.PreprocessingType, resp.ImageQualityScore,
		resp.StrategiesTried, resp.TextLength, resp.WordCount,
	).Scan(&id)
	if err != nil {
		return 0, common.WrapError(err, "insert response")
	}
	r.logger.Info("stored response", "response_id", id, "user_id", resp.UserID)
	return id, nil
}

func (r *PostgresResponseRepository) ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]Response, error) {
	query := `
SELECT id, user_id, folder_id, ocr_text, ai_response, image_path,
       ocr_confidence, ocr_language, ai_model, ai_tokens,
       ocr_strategy, preprocessing_type, image_quality_score,
       strategies_tried, text_length, word_count, created_at
FROM responses
WHERE user_id = $1`
	args := []any{userID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "query responses")
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var resp Response
		if err := rows.Scan(
			&resp.ID, &resp.UserID, &resp.FolderID, &resp.OCRText, &resp.AIResponse, &resp.ImagePath,
			&resp.OCRConfidence, &resp.OCRLanguage, &resp.AIModel, &resp.AITokens,
			&resp.OCRStrategy, &resp.PreprocessingType, &resp.ImageQualityScore,
			&resp.StrategiesTried, &resp.TextLength, &resp.WordCount, &resp.CreatedAt,
		); err != nil {
			return nil, common.WrapError(err, "scan response")
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}
