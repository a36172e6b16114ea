package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/capture-pipeline/internal/common"
)

// SQLiteResponseRepository backs local runs and tests with an embedded
// database; same contract as the Postgres sink.
type SQLiteResponseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS responses (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id             INTEGER NOT NULL,
    folder_id           INTEGER,
    ocr_text            TEXT NOT NULL DEFAULT '',
    ai_response         TEXT NOT NULL DEFAULT '',
    image_path          TEXT NOT NULL DEFAULT '',
    ocr_confidence      REAL NOT NULL DEFAULT 0,
    ocr_language        TEXT NOT NULL DEFAULT 'unknown',
    ai_model            TEXT NOT NULL DEFAULT 'unknown',
    ai_tokens           INTEGER NOT NULL DEFAULT 0,
    ocr_strategy        TEXT NOT NULL DEFAULT '',
    preprocessing_type  TEXT NOT NULL DEFAULT '',
    image_quality_score REAL NOT NULL DEFAULT 0,
    strategies_tried    INTEGER NOT NULL DEFAULT 0,
    text_length         INTEGER NOT NULL DEFAULT 0,
    word_count          INTEGER NOT NULL DEFAULT 0,
    created_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_responses_user_created
    ON responses (user_id, created_at);`

// OpenSQLite opens (creating if needed) a sqlite database at path and
// ensures the responses table exists. ":memory:" works for tests.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteResponseRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite is single-writer
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	logger.Info("sqlite response store ready", "path", path)
	return &SQLiteResponseRepository{db: db, logger: logger}, nil
}

func (r *SQLiteResponseRepository) Insert(ctx context.Context, resp *Response) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO responses (
    user_id, folder_id, ocr_text, ai_response, image_path,
    ocr_confidence, ocr_language, ai_model, ai_tokens,
    ocr_strategy, preprocessing_type, image_quality_score,
    strategies_tried, text_length, word_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.UserID, resp.FolderID, resp.OCRText, resp.AIResponse, resp.ImagePath,
		resp.OCRConfidence, resp.OCRLanguage, resp.AIModel, resp.AITokens,
		resp.OCRStrategy, resp.PreprocessingType, resp.ImageQualityScore,
		resp.StrategiesTried, resp.TextLength, resp.WordCount,
	)
	if err != nil {
		return 0, common.WrapError(err, "insert response")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, common.WrapError(err, "last insert id")
	}
	r.logger.Info("stored response", "response_id", id, "user_id", resp.UserID)
	return id, nil
}

func (r *SQLiteResponseRepository) ListByUser(ctx context.Context, userID int64, from, to *time.Time) ([]Response, error) {
	query := `
SELECT id, user_id, folder_id, ocr_text, ai_response, image_path,
       ocr_confidence, ocr_language, ai_model, ai_tokens,
       ocr_strategy, preprocessing_type, image_quality_score,
       strategies_tried, text_length, word_count, created_at
FROM responses
WHERE user_id = ?`
	args := []any{userID}
	if from != nil {
		query += " AND created_at >= ?"
		args = append(args, *from)
	}
	if to != nil {
		query += " AND created_at <= ?"
		args = append(args, *to)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *SQLiteResponseRepository) Close() error {
	return r.db.Close()
}
