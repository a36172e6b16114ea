package pipeline

import (
	"context"
	"testing"

	"github.com/joseph-ayodele/capture-pipeline/internal/queue"
	"github.com/joseph-ayodele/capture-pipeline/internal/repository"
)

func openTestStore(t *testing.T) *repository.SQLiteResponseRepository {
	t.Helper()
	repo, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestStorageStagePersistsJob(t *testing.T) {
	repo := openTestStore(t)
	stage := NewStorageStage(repo, nil)

	folderID := int64(3)
	payload, err := queue.EncodeStorageJob(queue.StorageJob{
		UserID:            5,
		FolderID:          &folderID,
		OCRText:           "Invoice #123",
		AIResponse:        "An invoice reference.",
		ImagePath:         "/captures/shot.png",
		OCRConfidence:     91.5,
		OCRLanguage:       "english",
		AIModel:           "gpt-3.5-turbo",
		AITokens:          120,
		OCRStrategy:       "document_text",
		PreprocessingType: "document",
		ImageQualityScore: 74.2,
		StrategiesTried:   8,
		TextLength:        12,
		WordCount:         2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := stage.Handle(context.Background(), payload); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.ListByUser(context.Background(), 5, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.OCRText != "Invoice #123" || r.AIResponse != "An invoice reference." {
		t.Errorf("text fields: %+v", r)
	}
	if r.FolderID == nil || *r.FolderID != 3 {
		t.Errorf("folder_id = %v", r.FolderID)
	}
	if r.OCRConfidence != 91.5 || r.StrategiesTried != 8 || r.WordCount != 2 {
		t.Errorf("metric fields: %+v", r)
	}
}

func TestStorageStageRejectsMissingUser(t *testing.T) {
	repo := openTestStore(t)
	stage := NewStorageStage(repo, nil)

	// user_id present but zero fails the stage's own guard
	payload := []byte(`{"user_id": 0, "ocr_text": "x", "ai_response": "y"}`)
	if err := stage.Handle(context.Background(), payload); err == nil {
		t.Fatal("want error for zero user_id")
	}

	rows, err := repo.ListByUser(context.Background(), 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("invalid job stored %d rows", len(rows))
	}
}

func TestStorageStageRejectsInvalidPayload(t *testing.T) {
	repo := openTestStore(t)
	stage := NewStorageStage(repo, nil)

	if err := stage.Handle(context.Background(), []byte(`{"ocr_text": "x"}`)); err == nil {
		t.Fatal("want schema error for payload missing required fields")
	}
}
