package repository

import (
	"context"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *SQLiteResponseRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), ":memory:", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleResponse(userID int64, text string) *Response {
	return &Response{
		UserID:            userID,
		OCRText:           text,
		AIResponse:        "analysis",
		ImagePath:         "/captures/a.png",
		OCRConfidence:     80,
		OCRLanguage:       "english",
		AIModel:           "gpt-3.5-turbo",
		AITokens:          50,
		OCRStrategy:       "document_text",
		PreprocessingType: "document",
		ImageQualityScore: 66,
		StrategiesTried:   4,
		TextLength:        len(text),
		WordCount:         1,
	}
}

func TestSQLiteInsertAndList(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	id1, err := repo.Insert(ctx, sampleResponse(1, "first"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := repo.Insert(ctx, sampleResponse(1, "second"))
	if err != nil {
		t.Fatal(err)
	}
	if id2 <= id1 {
		t.Errorf("ids not increasing: %d then %d", id1, id2)
	}

	rows, err := repo.ListByUser(ctx, 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, r := range rows {
		if r.UserID != 1 || r.CreatedAt.IsZero() {
			t.Errorf("row fields: %+v", r)
		}
	}
}

func TestSQLiteListFiltersByUser(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, sampleResponse(1, "mine")); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Insert(ctx, sampleResponse(2, "theirs")); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.ListByUser(ctx, 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].OCRText != "mine" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSQLiteListDateWindow(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, sampleResponse(1, "now")); err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-24 * time.Hour).UTC()
	future := time.Now().Add(24 * time.Hour).UTC()

	rows, err := repo.ListByUser(ctx, 1, &past, &future)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("window containing now returned %d rows", len(rows))
	}

	rows, err = repo.ListByUser(ctx, 1, nil, &past)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("window ending yesterday returned %d rows", len(rows))
	}
}

func TestSQLiteNullableFolder(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	noFolder := sampleResponse(1, "loose")
	if _, err := repo.Insert(ctx, noFolder); err != nil {
		t.Fatal(err)
	}

	folderID := int64(9)
	withFolder := sampleResponse(1, "filed")
	withFolder.FolderID = &folderID
	if _, err := repo.Insert(ctx, withFolder); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.ListByUser(ctx, 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var sawNil, sawSet bool
	for _, r := range rows {
		if r.FolderID == nil {
			sawNil = true
		} else if *r.FolderID == 9 {
			sawSet = true
		}
	}
	if !sawNil || !sawSet {
		t.Errorf("folder_id round trip failed: nil=%v set=%v", sawNil, sawSet)
	}
}
