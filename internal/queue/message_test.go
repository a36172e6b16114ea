package queue

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/capture-pipeline/constants"
)

func int64p(v int64) *int64 { return &v }

func TestOCRJobRoundTrip(t *testing.T) {
	in := OCRJob{
		FilePath:  "/captures/shot.png",
		Timestamp: int64p(1724500000),
		UserID:    int64p(7),
		FolderID:  int64p(3),
	}
	data, err := EncodeOCRJob(in)
	if err != nil {
		t.Fatal(err)
	}

	out, err := DecodeOCRJob(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.Version != constants.SchemaVersion || out.Type != constants.JobTypeOCR {
		t.Errorf("version/type not stamped: %+v", out)
	}
	if out.FilePath != in.FilePath || *out.UserID != 7 || *out.FolderID != 3 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestOCRJobOptionalFieldsNull(t *testing.T) {
	data, err := EncodeOCRJob(OCRJob{FilePath: "/captures/shot.png"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"user_id":null`) {
		t.Errorf("optional fields should serialize as null: %s", data)
	}
	out, err := DecodeOCRJob(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.UserID != nil || out.FolderID != nil || out.Timestamp != nil {
		t.Errorf("null fields decoded non-nil: %+v", out)
	}
}

func TestStorageJobRoundTrip(t *testing.T) {
	in := StorageJob{
		UserID:            1,
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
	}
	data, err := EncodeStorageJob(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeStorageJob(data)
	if err != nil {
		t.Fatal(err)
	}
	in.Version = constants.SchemaVersion
	in.Type = constants.JobTypeStorage
	if out != in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestDecodeRejectsMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		decode  func([]byte) error
	}{
		{
			name:    "ocr job without file_path",
			payload: `{"user_id": 1}`,
			decode:  func(b []byte) error { _, err := DecodeOCRJob(b); return err },
		},
		{
			name:    "ocr job with empty file_path",
			payload: `{"file_path": ""}`,
			decode:  func(b []byte) error { _, err := DecodeOCRJob(b); return err },
		},
		{
			name:    "text job without direct_text",
			payload: `{"language": "english"}`,
			decode:  func(b []byte) error { _, err := DecodeTextJob(b); return err },
		},
		{
			name:    "storage job without user_id",
			payload: `{"ocr_text": "x", "ai_response": "y"}`,
			decode:  func(b []byte) error { _, err := DecodeStorageJob(b); return err },
		},
		{
			name:    "not json at all",
			payload: `!!garbage!!`,
			decode:  func(b []byte) error { _, err := DecodeOCRJob(b); return err },
		},
		{
			name:    "wrong field type",
			payload: `{"file_path": 42}`,
			decode:  func(b []byte) error { _, err := DecodeOCRJob(b); return err },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.decode([]byte(tc.payload)); err == nil {
				t.Errorf("decode accepted %s", tc.payload)
			}
		})
	}
}

func TestDecodeRejectsMismatchedType(t *testing.T) {
	data, err := EncodeTextJob(TextJob{DirectText: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	// text payload misrouted to the OCR decoder still fails the
	// file_path requirement; craft one that passes the schema instead
	misrouted := []byte(`{"type": "storage", "file_path": "/x.png"}`)
	if _, err := DecodeOCRJob(misrouted); err == nil {
		t.Error("decoder accepted a payload with a foreign type tag")
	}
	if _, err := DecodeTextJob(data); err != nil {
		t.Errorf("matching type rejected: %v", err)
	}
}

func TestDecodeToleratesMissingType(t *testing.T) {
	// producers that predate the version field send no type at all
	legacy := []byte(`{"file_path": "/captures/old.png", "user_id": 2}`)
	job, err := DecodeOCRJob(legacy)
	if err != nil {
		t.Fatalf("legacy payload rejected: %v", err)
	}
	if job.FilePath != "/captures/old.png" || *job.UserID != 2 {
		t.Errorf("legacy payload mangled: %+v", job)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	payload := []byte(`{"direct_text": "hi", "future_field": {"nested": true}}`)
	if _, err := DecodeTextJob(payload); err != nil {
		t.Errorf("unknown field rejected: %v", err)
	}
}
