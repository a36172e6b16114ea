package queue

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/capture-pipeline/constants"
)

// The three job shapes are the pipeline's wire contract. Each carries
// a version and a type discriminant so stage deployments can evolve
// independently and misrouted messages fail decoding deterministically.

// OCRJob references a captured image awaiting extraction.
type OCRJob struct {
	Version   int    `json:"version"`
	Type      string `json:"type"`
	FilePath  string `json:"file_path"`
	Timestamp *int64 `json:"timestamp"`
	UserID    *int64 `json:"user_id"`
	FolderID  *int64 `json:"folder_id"`
}

// TextJob carries already-extracted text that skips OCR.
type TextJob struct {
	Version    int    `json:"version"`
	Type       string `json:"type"`
	DirectText string `json:"direct_text"`
	Timestamp  *int64 `json:"timestamp"`
	UserID     *int64 `json:"user_id"`
	FolderID   *int64 `json:"folder_id"`
	Language   string `json:"language"`
	FilePath   string `json:"file_path"`
}

// StorageJob is the fully-analyzed record awaiting persistence.
type StorageJob struct {
	Version           int     `json:"version"`
	Type              string  `json:"type"`
	UserID            int64   `json:"user_id"`
	FolderID          *int64  `json:"folder_id"`
	OCRText           string  `json:"ocr_text"`
	AIResponse        string  `json:"ai_response"`
	ImagePath         string  `json:"image_path"`
	OCRConfidence     float64 `json:"ocr_confidence"`
	OCRLanguage       string  `json:"ocr_language"`
	AIModel           string  `json:"ai_model"`
	AITokens          int     `json:"ai_tokens"`
	OCRStrategy       string  `json:"ocr_strategy"`
	PreprocessingType string  `json:"preprocessing_type"`
	ImageQualityScore float64 `json:"image_quality_score"`
	StrategiesTried   int     `json:"strategies_tried"`
	TextLength        int     `json:"text_length"`
	WordCount         int     `json:"word_count"`
}

// EncodeOCRJob stamps version/type and marshals.
func EncodeOCRJob(j OCRJob) ([]byte, error) {
	j.Version = constants.SchemaVersion
	j.Type = constants.JobTypeOCR
	return json.Marshal(j)
}

// EncodeTextJob stamps version/type and marshals.
func EncodeTextJob(j TextJob) ([]byte, error) {
	j.Version = constants.SchemaVersion
	j.Type = constants.JobTypeText
	return json.Marshal(j)
}

// EncodeStorageJob stamps version/type and marshals.
func EncodeStorageJob(j StorageJob) ([]byte, error) {
	j.Version = constants.SchemaVersion
	j.Type = constants.JobTypeStorage
	return json.Marshal(j)
}

// DecodeOCRJob validates and decodes an ocr_queue payload.
func DecodeOCRJob(data []byte) (OCRJob, error) {
	var j OCRJob
	if err := decode(data, ocrJobSchema, constants.JobTypeOCR, &j); err != nil {
		return OCRJob{}, err
	}
	return j, nil
}

// DecodeTextJob validates and decodes a text_analysis_queue payload.
func DecodeTextJob(data []byte) (TextJob, error) {
	var j TextJob
	if err := decode(data, textJobSchema, constants.JobTypeText, &j); err != nil {
		return TextJob{}, err
	}
	return j, nil
}

// DecodeStorageJob validates and decodes a storage_queue payload.
func DecodeStorageJob(data []byte) (StorageJob, error) {
	var j StorageJob
	if err := decode(data, storageJobSchema, constants.JobTypeStorage, &j); err != nil {
		return StorageJob{}, err
	}
	return j, nil
}

func decode(data []byte, schemaName, wantType string, out any) error {
	if err := validatePayload(schemaName, data); err != nil {
		return fmt.Errorf("invalid %s payload: %w", wantType, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", wantType, err)
	}
	// a missing type field is tolerated for pre-versioning producers;
	// a mismatched one is a routing bug and drops the message
	type typed struct {
		Type string `json:"type"`
	}
	var tt typed
	if err := json.Unmarshal(data, &tt); err == nil && tt.Type != "" && tt.Type != wantType {
		return fmt.Errorf("payload type %q does not match expected %q", tt.Type, wantType)
	}
	return nil
}
