package queue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSON Schemas enforced at the decode boundary. Optional fields are
// nullable; extra fields pass through so payloads can grow without a
// lockstep deploy.

const ocrJobSchema = `{
  "type": "object",
  "required": ["file_path"],
  "properties": {
    "version":   {"type": "integer", "minimum": 0},
    "type":      {"type": "string"},
    "file_path": {"type": "string", "minLength": 1},
    "timestamp": {"type": ["integer", "null"]},
    "user_id":   {"type": ["integer", "null"]},
    "folder_id": {"type": ["integer", "null"]}
  }
}`

const textJobSchema = `{
  "type": "object",
  "required": ["direct_text"],
  "properties": {
    "version":     {"type": "integer", "minimum": 0},
    "type":        {"type": "string"},
    "direct_text": {"type": "string"},
    "timestamp":   {"type": ["integer", "null"]},
    "user_id":     {"type": ["integer", "null"]},
    "folder_id":   {"type": ["integer", "null"]},
    "language":    {"type": "string"},
    "file_path":   {"type": "string"}
  }
}`

const storageJobSchema = `{
  "type": "object",
  "required": ["user_id", "ocr_text", "ai_response"],
  "properties": {
    "version":             {"type": "integer", "minimum": 0},
    "type":                {"type": "string"},
    "user_id":             {"type": "integer"},
    "folder_id":           {"type": ["integer", "null"]},
    "ocr_text":            {"type": "string"},
    "ai_response":         {"type": "string"},
    "image_path":          {"type": "string"},
    "ocr_confidence":      {"type": "number"},
    "ocr_language":        {"type": "string"},
    "ai_model":            {"type": "string"},
    "ai_tokens":           {"type": "integer"},
    "ocr_strategy":        {"type": "string"},
    "preprocessing_type":  {"type": "string"},
    "image_quality_score": {"type": "number"},
    "strategies_tried":    {"type": "integer"},
    "text_length":         {"type": "integer"},
    "word_count":          {"type": "integer"}
  }
}`

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
)

func compiled() map[string]*jsonschema.Schema {
	schemaOnce.Do(func() {
		schemas = make(map[string]*jsonschema.Schema, 3)
		for name, src := range map[string]string{
			ocrJobSchema:     ocrJobSchema,
			textJobSchema:    textJobSchema,
			storageJobSchema: storageJobSchema,
		} {
			sch, err := jsonschema.CompileString("job.json", src)
			if err != nil {
				// schemas are compile-time constants; failing here is
				// a programming error
				panic(fmt.Sprintf("compile job schema: %v", err))
			}
			schemas[name] = sch
		}
	})
	return schemas
}

func validatePayload(schemaSrc string, data []byte) error {
	sch := compiled()[schemaSrc]

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
