// Package constants holds the shared vocabulary of the pipeline:
// queue names, job types, the language catalog, and intake limits.
package constants

// Queue names. Producers push to the head, stages pop from the tail,
// so each queue behaves FIFO.
const (
	OCRQueue          = "ocr_queue"
	TextAnalysisQueue = "text_analysis_queue"
	StorageQueue      = "storage_queue"
)

// Job type discriminants carried in every payload.
const (
	JobTypeOCR     = "ocr"
	JobTypeText    = "text"
	JobTypeStorage = "storage"
)

// SchemaVersion is stamped into every encoded job.
const SchemaVersion = 1

// DefaultUserID is assigned when a job arrives without one.
const DefaultUserID = 1
