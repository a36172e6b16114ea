package ocr

import (
	"context"
	"image"
)

// EngineConfig carries the per-strategy tesseract knobs.
type EngineConfig struct {
	PSM         int    // page segmentation mode
	OEM         int    // engine mode; 0 leaves the default
	Whitelist   string // tessedit_char_whitelist, empty for none
	TessdataDir string
}

// Engine is the OCR capability the extractor runs against. Two calls
// per combination: Text for the transcription, MeanConfidence for the
// mean per-word confidence in 0..100 (0 when no word is positive).
// Implementations must be safe for concurrent invocation.
type Engine interface {
	Text(ctx context.Context, img *image.Gray, langCode string, cfg EngineConfig) (string, error)
	MeanConfidence(ctx context.Context, img *image.Gray, langCode string, cfg EngineConfig) (float64, error)
}
