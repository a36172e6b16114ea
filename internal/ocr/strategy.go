package ocr

import (
	"github.com/joseph-ayodele/capture-pipeline/internal/preprocess"
	"github.com/joseph-ayodele/capture-pipeline/internal/quality"
)

// Strategy names a preprocessing chain plus the tesseract
// configuration it pairs with. Strategies are static configuration;
// nothing mutates them at runtime.
type Strategy struct {
	Name        string
	Kind        preprocess.Kind
	Config      EngineConfig
	Description string
}

// Catalog entry names. Selection references these symbolically, never
// by position.
const (
	StrategyDocumentText    = "document_text"
	StrategyScreenshotMixed = "screenshot_mixed"
	StrategySingleLine      = "single_line"
	StrategyWebContent      = "web_content"
	StrategyDenseText       = "dense_text"
)

const asciiWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// catalog is the fixed set of shipped strategies, keyed by name.
var catalog = map[string]Strategy{
	StrategyDocumentText: {
		Name:        StrategyDocumentText,
		Kind:        preprocess.KindDocument,
		Config:      EngineConfig{PSM: 6, OEM: 3, Whitelist: asciiWhitelist},
		Description: "For clean document text with uniform layout",
	},
	StrategyScreenshotMixed: {
		Name:        StrategyScreenshotMixed,
		Kind:        preprocess.KindScreenshot,
		Config:      EngineConfig{PSM: 11, OEM: 3},
		Description: "For screenshots with mixed text and graphics",
	},
	StrategySingleLine: {
		Name:        StrategySingleLine,
		Kind:        preprocess.KindLine,
		Config:      EngineConfig{PSM: 8, OEM: 3},
		Description: "For single lines or words",
	},
	StrategyWebContent: {
		Name:        StrategyWebContent,
		Kind:        preprocess.KindWeb,
		Config:      EngineConfig{PSM: 3, OEM: 3},
		Description: "For web pages and complex layouts",
	},
	StrategyDenseText: {
		Name:        StrategyDenseText,
		Kind:        preprocess.KindDocumentEnhanced,
		Config:      EngineConfig{PSM: 6, OEM: 1},
		Description: "For dense text with legacy engine",
	},
}

// StrategyByName looks a strategy up in the catalog.
func StrategyByName(name string) (Strategy, bool) {
	s, ok := catalog[name]
	return s, ok
}

// SelectStrategies picks which strategies to run for one image, driven
// by its quality metrics. document_text and screenshot_mixed always
// run; the rest join on quality triggers. The result is a
// deterministic function of the metrics, between 2 and 5 entries.
func SelectStrategies(m quality.Metrics) []Strategy {
	names := []string{StrategyDocumentText, StrategyScreenshotMixed}

	if m.TextDensity > 60 {
		names = append(names, StrategyDenseText)
	}
	if m.OverallScore < 60 {
		names = append(names, StrategyWebContent)
	}
	if m.Sharpness < 50 {
		names = append(names, StrategySingleLine)
	}

	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		out = append(out, catalog[n])
	}
	return out
}
