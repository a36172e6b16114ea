package ocr

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/capture-pipeline/constants"
	"github.com/joseph-ayodele/capture-pipeline/internal/preprocess"
	"github.com/joseph-ayodele/capture-pipeline/internal/quality"
)

// Extractor fans one image out over every selected strategy x language
// combination and collects the surviving candidates. Combinations are
// independent pure computations against a shared preprocessed plane,
// so they run on a bounded worker pool.
type Extractor struct {
	engine    Engine
	languages []constants.Language
	workers   int
	logger    *slog.Logger
}

// NewExtractor wires an extractor over the given engine. workers <= 0
// falls back to 4.
func NewExtractor(engine Engine, workers int, logger *slog.Logger) *Extractor {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		engine:    engine,
		languages: constants.Languages,
		workers:   workers,
		logger:    logger,
	}
}

// SetLanguages overrides the language catalog (tests, single-language
// deployments).
func (e *Extractor) SetLanguages(langs []constants.Language) {
	if len(langs) > 0 {
		e.languages = langs
	}
}

// ExtractAll runs every selected strategy x language combination.
// A failing combination is skipped, an empty transcription is
// discarded; the returned order is deterministic (strategy-major,
// catalog language order) regardless of scheduling.
func (e *Extractor) ExtractAll(ctx context.Context, img image.Image, metrics quality.Metrics) []Candidate {
	strategies := SelectStrategies(metrics)

	type combo struct {
		strategy  Strategy
		processed *image.Gray
		lang      constants.Language
	}
	combos := make([]combo, 0, len(strategies)*len(e.languages))
	for _, s := range strategies {
		processed := preprocess.Apply(img, s.Kind)
		for _, lang := range e.languages {
			combos = append(combos, combo{strategy: s, processed: processed, lang: lang})
		}
	}

	results := make([]*Candidate, len(combos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, c := range combos {
		g.Go(func() error {
			cand, ok := e.runCombination(ctx, c.processed, c.strategy, c.lang)
			if ok {
				results[i] = &cand
			}
			return nil // combination failures never abort the job
		})
	}
	_ = g.Wait()

	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (e *Extractor) runCombination(ctx context.Context, img *image.Gray, s Strategy, lang constants.Language) (Candidate, bool) {
	conf, err := e.engine.MeanConfidence(ctx, img, lang.Code, s.Config)
	if err != nil {
		e.logger.Warn("ocr confidence call failed",
			"strategy", s.Name, "language", lang.Name, "error", err)
		return Candidate{}, false
	}

	text, err := e.engine.Text(ctx, img, lang.Code, s.Config)
	if err != nil {
		e.logger.Warn("ocr text call failed",
			"strategy", s.Name, "language", lang.Name, "error", err)
		return Candidate{}, false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Candidate{}, false
	}

	return Candidate{
		Text:          text,
		Confidence:    conf,
		Language:      lang.Name,
		LanguageCode:  lang.Code,
		Strategy:      s.Name,
		Preprocessing: string(s.Kind),
		TextLength:    len(text),
		WordCount:     len(strings.Fields(text)),
	}, true
}
