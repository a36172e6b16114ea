package ocr

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/joseph-ayodele/capture-pipeline/constants"
	"github.com/joseph-ayodele/capture-pipeline/internal/quality"
)

// stubEngine answers from canned per-language results and records
// every call.
type stubEngine struct {
	mu    sync.Mutex
	calls int
	// keyed by language code; zero value means "return defaults"
	texts map[string]string
	confs map[string]float64
	// langs whose calls fail
	failing map[string]bool
}

func (s *stubEngine) Text(_ context.Context, _ *image.Gray, langCode string, _ EngineConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failing[langCode] {
		return "", fmt.Errorf("engine failure for %s", langCode)
	}
	if t, ok := s.texts[langCode]; ok {
		return t, nil
	}
	return "stub text", nil
}

func (s *stubEngine) MeanConfidence(_ context.Context, _ *image.Gray, langCode string, _ EngineConfig) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[langCode] {
		return 0, fmt.Errorf("engine failure for %s", langCode)
	}
	if c, ok := s.confs[langCode]; ok {
		return c, nil
	}
	return 75, nil
}

var testLanguages = []constants.Language{
	{Name: "english", Code: "eng"},
	{Name: "german", Code: "deu"},
}

func testImage() image.Image {
	g := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := 0; i < 32; i++ {
		g.SetGray(i, i, color.Gray{Y: 255})
	}
	return g
}

func TestExtractAllProducesCandidatePerCombination(t *testing.T) {
	engine := &stubEngine{}
	e := NewExtractor(engine, 2, nil)
	e.SetLanguages(testLanguages)

	metrics := quality.Metrics{Sharpness: 80, TextDensity: 40, OverallScore: 70}
	got := e.ExtractAll(context.Background(), testImage(), metrics)

	// 2 baseline strategies x 2 languages
	if len(got) != 4 {
		t.Fatalf("got %d candidates, want 4", len(got))
	}
	for _, c := range got {
		if c.Text != "stub text" || c.Confidence != 75 {
			t.Errorf("unexpected candidate %+v", c)
		}
		if c.TextLength != len(c.Text) || c.WordCount != 2 {
			t.Errorf("derived fields wrong: %+v", c)
		}
		if c.Preprocessing == "" {
			t.Errorf("candidate missing preprocessing kind: %+v", c)
		}
	}
}

func TestExtractAllDeterministicOrder(t *testing.T) {
	engine := &stubEngine{}
	e := NewExtractor(engine, 4, nil)
	e.SetLanguages(testLanguages)

	metrics := quality.Metrics{Sharpness: 80, TextDensity: 40, OverallScore: 70}
	got := e.ExtractAll(context.Background(), testImage(), metrics)

	want := []struct{ strategy, lang string }{
		{StrategyDocumentText, "english"},
		{StrategyDocumentText, "german"},
		{StrategyScreenshotMixed, "english"},
		{StrategyScreenshotMixed, "german"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Strategy != w.strategy || got[i].Language != w.lang {
			t.Errorf("position %d: got (%s,%s), want (%s,%s)",
				i, got[i].Strategy, got[i].Language, w.strategy, w.lang)
		}
	}
}

func TestExtractAllSkipsFailingCombinations(t *testing.T) {
	engine := &stubEngine{failing: map[string]bool{"deu": true}}
	e := NewExtractor(engine, 2, nil)
	e.SetLanguages(testLanguages)

	metrics := quality.Metrics{Sharpness: 80, TextDensity: 40, OverallScore: 70}
	got := e.ExtractAll(context.Background(), testImage(), metrics)

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2 (german combos skipped)", len(got))
	}
	for _, c := range got {
		if c.Language != "english" {
			t.Errorf("failing language leaked through: %+v", c)
		}
	}
}

func TestExtractAllDiscardsEmptyText(t *testing.T) {
	engine := &stubEngine{texts: map[string]string{"eng": "  \n\t ", "deu": "Hallo Welt"}}
	e := NewExtractor(engine, 2, nil)
	e.SetLanguages(testLanguages)

	metrics := quality.Metrics{Sharpness: 80, TextDensity: 40, OverallScore: 70}
	got := e.ExtractAll(context.Background(), testImage(), metrics)

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	for _, c := range got {
		if c.Language != "german" || c.Text != "Hallo Welt" {
			t.Errorf("unexpected candidate %+v", c)
		}
	}
}

func TestExtractAllUsesFullCatalogByDefault(t *testing.T) {
	engine := &stubEngine{}
	e := NewExtractor(engine, 4, nil)

	metrics := quality.Metrics{Sharpness: 80, TextDensity: 40, OverallScore: 70}
	got := e.ExtractAll(context.Background(), testImage(), metrics)

	if want := 2 * len(constants.Languages); len(got) != want {
		t.Fatalf("got %d candidates, want %d", len(got), want)
	}
}
