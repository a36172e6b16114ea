package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Fallback chains a primary analyzer with a secondary one. A job is
// never aborted by the analysis step: when every provider fails, the
// error lands in the analysis text itself (model "error") and flows
// downstream for storage.
type Fallback struct {
	primary   Analyzer
	secondary Analyzer // may be nil
	logger    *slog.Logger
}

func NewFallback(primary, secondary Analyzer, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Analyze never returns a non-nil error.
func (f *Fallback) Analyze(ctx context.Context, text string) (Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return Analysis{Text: "No text provided for analysis.", Model: "none", Tokens: 0}, nil
	}

	res, err := f.primary.Analyze(ctx, text)
	if err == nil {
		return res, nil
	}
	f.logger.Error("primary analyzer failed", "error", err)

	if f.secondary != nil {
		res, err2 := f.secondary.Analyze(ctx, text)
		if err2 == nil {
			return res, nil
		}
		f.logger.Error("fallback analyzer failed", "error", err2)
		err = err2
	}

	return Analysis{
		Text:   fmt.Sprintf("Error occurred during AI analysis: %v", err),
		Model:  "error",
		Tokens: 0,
	}, nil
}
