package llm

import "context"

// Analysis is what the AI capability returns for one text.
type Analysis struct {
	Text   string // natural-language analysis
	Model  string // model identifier, "none" or "error" for degraded paths
	Tokens int    // total tokens consumed
}

// Analyzer is the text-analysis capability the pipeline depends on.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}
