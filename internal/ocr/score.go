package ocr

// Candidate is one extraction attempt for a (strategy, language) pair.
type Candidate struct {
	Text          string
	Confidence    float64 // mean word confidence, 0..100
	Language      string
	LanguageCode  string
	Strategy      string
	Preprocessing string
	TextLength    int
	WordCount     int
}

// BestResult is the winning candidate plus its computed score. When no
// candidate survived, the sentinel (strategy "none", empty text,
// confidence 0) is returned so the job still flows downstream.
type BestResult struct {
	Candidate
	Score float64
}

// scoring weights; they sum to 1.0 so scores stay comparable across
// runs, and the function stays monotonic in confidence.
const (
	weightConfidence = 0.40
	weightTextLength = 0.20
	weightWordCount  = 0.15
	weightStrategy   = 0.15
	weightLanguage   = 0.10
)

var strategyBonus = map[string]float64{
	StrategyDocumentText:    10,
	StrategyScreenshotMixed: 8,
	StrategyDenseText:       7,
	StrategyWebContent:      6,
	StrategySingleLine:      5,
}

var languageBonus = map[string]float64{
	"multi_european": 8,
	"english":        7,
	"german":         7,
	"auto":           5,
}

// Score computes the weighted quality score for one candidate.
func Score(c Candidate) float64 {
	score := c.Confidence * weightConfidence

	lengthScore := minF(float64(c.TextLength)/100, 1) * 100
	score += lengthScore * weightTextLength

	wordScore := minF(float64(c.WordCount)/10, 1) * 100
	score += wordScore * weightWordCount

	score += strategyBonus[c.Strategy] * weightStrategy
	score += languageBonus[c.Language] * weightLanguage

	return score
}

// SelectBest returns the highest-scoring candidate; ties go to the
// first seen so the result is stable in input order.
func SelectBest(candidates []Candidate) BestResult {
	if len(candidates) == 0 {
		return BestResult{Candidate: Candidate{
			Language:      "unknown",
			LanguageCode:  "eng",
			Strategy:      "none",
			Preprocessing: "none",
		}}
	}

	best := BestResult{Candidate: candidates[0], Score: Score(candidates[0])}
	for _, c := range candidates[1:] {
		if s := Score(c); s > best.Score {
			best = BestResult{Candidate: c, Score: s}
		}
	}
	return best
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
