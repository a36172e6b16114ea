package ocr

import (
	"strings"
	"unicode"
)

// substitutions fixes the common confusions the engine makes on
// binarized input. The table must stay shape-preserving: character
// for character, no reordering, so re-running is harmless.
var substitutions = strings.NewReplacer(
	"|", "I",
)

// PostProcess normalizes an extracted transcription: drop
// non-printable characters, collapse whitespace runs to single spaces,
// fix known OCR confusions, trim. Idempotent: applying it twice
// yields the same string. Non-printables go first so the whitespace
// they leave behind is collapsed in the same pass.
func PostProcess(text string) string {
	if text == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}

	text = strings.Join(strings.Fields(b.String()), " ")
	return substitutions.Replace(text)
}
