// Package preprocess turns raw captures into binarized planes suited
// to OCR. Each Kind names one transform chain tuned for a capture
// type; a failing chain degrades to plain grayscale instead of
// aborting the strategy that requested it.
package preprocess

import (
	"image"
	"image/color"
	"log/slog"
)

// Kind selects one preprocessing chain.
type Kind string

const (
	KindDocument         Kind = "document"
	KindScreenshot       Kind = "screenshot"
	KindWeb              Kind = "web"
	KindLine             Kind = "line"
	KindDocumentEnhanced Kind = "document_enhanced"
	KindDefault          Kind = "default"
)

func colorGray(v uint8) color.Gray { return color.Gray{Y: v} }

// Apply runs the chain for kind over src. Unknown kinds run the
// default chain. Any panic inside a chain is absorbed and the plain
// grayscale conversion is returned instead.
func Apply(src image.Image, kind Kind) (out *image.Gray) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("preprocessing failed, falling back to grayscale",
				"kind", string(kind), "panic", r)
			out = Grayscale(src)
		}
	}()

	g := Grayscale(src)
	if g.Bounds().Dx() == 0 || g.Bounds().Dy() == 0 {
		return g
	}

	switch kind {
	case KindDocument:
		return documentChain(g)
	case KindScreenshot:
		return screenshotChain(g)
	case KindWeb:
		return webChain(g)
	case KindLine:
		return lineChain(g)
	case KindDocumentEnhanced:
		return documentEnhancedChain(g)
	default:
		return defaultChain(g)
	}
}

// documentChain: clean uniform documents.
// denoise -> adaptive gaussian threshold -> morphological close 2x2.
func documentChain(g *image.Gray) *image.Gray {
	denoised := Median3(g)
	thresh := AdaptiveGaussian(denoised, 11, 2)
	return MorphClose(thresh, 2, 2)
}

// screenshotChain: UI and text mixes.
// CLAHE clip 3.0 8x8 tiles -> median 3 -> global Otsu.
func screenshotChain(g *image.Gray) *image.Gray {
	enhanced := CLAHE(g, 3.0, 8)
	denoised := Median3(enhanced)
	return Otsu(denoised)
}

// webChain: complex layouts with uneven lighting.
// bilateral -> CLAHE clip 2.0 4x4 tiles -> adaptive mean threshold.
func webChain(g *image.Gray) *image.Gray {
	filtered := Bilateral(g, 4, 3.0, 30.0)
	enhanced := CLAHE(filtered, 2.0, 4)
	return AdaptiveMean(enhanced, 15, 10)
}

// lineChain: a single line or word.
// gaussian blur -> Otsu -> horizontal dilation to bridge glyph gaps.
func lineChain(g *image.Gray) *image.Gray {
	blurred := GaussianBlur(g, 0.8)
	thresh := Otsu(blurred)
	return Dilate(thresh, 2, 1)
}

// documentEnhancedChain: dense paragraphs.
// stronger denoise -> unsharp mask -> adaptive gaussian -> close 2x1.
func documentEnhancedChain(g *image.Gray) *image.Gray {
	denoised := Median3(Median3(g))
	unsharp := Unsharp(denoised, 1.2, 0.5)
	thresh := AdaptiveGaussian(unsharp, 13, 3)
	return MorphClose(thresh, 2, 1)
}

// defaultChain: fallback used when no kind matches.
// median -> CLAHE -> Otsu -> close 2x2.
func defaultChain(g *image.Gray) *image.Gray {
	denoised := Median3(g)
	enhanced := CLAHE(denoised, 2.0, 8)
	thresh := Otsu(enhanced)
	return MorphClose(thresh, 2, 2)
}
