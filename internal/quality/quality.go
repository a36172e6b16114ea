// Package quality scores raw captures for OCR suitability. The
// metrics drive strategy selection; they must never abort a job, so
// degenerate inputs yield a neutral score instead of an error.
package quality

import (
	"image"
	"math"

	"github.com/joseph-ayodele/capture-pipeline/internal/preprocess"
)

// Metrics holds the five normalized quality scores and their mean.
// All fields are in [0,100]. OverallScore is always recomputed from
// the other five, never set independently.
type Metrics struct {
	Sharpness    float64
	Contrast     float64
	Brightness   float64
	NoiseLevel   float64
	TextDensity  float64
	OverallScore float64
}

// Neutral is returned when assessment cannot run; it neither promotes
// nor suppresses any strategy.
func Neutral() Metrics {
	return Metrics{
		Sharpness:    50,
		Contrast:     50,
		Brightness:   50,
		NoiseLevel:   50,
		TextDensity:  50,
		OverallScore: 50,
	}
}

// Assess computes quality metrics from a decoded raster image.
func Assess(img image.Image) Metrics {
	g := preprocess.Grayscale(img)
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return Neutral()
	}

	mean, variance := meanVariance(g)
	if variance == 0 {
		// all-black / all-white: denoise ratio divides by variance
		return Neutral()
	}

	sharpness := clamp01(laplacianVariance(g)/100) * 100
	contrast := clamp01(math.Sqrt(variance)/50) * 100
	brightness := clamp(100-math.Abs(mean-127)/127*100, 0, 100)

	_, denoisedVar := meanVariance(preprocess.Median3(g))
	noise := clamp(100-denoisedVar/variance*100, 0, 100)

	density := edgeRatio(g)
	text := clamp(density*500, 0, 100)

	m := Metrics{
		Sharpness:   sharpness,
		Contrast:    contrast,
		Brightness:  brightness,
		NoiseLevel:  noise,
		TextDensity: text,
	}
	m.OverallScore = (m.Sharpness + m.Contrast + m.Brightness + m.NoiseLevel + m.TextDensity) / 5
	return m
}

func meanVariance(g *image.Gray) (mean, variance float64) {
	b := g.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += float64(g.GrayAt(x, y).Y)
		}
	}
	mean = sum / n
	var sq float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := float64(g.GrayAt(x, y).Y) - mean
			sq += d * d
		}
	}
	return mean, sq / n
}

// laplacianVariance measures focus: a crisp image has a high-variance
// second-derivative response.
func laplacianVariance(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	resp := make([]float64, 0, (w-2)*(h-2))
	var sum float64
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			v := -4*float64(g.GrayAt(x, y).Y) +
				float64(g.GrayAt(x-1, y).Y) + float64(g.GrayAt(x+1, y).Y) +
				float64(g.GrayAt(x, y-1).Y) + float64(g.GrayAt(x, y+1).Y)
			resp = append(resp, v)
			sum += v
		}
	}
	mean := sum / float64(len(resp))
	var sq float64
	for _, v := range resp {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(resp))
}

// edgeRatio returns the fraction of pixels whose Sobel gradient
// magnitude crosses the edge threshold.
func edgeRatio(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	const threshold = 128.0
	edges := 0
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			gx := -float64(g.GrayAt(x-1, y-1).Y) + float64(g.GrayAt(x+1, y-1).Y) +
				-2*float64(g.GrayAt(x-1, y).Y) + 2*float64(g.GrayAt(x+1, y).Y) +
				-float64(g.GrayAt(x-1, y+1).Y) + float64(g.GrayAt(x+1, y+1).Y)
			gy := -float64(g.GrayAt(x-1, y-1).Y) - 2*float64(g.GrayAt(x, y-1).Y) - float64(g.GrayAt(x+1, y-1).Y) +
				float64(g.GrayAt(x-1, y+1).Y) + 2*float64(g.GrayAt(x, y+1).Y) + float64(g.GrayAt(x+1, y+1).Y)
			if math.Hypot(gx, gy) >= threshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(w*h)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
