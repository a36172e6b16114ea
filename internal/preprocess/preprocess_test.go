package preprocess

import (
	"image"
	"image/color"
	"testing"
)

// textLike paints dark glyph-ish blocks on a light background.
func textLike(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetGray(x, y, color.Gray{Y: 230})
		}
	}
	for row := 8; row < h-8; row += 12 {
		for x := 4; x < w-4; x++ {
			if x%7 < 4 {
				for dy := 0; dy < 5 && row+dy < h; dy++ {
					g.SetGray(x, row+dy, color.Gray{Y: 25})
				}
			}
		}
	}
	return g
}

func TestApplyAllKinds(t *testing.T) {
	src := textLike(96, 64)
	kinds := []Kind{
		KindDocument,
		KindScreenshot,
		KindWeb,
		KindLine,
		KindDocumentEnhanced,
		KindDefault,
		Kind("nonsense"), // unknown kinds take the default chain
	}
	for _, k := range kinds {
		t.Run(string(k), func(t *testing.T) {
			out := Apply(src, k)
			if out == nil {
				t.Fatal("Apply returned nil")
			}
			if got, want := out.Bounds().Size(), src.Bounds().Size(); got != want {
				t.Fatalf("bounds changed: got %v, want %v", got, want)
			}
			// every shipped chain ends in a binarization step
			for y := out.Bounds().Min.Y; y < out.Bounds().Max.Y; y++ {
				for x := out.Bounds().Min.X; x < out.Bounds().Max.X; x++ {
					if v := out.GrayAt(x, y).Y; v != 0 && v != 255 {
						t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
					}
				}
			}
		})
	}
}

func TestApplyKeepsInkAndPaper(t *testing.T) {
	out := Apply(textLike(96, 64), KindDocument)
	var black, white int
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if out.GrayAt(x, y).Y == 0 {
				black++
			} else {
				white++
			}
		}
	}
	if black == 0 || white == 0 {
		t.Errorf("binarization collapsed the image: black=%d white=%d", black, white)
	}
}

func TestApplyEmptyImage(t *testing.T) {
	out := Apply(image.NewGray(image.Rect(0, 0, 0, 0)), KindScreenshot)
	if out == nil {
		t.Fatal("Apply returned nil for empty image")
	}
	if out.Bounds().Dx() != 0 || out.Bounds().Dy() != 0 {
		t.Errorf("bounds = %v, want empty", out.Bounds())
	}
}

func TestGrayscalePreservesLuma(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(1, 0, color.RGBA{A: 255})

	g := Grayscale(src)
	if w := g.GrayAt(0, 0).Y; w < 250 {
		t.Errorf("white converted to %d", w)
	}
	if b := g.GrayAt(1, 0).Y; b > 5 {
		t.Errorf("black converted to %d", b)
	}
}

func TestOtsuSeparatesBimodal(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				g.SetGray(x, y, color.Gray{Y: 40})
			} else {
				g.SetGray(x, y, color.Gray{Y: 210})
			}
		}
	}
	out := Otsu(g)
	if got := out.GrayAt(2, 8).Y; got != 0 {
		t.Errorf("dark side = %d, want 0", got)
	}
	if got := out.GrayAt(12, 8).Y; got != 255 {
		t.Errorf("light side = %d, want 255", got)
	}
}

func TestMedian3RemovesSaltNoise(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 9, 9))
	g.SetGray(4, 4, color.Gray{Y: 255}) // single bright speck on black

	out := Median3(g)
	if got := out.GrayAt(4, 4).Y; got != 0 {
		t.Errorf("speck survived median filter: %d", got)
	}
}
