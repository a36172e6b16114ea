package preprocess

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// Grayscale converts any raster image to an 8-bit luminance plane.
func Grayscale(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// GaussianBlur smooths the plane with the given sigma.
func GaussianBlur(g *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return g
	}
	return Grayscale(imaging.Blur(g, sigma))
}

// Sharpen applies imaging's sharpening filter to the plane.
func Sharpen(g *image.Gray, sigma float64) *image.Gray {
	return Grayscale(imaging.Sharpen(g, sigma))
}

// Median3 applies a 3x3 median filter, the denoise workhorse for
// salt-and-pepper artifacts.
func Median3(g *image.Gray) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(b)
	var window [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx, yy := clampInt(x+dx, b.Min.X, b.Max.X-1), clampInt(y+dy, b.Min.Y, b.Max.Y-1)
					window[n] = g.GrayAt(xx, yy).Y
					n++
				}
			}
			dst.SetGray(x, y, colorGray(median9(window)))
		}
	}
	return dst
}

func median9(w [9]uint8) uint8 {
	// insertion sort on a fixed window beats sort.Slice here
	for i := 1; i < 9; i++ {
		v := w[i]
		j := i - 1
		for j >= 0 && w[j] > v {
			w[j+1] = w[j]
			j--
		}
		w[j+1] = v
	}
	return w[4]
}

// Otsu binarizes using Otsu's global threshold.
func Otsu(g *image.Gray) *image.Gray {
	t := otsuThreshold(g)
	b := g.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y > t {
				dst.SetGray(x, y, colorGray(255))
			}
		}
	}
	return dst
}

func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 127
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
		}
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}
	var sumB, wB float64
	var best float64
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

// AdaptiveMean thresholds each pixel against the mean of its block
// neighborhood minus c. Uneven lighting survives where a global
// threshold would not.
func AdaptiveMean(g *image.Gray, block int, c float64) *image.Gray {
	if block%2 == 0 {
		block++
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	if w == 0 || h == 0 {
		return dst
	}

	// summed-area table, one row/col of padding
	integral := make([]float64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum float64
		for x := 0; x < w; x++ {
			rowSum += float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	r := block / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := maxInt(0, x-r), maxInt(0, y-r)
			x1, y1 := minInt(w-1, x+r), minInt(h-1, y+r)
			area := float64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / area
			if float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y) > mean-c {
				dst.SetGray(b.Min.X+x, b.Min.Y+y, colorGray(255))
			}
		}
	}
	return dst
}

// AdaptiveGaussian thresholds against a gaussian-weighted neighborhood
// mean minus c, approximated by comparing against a blurred copy.
func AdaptiveGaussian(g *image.Gray, block int, c float64) *image.Gray {
	sigma := float64(block) / 6.0
	if sigma < 0.5 {
		sigma = 0.5
	}
	blurred := GaussianBlur(g, sigma)
	b := g.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if float64(g.GrayAt(x, y).Y) > float64(blurred.GrayAt(x, y).Y)-c {
				dst.SetGray(x, y, colorGray(255))
			}
		}
	}
	return dst
}

// CLAHE performs contrast-limited adaptive histogram equalization over
// a tiles x tiles grid with bilinear interpolation between tile LUTs.
func CLAHE(g *image.Gray, clipLimit float64, tiles int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || tiles < 1 {
		return g
	}
	if tiles > w {
		tiles = w
	}
	if tiles > h {
		tiles = h
	}
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	// per-tile clipped-histogram LUTs
	luts := make([][256]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := minInt(x0+tileW, w), minInt(y0+tileH, h)
			var hist [256]float64
			count := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[g.GrayAt(b.Min.X+x, b.Min.Y+y).Y]++
					count++
				}
			}
			if count == 0 {
				continue
			}
			clip := clipLimit * float64(count) / 256.0
			if clip < 1 {
				clip = 1
			}
			var excess float64
			for i := range hist {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			redist := excess / 256.0
			var cdf float64
			scale := 255.0 / float64(count)
			lut := &luts[ty*tiles+tx]
			for i := 0; i < 256; i++ {
				cdf += hist[i] + redist
				v := cdf * scale
				if v > 255 {
					v = 255
				}
				lut[i] = uint8(v)
			}
		}
	}

	// bilinear interpolation between the four surrounding tile centers
	dst := image.NewGray(b)
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(fy))
		dy := fy - float64(ty0)
		ty1 := clampInt(ty0+1, 0, tiles-1)
		ty0 = clampInt(ty0, 0, tiles-1)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(fx))
			dx := fx - float64(tx0)
			tx1 := clampInt(tx0+1, 0, tiles-1)
			tx0c := clampInt(tx0, 0, tiles-1)

			v := g.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			tl := float64(luts[ty0*tiles+tx0c][v])
			tr := float64(luts[ty0*tiles+tx1][v])
			bl := float64(luts[ty1*tiles+tx0c][v])
			br := float64(luts[ty1*tiles+tx1][v])
			top := tl + (tr-tl)*dx
			bot := bl + (br-bl)*dx
			dst.SetGray(b.Min.X+x, b.Min.Y+y, colorGray(uint8(top+(bot-top)*dy+0.5)))
		}
	}
	return dst
}

// Bilateral applies an edge-preserving smoothing filter: spatial and
// range gaussian weights combined, so flat regions blur while edges hold.
func Bilateral(g *image.Gray, radius int, sigmaSpace, sigmaRange float64) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(b)
	twoSS := 2 * sigmaSpace * sigmaSpace
	twoSR := 2 * sigmaRange * sigmaRange

	// precompute the spatial kernel
	size := 2*radius + 1
	spatial := make([]float64, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*size+dx+radius] = math.Exp(-d2 / twoSS)
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			center := float64(g.GrayAt(x, y).Y)
			var num, den float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					xx, yy := clampInt(x+dx, b.Min.X, b.Max.X-1), clampInt(y+dy, b.Min.Y, b.Max.Y-1)
					v := float64(g.GrayAt(xx, yy).Y)
					diff := v - center
					wgt := spatial[(dy+radius)*size+dx+radius] * math.Exp(-(diff*diff)/twoSR)
					num += v * wgt
					den += wgt
				}
			}
			dst.SetGray(x, y, colorGray(uint8(num/den+0.5)))
		}
	}
	return dst
}

// Dilate grows bright regions with a w x h rectangular kernel.
func Dilate(g *image.Gray, kw, kh int) *image.Gray {
	return morph(g, kw, kh, true)
}

// Erode shrinks bright regions with a w x h rectangular kernel.
func Erode(g *image.Gray, kw, kh int) *image.Gray {
	return morph(g, kw, kh, false)
}

// MorphClose is dilation followed by erosion; fills small dark gaps
// inside text strokes.
func MorphClose(g *image.Gray, kw, kh int) *image.Gray {
	return Erode(Dilate(g, kw, kh), kw, kh)
}

func morph(g *image.Gray, kw, kh int, dilate bool) *image.Gray {
	if kw < 1 {
		kw = 1
	}
	if kh < 1 {
		kh = 1
	}
	b := g.Bounds()
	dst := image.NewGray(b)
	// kernel anchored top-left, matching the usual rectangular
	// structuring element with even sizes
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var best uint8
			if !dilate {
				best = 255
			}
			for dy := 0; dy < kh; dy++ {
				for dx := 0; dx < kw; dx++ {
					xx, yy := clampInt(x+dx-kw/2, b.Min.X, b.Max.X-1), clampInt(y+dy-kh/2, b.Min.Y, b.Max.Y-1)
					v := g.GrayAt(xx, yy).Y
					if dilate && v > best {
						best = v
					} else if !dilate && v < best {
						best = v
					}
				}
			}
			dst.SetGray(x, y, colorGray(best))
		}
	}
	return dst
}

// Unsharp adds back amount x (original - blurred) for text clarity:
// out = (1+amount) x original - amount x blurred.
func Unsharp(g *image.Gray, sigma, amount float64) *image.Gray {
	blurred := GaussianBlur(g, sigma)
	b := g.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := (1+amount)*float64(g.GrayAt(x, y).Y) - amount*float64(blurred.GrayAt(x, y).Y)
			dst.SetGray(x, y, colorGray(clampU8(v)))
		}
	}
	return dst
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
