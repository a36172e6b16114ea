package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TesseractConfig configures the exec-based engine.
type TesseractConfig struct {
	Binary      string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	Logger      *slog.Logger // nil -> slog.Default()
}

// Tesseract invokes the tesseract binary per call. Each invocation is
// independent, so concurrent combinations are safe.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
}

// NewTesseract builds the default exec-backed engine.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	return &Tesseract{cfg: cfg, runner: newExecRunner(cfg.Logger)}
}

// NewTesseractWithRunner is the test seam.
func NewTesseractWithRunner(cfg TesseractConfig, r Runner) *Tesseract {
	t := NewTesseract(cfg)
	t.runner = r
	return t
}

// Text runs tesseract <file> stdout -l <lang> with the strategy flags.
func (t *Tesseract) Text(ctx context.Context, img *image.Gray, langCode string, cfg EngineConfig) (string, error) {
	path, cleanup, err := t.writeTemp(img)
	if err != nil {
		return "", err
	}
	defer cleanup()

	args := t.args(path, langCode, cfg)
	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// MeanConfidence runs tesseract in TSV mode and returns the mean word
// confidence in 0..100, or 0 when no word has a positive confidence.
func (t *Tesseract) MeanConfidence(ctx context.Context, img *image.Gray, langCode string, cfg EngineConfig) (float64, error) {
	path, cleanup, err := t.writeTemp(img)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	args := append(t.args(path, langCode, cfg), "tsv")
	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return meanTSVConfidence(string(out)), nil
}

func (t *Tesseract) args(path, langCode string, cfg EngineConfig) []string {
	args := []string{path, "stdout", "-l", langCode}
	if cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(cfg.PSM))
	}
	if cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(cfg.OEM))
	}
	tessdata := cfg.TessdataDir
	if tessdata == "" {
		tessdata = t.cfg.TessdataDir
	}
	if tessdata != "" {
		args = append(args, "--tessdata-dir", tessdata)
	}
	if cfg.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+cfg.Whitelist)
	}
	return args
}

func (t *Tesseract) writeTemp(img *image.Gray) (string, func(), error) {
	dir, err := os.MkdirTemp("", "cap-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("tempdir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, "page.png")
	f, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create temp image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// meanTSVConfidence parses tesseract TSV output; -1 confidence marks
// non-word rows.
func meanTSVConfidence(tsv string) float64 {
	lines := strings.Split(tsv, "\n")
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		// level..height occupy the first 10 columns, conf is 11th,
		// word text trails
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
