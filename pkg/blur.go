package pgmblur

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is everything the CLI hands to the pipeline.
type Config struct {
	KernelKind KernelKind
	KernelSize int
	Kernel     KernelOptions
	Workers    int
	Schedule   Schedule
	InputPath  string
	// OutputPath defaults to OutputFilename(cfg) when empty.
	OutputPath string
	Codec      CodecOptions
}

type BlurStats struct {
	Width, Height int
	Margin        int
	KernelSum     float64
	Workers       int
	Schedule      Schedule
	Overflows     int64
	OutputPath    string

	Kernel, Pad, Convolve time.Duration
}

// Blur runs the numeric pipeline on src: kernel synthesis, zero padding and
// convolution. src is not modified.
func Blur(src *Raster, cfg Config) (*Raster, BlurStats, error) {
	if err := src.Validate(); err != nil {
		return nil, BlurStats{}, err
	}
	stats := BlurStats{Width: src.Width, Height: src.Height}

	start := time.Now()
	kernel, err := NewKernel(cfg.KernelKind, cfg.KernelSize, cfg.Kernel)
	if err != nil {
		return nil, stats, err
	}
	stats.Kernel = time.Since(start)
	stats.Margin = kernel.Margin()
	stats.KernelSum = kernel.Sum()

	start = time.Now()
	padded, err := Pad(src, kernel.Margin(), cfg.Workers)
	if err != nil {
		return nil, stats, err
	}
	stats.Pad = time.Since(start)

	start = time.Now()
	out, convStats, err := Convolve(padded, kernel, ConvolveOptions{
		Workers:  cfg.Workers,
		Schedule: cfg.Schedule,
	})
	if err != nil {
		return nil, stats, err
	}
	stats.Convolve = time.Since(start)
	stats.Workers = convStats.Workers
	stats.Schedule = convStats.Schedule
	stats.Overflows = convStats.Overflows

	if stats.Overflows > 0 {
		Logger().Warn("samples overflowed maxval and were wrapped",
			"count", stats.Overflows,
			"maxval", out.MaxVal,
		)
	}
	return out, stats, nil
}

// BlurFilter loads cfg.InputPath, blurs it and stores the result. Nothing is
// written when any step fails.
func BlurFilter(cfg Config) (BlurStats, error) {
	if cfg.OutputPath == "" {
		cfg.OutputPath = OutputFilename(cfg)
	}

	start := time.Now()
	im, err := LoadImageFile(cfg.InputPath, cfg.Codec)
	if err != nil {
		return BlurStats{}, fmt.Errorf("error occured during loading image %q: %w", cfg.InputPath, err)
	}
	loaded := time.Since(start)

	res, stats, err := Blur(im, cfg)
	if err != nil {
		return stats, fmt.Errorf("error occured during blurring image %q: %w", cfg.InputPath, err)
	}
	stats.OutputPath = cfg.OutputPath

	start = time.Now()
	if err := SaveImageFile(res, cfg.OutputPath, cfg.Codec); err != nil {
		return stats, fmt.Errorf("error occured during saving image %q: %w", cfg.OutputPath, err)
	}

	Logger().Info("image blurred",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"size", fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		"kernel", cfg.KernelKind,
		"kernel_size", cfg.KernelSize,
		"workers", stats.Workers,
		"schedule", stats.Schedule,
		"load", loaded,
		"pad", stats.Pad,
		"convolve", stats.Convolve,
		"store", time.Since(start),
	)
	return stats, nil
}

// OutputFilename derives the result name from the input one:
// "<stem>.b_<kind>_<K>x<K><ext>", with "_<f>" before the extension for the
// weighted-center kernel, f written without its decimal point.
func OutputFilename(cfg Config) string {
	ext := filepath.Ext(cfg.InputPath)
	stem := strings.TrimSuffix(cfg.InputPath, ext)

	var weight string
	if cfg.KernelKind == KernelWeightedCenter {
		f := strconv.FormatFloat(float64(cfg.Kernel.CenterWeight), 'f', -1, 32)
		weight = "_" + strings.ReplaceAll(f, ".", "")
	}
	return fmt.Sprintf("%s.b_%d_%dx%d%s%s", stem, int(cfg.KernelKind), cfg.KernelSize, cfg.KernelSize, weight, ext)
}
