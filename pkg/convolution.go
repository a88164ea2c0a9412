package pgmblur

import (
	"fmt"
	"sync/atomic"

	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/pool"
)

type ConvolveOptions struct {
	// Workers is the number of goroutines, GOMAXPROCS when not positive.
	Workers  int
	Schedule Schedule
}

type ConvolveStats struct {
	Workers  int
	Schedule Schedule
	// Overflows counts output samples whose truncated sum fell outside [0, maxval].
	// Such samples are stored wrapped to 16 bits, never clamped.
	Overflows int64
}

// Convolve applies kernel to every real pixel of a raster previously padded
// with kernel.Margin(). The result has the unpadded size and the same maxval.
//
// Every output row is written by exactly one goroutine and padded and kernel
// are only read, so the result does not depend on worker count or schedule.
func Convolve(padded *Raster, kernel *Kernel, opts ConvolveOptions) (*Raster, ConvolveStats, error) {
	margin := kernel.Margin()
	width, height := padded.Width-2*margin, padded.Height-2*margin
	if width <= 0 || height <= 0 || len(padded.Pix) != padded.Width*padded.Height {
		return nil, ConvolveStats{}, fmt.Errorf("%w: padded %dx%d with margin %d",
			ErrInvalidDimensions, padded.Width, padded.Height, margin)
	}
	if len(kernel.Weights) != kernel.Size*kernel.Size {
		return nil, ConvolveStats{}, fmt.Errorf("%w: %d weights for size %d", ErrInvalidKernelSize, len(kernel.Weights), kernel.Size)
	}

	out, err := NewRaster(width, height, padded.MaxVal)
	if err != nil {
		return nil, ConvolveStats{}, err
	}

	stats := ConvolveStats{
		Workers:  min(resolveWorkers(opts.Workers), height),
		Schedule: opts.Schedule,
	}
	var overflows atomic.Int64

	switch opts.Schedule {
	case ScheduleStatic:
		p := pool.New().WithMaxGoroutines(stats.Workers)
		for _, band := range splitRows(height, stats.Workers) {
			band := band
			p.Go(func() {
				var n int64
				for row := band.start; row < band.end; row++ {
					n += convolveRow(padded, kernel, out.Row(row), row, out.MaxVal)
				}
				overflows.Add(n)
			})
		}
		p.Wait()
	case ScheduleDynamic:
		rows := make([][]uint16, height)
		for row := range rows {
			rows[row] = out.Row(row)
		}
		iter.Iterator[[]uint16]{MaxGoroutines: stats.Workers}.ForEachIdx(rows, func(row int, dst *[]uint16) {
			if n := convolveRow(padded, kernel, *dst, row, out.MaxVal); n != 0 {
				overflows.Add(n)
			}
		})
	default:
		return nil, ConvolveStats{}, fmt.Errorf("%w: %d", ErrUnsupportedSchedule, int(opts.Schedule))
	}

	stats.Overflows = overflows.Load()
	return out, stats, nil
}

// convolveRow computes output row i into dst and returns how many of its
// samples fell outside [0, maxVal].
func convolveRow(padded *Raster, kernel *Kernel, dst []uint16, i, maxVal int) int64 {
	var overflows int64
	size := kernel.Size
	for j := range dst {
		var sum float32
		for di := 0; di < size; di++ {
			src := padded.Row(i + di)[j : j+size]
			weights := kernel.Weights[di*size : (di+1)*size]
			for dj, w := range weights {
				sum += float32(float32(src[dj]) * w)
			}
		}
		// conversion truncates toward zero
		v := int64(sum)
		if v < 0 || v > int64(maxVal) {
			overflows++
		}
		dst[j] = uint16(v)
	}
	return overflows
}

// ApplyConvolution pads im for kernel and convolves it.
func ApplyConvolution(im *Raster, kernel *Kernel, opts ConvolveOptions) (*Raster, ConvolveStats, error) {
	padded, err := Pad(im, kernel.Margin(), opts.Workers)
	if err != nil {
		return nil, ConvolveStats{}, err
	}
	return Convolve(padded, kernel, opts)
}
