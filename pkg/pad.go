package pgmblur

import (
	"fmt"

	"github.com/sourcegraph/conc"
)

// Pad copies src into the middle of a zero-filled raster enlarged by margin
// on every side, so every kernel footprint of a real pixel stays in bounds.
// The copy is spread over workers and finishes before Pad returns.
func Pad(src *Raster, margin, workers int) (*Raster, error) {
	if margin < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMargin, margin)
	}
	if src.Width <= 0 || src.Height <= 0 || len(src.Pix) != src.Width*src.Height {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, src.Width, src.Height)
	}

	padded, err := NewRaster(src.Width+2*margin, src.Height+2*margin, src.MaxVal)
	if err != nil {
		return nil, err
	}

	var wg conc.WaitGroup
	for _, band := range splitRows(src.Height, workers) {
		band := band
		wg.Go(func() {
			for row := band.start; row < band.end; row++ {
				copy(padded.Row(row + margin)[margin:], src.Row(row))
			}
		})
	}
	wg.Wait()

	Logger().Debug("padded raster",
		"width", padded.Width,
		"height", padded.Height,
		"margin", margin,
	)
	return padded, nil
}
