package pgmblur

import (
	"fmt"
	"slices"
)

const MaxSampleValue = 0xFFFF

// Raster is a grayscale image stored row-major with stride equal to Width.
// Samples are kept in host order whatever the depth of the source file.
type Raster struct {
	Width, Height int
	MaxVal        int
	Pix           []uint16
}

func NewRaster(width, height, maxVal int) (*Raster, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if maxVal < 0 || maxVal > MaxSampleValue {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxVal, maxVal)
	}
	return &Raster{
		Width:  width,
		Height: height,
		MaxVal: maxVal,
		Pix:    make([]uint16, width*height),
	}, nil
}

func (r *Raster) Index(row, col int) int {
	return row*r.Width + col
}

func (r *Raster) At(row, col int) uint16 {
	return r.Pix[r.Index(row, col)]
}

func (r *Raster) Set(row, col int, v uint16) {
	r.Pix[r.Index(row, col)] = v
}

// Row returns the samples of a row, sharing storage with the raster.
func (r *Raster) Row(row int) []uint16 {
	start := row * r.Width
	return r.Pix[start : start+r.Width : start+r.Width]
}

// Depth is the sample depth in bits used on disk.
func (r *Raster) Depth() int {
	if r.MaxVal > 0xFF {
		return 16
	}
	return 8
}

func (r *Raster) BytesPerSample() int {
	return r.Depth() / 8
}

// Empty reports whether the raster holds no samples, e.g. a file with a 0x0 header.
func (r *Raster) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// Validate checks the invariants the pipeline relies on: positive dimensions,
// consistent buffer length and every sample within maxval.
func (r *Raster) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, r.Width, r.Height)
	}
	if r.MaxVal < 0 || r.MaxVal > MaxSampleValue {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxVal, r.MaxVal)
	}
	if len(r.Pix) != r.Width*r.Height {
		return fmt.Errorf("%w: buffer holds %d samples, want %d", ErrInvalidDimensions, len(r.Pix), r.Width*r.Height)
	}
	for i, v := range r.Pix {
		if int(v) > r.MaxVal {
			return fmt.Errorf("%w: sample %d at (%d, %d) > %d", ErrSampleOutOfRange, v, i/r.Width, i%r.Width, r.MaxVal)
		}
	}
	return nil
}

func (r *Raster) Clone() *Raster {
	return &Raster{
		Width:  r.Width,
		Height: r.Height,
		MaxVal: r.MaxVal,
		Pix:    slices.Clone(r.Pix),
	}
}

func (r *Raster) Equal(other *Raster) bool {
	return r.Width == other.Width &&
		r.Height == other.Height &&
		r.MaxVal == other.MaxVal &&
		slices.Equal(r.Pix, other.Pix)
}
