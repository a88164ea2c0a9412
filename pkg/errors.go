package pgmblur

import "errors"

var (
	ErrInvalidDimensions     = errors.New("invalid raster dimensions")
	ErrInvalidMaxVal         = errors.New("maxval must be in [0, 65535]")
	ErrSampleOutOfRange      = errors.New("sample exceeds maxval")
	ErrInvalidKernelSize     = errors.New("kernel size must be positive and odd")
	ErrUnsupportedKernelKind = errors.New("unsupported kernel kind")
	ErrCenterWeightRange     = errors.New("center weight must be in (0, 1)")
	ErrUnsupportedPolicy     = errors.New("unsupported center weight policy")
	ErrUnsupportedSchedule   = errors.New("unsupported schedule")
	ErrInvalidMargin         = errors.New("margin must not be negative")

	// I/O boundary
	ErrMalformedHeader       = errors.New("malformed pgm header")
	ErrTruncated             = errors.New("truncated sample data")
	ErrUnsupportedFormat     = errors.New("unsupported raster format")
	ErrUnsupportedColorModel = errors.New("only grayscale images are supported")
	ErrUnsupportedByteOrder  = errors.New("unsupported sample byte order")
)
