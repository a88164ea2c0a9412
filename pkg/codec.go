package pgmblur

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

const outputFileMode = 0o644

type CodecOptions struct {
	// SampleOrder is the byte order of 16-bit PGM samples, big-endian when nil.
	SampleOrder binary.ByteOrder
}

type format int

const (
	formatPGM format = iota
	formatPNG
	formatTIFF
)

func formatOf(filename string) (format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pgm", ".pnm":
		return formatPGM, nil
	case ".png":
		return formatPNG, nil
	case ".tif", ".tiff":
		return formatTIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// LoadImageFile reads a raster, choosing the codec by file extension.
func LoadImageFile(imageFilename string, opts CodecOptions) (*Raster, error) {
	f, err := formatOf(imageFilename)
	if err != nil {
		return nil, err
	}

	imageFile, err := os.Open(imageFilename)
	if err != nil {
		return nil, err
	}
	defer imageFile.Close()

	switch f {
	case formatPGM:
		return ReadPGM(imageFile, opts.SampleOrder)
	case formatPNG:
		return decodeGray(png.Decode, imageFile)
	default:
		return decodeGray(tiff.Decode, imageFile)
	}
}

func decodeGray(decode func(io.Reader) (image.Image, error), r io.Reader) (*Raster, error) {
	im, err := decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(im)
}

// FromImage converts an 8 or 16 bit grayscale image to a raster.
func FromImage(im image.Image) (*Raster, error) {
	b := im.Bounds()
	switch g := im.(type) {
	case *image.Gray:
		r, err := NewRaster(b.Dx(), b.Dy(), 0xFF)
		if err != nil {
			return nil, err
		}
		for row := 0; row < r.Height; row++ {
			dst := r.Row(row)
			src := g.Pix[row*g.Stride : row*g.Stride+r.Width]
			for col, v := range src {
				dst[col] = uint16(v)
			}
		}
		return r, nil
	case *image.Gray16:
		r, err := NewRaster(b.Dx(), b.Dy(), MaxSampleValue)
		if err != nil {
			return nil, err
		}
		for row := 0; row < r.Height; row++ {
			dst := r.Row(row)
			src := g.Pix[row*g.Stride : row*g.Stride+2*r.Width]
			for col := range dst {
				// image.Gray16 is big-endian in memory
				dst[col] = binary.BigEndian.Uint16(src[2*col:])
			}
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedColorModel, im)
	}
}

// ToImage converts a raster to image.Gray or image.Gray16 depending on its depth.
func ToImage(r *Raster) image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Depth() == 8 {
		im := image.NewGray(rect)
		for row := 0; row < r.Height; row++ {
			dst := im.Pix[row*im.Stride:]
			for col, v := range r.Row(row) {
				dst[col] = byte(v)
			}
		}
		return im
	}
	im := image.NewGray16(rect)
	for row := 0; row < r.Height; row++ {
		dst := im.Pix[row*im.Stride:]
		for col, v := range r.Row(row) {
			binary.BigEndian.PutUint16(dst[2*col:], v)
		}
	}
	return im
}

// SaveImageFile writes r next to its final name and renames it into place,
// so a failure never leaves a partial file behind.
func SaveImageFile(r *Raster, imageFilename string, opts CodecOptions) (err error) {
	f, err := formatOf(imageFilename)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(imageFilename), ".pgmblur-*"+filepath.Ext(imageFilename))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	switch f {
	case formatPGM:
		err = WritePGM(tmp, r, opts.SampleOrder)
	case formatPNG:
		err = png.Encode(tmp, ToImage(r))
	default:
		err = tiff.Encode(tmp, ToImage(r), &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return err
	}
	// CreateTemp makes the file owner-only
	if err = tmp.Chmod(outputFileMode); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), imageFilename)
}
