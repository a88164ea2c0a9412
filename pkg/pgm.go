package pgmblur

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const pgmMagic = "P5"

// maxHeaderDigits bounds header numbers so they cannot overflow int.
const maxHeaderDigits = 9

// HostByteOrder reports the byte order of the running machine.
func HostByteOrder() binary.ByteOrder {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 0x0100)
	if probe[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ParseByteOrder maps "big" and "little" to the on-disk sample order of 16-bit files.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big", "be", "":
		return binary.BigEndian, nil
	case "little", "le":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedByteOrder, s)
	}
}

// ReadPGM decodes a binary (P5) graymap. Comments starting with '#' are
// skipped between header tokens. 16-bit samples are read in order, which
// is big-endian for conforming files; nil means big-endian.
//
// A header declaring 0x0 is a successful read of an empty raster, while
// missing or invalid tokens fail with ErrMalformedHeader.
func ReadPGM(r io.Reader, order binary.ByteOrder) (*Raster, error) {
	if order == nil {
		order = binary.BigEndian
	}
	br := bufio.NewReader(r)

	var magic [2]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil || string(magic[:]) != pgmMagic {
		return nil, fmt.Errorf("%w: magic number is not %s", ErrMalformedHeader, pgmMagic)
	}

	var header [3]int
	for i, name := range [...]string{"width", "height", "maxval"} {
		v, err := readHeaderInt(br, i == len(header)-1)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrMalformedHeader, name, err)
		}
		header[i] = v
	}
	width, height, maxVal := header[0], header[1], header[2]
	if width > 0 && height > math.MaxInt32/width {
		return nil, fmt.Errorf("%w: %dx%d is too large", ErrInvalidDimensions, width, height)
	}

	im, err := NewRaster(width, height, maxVal)
	if err != nil {
		return nil, err
	}
	if im.Empty() {
		return im, nil
	}

	buf := make([]byte, len(im.Pix)*im.BytesPerSample())
	if _, err := io.ReadFull(br, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: want %d bytes", ErrTruncated, len(buf))
		}
		return nil, err
	}
	decodeSamples(im.Pix, buf, im.BytesPerSample(), order)

	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// readHeaderInt skips whitespace and comments, then reads a decimal number.
// The byte right after the last token of the header must be a single whitespace.
func readHeaderInt(br *bufio.Reader, last bool) (int, error) {
	c, err := skipSpaceAndComments(br)
	if err != nil {
		return 0, err
	}
	if !isDigit(c) {
		return 0, fmt.Errorf("unexpected byte %q", c)
	}

	v, digits := 0, 0
	for ; isDigit(c); digits++ {
		if digits == maxHeaderDigits {
			return 0, fmt.Errorf("number too long")
		}
		v = v*10 + int(c-'0')
		if c, err = br.ReadByte(); err != nil {
			return 0, err
		}
	}

	switch {
	case isSpace(c):
	case last:
		return 0, fmt.Errorf("no whitespace before sample data")
	case c == '#':
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unexpected byte %q", c)
	}
	return v, nil
}

func skipSpaceAndComments(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch {
		case c == '#':
			if _, err := br.ReadString('\n'); err != nil {
				return 0, err
			}
		case isSpace(c):
		default:
			return c, nil
		}
	}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// WritePGM encodes im as a binary graymap. Samples of 8-bit rasters keep
// their low byte only.
func WritePGM(w io.Writer, im *Raster, order binary.ByteOrder) error {
	if order == nil {
		order = binary.BigEndian
	}
	if im.Width < 0 || im.Height < 0 || len(im.Pix) != im.Width*im.Height {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, im.Width, im.Height)
	}
	if im.MaxVal < 0 || im.MaxVal > MaxSampleValue {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxVal, im.MaxVal)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n# generated by pgmblur\n%d %d\n%d\n", pgmMagic, im.Width, im.Height, im.MaxVal); err != nil {
		return err
	}
	buf := make([]byte, len(im.Pix)*im.BytesPerSample())
	encodeSamples(buf, im.Pix, im.BytesPerSample(), order)
	if _, err := bw.Write(buf); err != nil {
		return err
	}
	return bw.Flush()
}

// decodeSamples converts on-disk samples to host order.
func decodeSamples(dst []uint16, src []byte, bytesPerSample int, order binary.ByteOrder) {
	if bytesPerSample == 1 {
		for i, b := range src {
			dst[i] = uint16(b)
		}
		return
	}
	for i := range dst {
		dst[i] = order.Uint16(src[2*i:])
	}
}

// encodeSamples converts host order samples to their on-disk form.
func encodeSamples(dst []byte, src []uint16, bytesPerSample int, order binary.ByteOrder) {
	if bytesPerSample == 1 {
		for i, v := range src {
			dst[i] = byte(v)
		}
		return
	}
	for i, v := range src {
		order.PutUint16(dst[2*i:], v)
	}
}
