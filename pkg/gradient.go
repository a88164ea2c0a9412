package pgmblur

// Gradient builds a vertical gradient test image: every row is uniform and
// rows grow by max(maxVal/height, 1) from 0, saturating at maxVal.
func Gradient(maxVal, width, height int) (*Raster, error) {
	r, err := NewRaster(width, height, maxVal)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	delta := max(maxVal/height, 1)
	for row := 0; row < height; row++ {
		v := uint16(min(row*delta, maxVal))
		dst := r.Row(row)
		for col := range dst {
			dst[col] = v
		}
	}
	return r, nil
}
