package pgmblur

import (
	"math/rand"
	"testing"
)

// Test helpers shared across package tests.

func filledRaster(t testing.TB, width, height, maxVal int, v uint16) *Raster {
	t.Helper()
	r, err := NewRaster(width, height, maxVal)
	if err != nil {
		t.Fatalf("NewRaster(%d, %d, %d): %v", width, height, maxVal, err)
	}
	for i := range r.Pix {
		r.Pix[i] = v
	}
	return r
}

func randomRaster(t testing.TB, width, height, maxVal int, seed int64) *Raster {
	t.Helper()
	r := filledRaster(t, width, height, maxVal, 0)
	rnd := rand.New(rand.NewSource(seed))
	for i := range r.Pix {
		r.Pix[i] = uint16(rnd.Intn(maxVal + 1))
	}
	return r
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
