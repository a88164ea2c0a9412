package pgmblur

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

const sumTolerance = 1e-6

func TestBoxKernelSumsToOne(t *testing.T) {
	for _, size := range []int{1, 3, 5, 7, 9, 15, 21, 31} {
		k, err := NewKernel(KernelBox, size, KernelOptions{})
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if got := k.Sum(); absf(got-1) > sumTolerance {
			t.Errorf("size %d: sum = %v, want 1", size, got)
		}
		want := float32(1 / float64(size*size))
		for i, w := range k.Weights {
			if w != want {
				t.Fatalf("size %d: weight[%d] = %v, want %v", size, i, w, want)
			}
		}
	}
}

func TestWeightedCenterKernelSumsToOne(t *testing.T) {
	for _, size := range []int{3, 5, 7, 11, 21} {
		for _, f := range []float32{0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
			t.Run(fmt.Sprintf("K=%d f=%v", size, f), func(t *testing.T) {
				k, err := NewKernel(KernelWeightedCenter, size, KernelOptions{CenterWeight: f})
				if err != nil {
					t.Fatal(err)
				}
				if got := k.Sum(); absf(got-1) > sumTolerance {
					t.Errorf("sum = %v, want 1", got)
				}
				m := k.Margin()
				if got := k.At(m, m); got != f {
					t.Errorf("center = %v, want %v", got, f)
				}
				rest := (1 - f) * float32(1/float64(size*size-1))
				if got := k.At(0, 0); got != rest {
					t.Errorf("corner = %v, want %v", got, rest)
				}
			})
		}
	}
}

func TestWeightedCenterKernelSizeOne(t *testing.T) {
	k, err := NewKernel(KernelWeightedCenter, 1, KernelOptions{CenterWeight: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(k.Weights) != 1 || k.Weights[0] != 0.5 {
		t.Errorf("weights = %v, want [0.5]", k.Weights)
	}
}

func TestGaussianKernelIsNotRenormalized(t *testing.T) {
	k, err := NewKernel(KernelGaussian, 5, KernelOptions{})
	if err != nil {
		t.Fatal(err)
	}

	pi, sigma := 3.14159, 10.0
	h := float32(1 / (2 * pi * sigma * sigma))
	if got := k.At(2, 2); got != h {
		t.Errorf("center = %v, want %v", got, h)
	}
	// exponent 8/200 evaluated in float32
	corner := float32(float64(h) * math.Exp(-float64(float32(8)/float32(200))))
	if got := k.At(0, 4); got != corner {
		t.Errorf("corner = %v, want %v", got, corner)
	}
	if sum := k.Sum(); sum >= 1 {
		t.Errorf("finite gaussian sum = %v, expected < 1", sum)
	}
	for i := 0; i < k.Size; i++ {
		for j := 0; j < k.Size; j++ {
			if k.At(i, j) != k.At(j, i) || k.At(i, j) != k.At(k.Size-1-i, k.Size-1-j) {
				t.Fatalf("kernel is not symmetric at (%d, %d)", i, j)
			}
		}
	}
}

// singleGaussianWeight evaluates one weight the way a C float implementation
// does: float32 offsets and quotient, double exp, float32 result.
func singleGaussianWeight(i, j, size int) float32 {
	var mu, sigma float32 = float32((size - 1) / 2), 10
	h := float32(1. / (2 * 3.14159 * float64(sigma) * float64(sigma)))
	di, dj := float32(i)-mu, float32(j)-mu
	q := (float32(di*di) + float32(dj*dj)) / (2 * sigma * sigma)
	return float32(float64(h) * math.Exp(float64(-q)))
}

func TestGaussianKernelFloat32Exponent(t *testing.T) {
	for size := 3; size <= 61; size += 2 {
		k, err := NewKernel(KernelGaussian, size, KernelOptions{})
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				if got, want := k.At(i, j), singleGaussianWeight(i, j, size); got != want {
					t.Fatalf("K=%d (%d, %d): weight %v, want %v", size, i, j, got, want)
				}
			}
		}
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	for _, size := range []int{1, 3, 9, 21} {
		k, err := NewKernel(KernelGaussian, size, KernelOptions{NormalizeGaussian: true})
		if err != nil {
			t.Fatal(err)
		}
		if got := k.Sum(); absf(got-1) > sumTolerance {
			t.Errorf("size %d: sum = %v, want 1", size, got)
		}
	}
}

func TestNewKernelInvalidSize(t *testing.T) {
	for _, size := range []int{-3, -1, 0, 2, 4, 10} {
		if _, err := NewKernel(KernelBox, size, KernelOptions{}); !errors.Is(err, ErrInvalidKernelSize) {
			t.Errorf("size %d: err = %v, want ErrInvalidKernelSize", size, err)
		}
	}
}

func TestNewKernelUnsupportedKind(t *testing.T) {
	for _, kind := range []KernelKind{-1, 3, 42} {
		if _, err := NewKernel(kind, 3, KernelOptions{}); !errors.Is(err, ErrUnsupportedKernelKind) {
			t.Errorf("kind %d: err = %v, want ErrUnsupportedKernelKind", kind, err)
		}
	}
}

func TestCenterWeightPolicy(t *testing.T) {
	tests := []struct {
		name    string
		f       float32
		policy  CenterWeightPolicy
		center  float32
		wantErr error
	}{
		{"in range passes", 0.5, CenterWeightReject, 0.5, nil},
		{"pass through above one", 1.5, CenterWeightPassThrough, 1.5, nil},
		{"pass through negative", -0.5, CenterWeightPassThrough, -0.5, nil},
		{"clamp above one", 1.5, CenterWeightClamp, 1, nil},
		{"clamp negative", -0.5, CenterWeightClamp, 0, nil},
		{"reject above one", 1.5, CenterWeightReject, 0, ErrCenterWeightRange},
		{"reject zero", 0, CenterWeightReject, 0, ErrCenterWeightRange},
		{"unknown policy", 2, CenterWeightPolicy(9), 0, ErrUnsupportedPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKernel(KernelWeightedCenter, 3, KernelOptions{
				CenterWeight:       tt.f,
				CenterWeightPolicy: tt.policy,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := k.At(1, 1); got != tt.center {
				t.Errorf("center = %v, want %v", got, tt.center)
			}
		})
	}
}

func TestParseKernelKind(t *testing.T) {
	tests := []struct {
		in      string
		want    KernelKind
		wantErr bool
	}{
		{"0", KernelBox, false},
		{"1", KernelWeightedCenter, false},
		{"2", KernelGaussian, false},
		{"box", KernelBox, false},
		{" Weighted ", KernelWeightedCenter, false},
		{"GAUSSIAN", KernelGaussian, false},
		{"3", 0, true},
		{"-1", 0, true},
		{"median", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKernelKind(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedKernelKind) {
				t.Errorf("ParseKernelKind(%q) err = %v, want ErrUnsupportedKernelKind", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseKernelKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestKernelKindString(t *testing.T) {
	if got := KernelGaussian.String(); got != "gaussian" {
		t.Errorf("String() = %q", got)
	}
	if got := KernelKind(7).String(); got != "KernelKind(7)" {
		t.Errorf("String() = %q", got)
	}
}

func TestFormatKernel(t *testing.T) {
	k, err := NewKernel(KernelWeightedCenter, 3, KernelOptions{CenterWeight: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	want := "0.100000 0.100000 0.100000\n" +
		"0.100000 0.200000 0.100000\n" +
		"0.100000 0.100000 0.100000\n"
	if got := FormatKernel(k); got != want {
		t.Errorf("FormatKernel =\n%s\nwant\n%s", got, want)
	}
}
