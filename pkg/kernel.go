package pgmblur

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type KernelKind int

const (
	KernelBox KernelKind = iota
	KernelWeightedCenter
	KernelGaussian
)

var kernelKindNames = [...]string{
	KernelBox:            "box",
	KernelWeightedCenter: "weighted",
	KernelGaussian:       "gaussian",
}

func (k KernelKind) String() string {
	if k.Valid() {
		return kernelKindNames[k]
	}
	return fmt.Sprintf("KernelKind(%d)", int(k))
}

func (k KernelKind) Valid() bool {
	return k >= KernelBox && k <= KernelGaussian
}

// ParseKernelKind accepts both the numeric selector (0, 1, 2) and the kernel name.
func ParseKernelKind(s string) (KernelKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if kind := KernelKind(n); kind.Valid() {
			return kind, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedKernelKind, n)
	}
	for kind, name := range kernelKindNames {
		if name == s {
			return KernelKind(kind), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedKernelKind, s)
}

// CenterWeightPolicy decides what happens to a weighted-center kernel whose
// center weight lies outside (0, 1).
type CenterWeightPolicy int

const (
	// CenterWeightPassThrough keeps the weight as given; the kernel then has
	// negative weights or does not sum to 1.
	CenterWeightPassThrough CenterWeightPolicy = iota
	CenterWeightClamp
	CenterWeightReject
)

var centerWeightPolicyNames = [...]string{
	CenterWeightPassThrough: "pass",
	CenterWeightClamp:       "clamp",
	CenterWeightReject:      "reject",
}

func (p CenterWeightPolicy) String() string {
	if p >= CenterWeightPassThrough && p <= CenterWeightReject {
		return centerWeightPolicyNames[p]
	}
	return fmt.Sprintf("CenterWeightPolicy(%d)", int(p))
}

func ParseCenterWeightPolicy(s string) (CenterWeightPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range centerWeightPolicyNames {
		if name == s {
			return CenterWeightPolicy(p), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedPolicy, s)
}

const (
	gaussianSigma = 10
	// pi to five decimals; gaussian weights are defined in terms of it
	gaussianPi = 3.14159
)

type KernelOptions struct {
	// CenterWeight is used by the weighted-center kernel only.
	CenterWeight       float32
	CenterWeightPolicy CenterWeightPolicy
	// NormalizeGaussian rescales the finite Gaussian so its weights sum to 1.
	// Off by default: the normalization constant assumes infinite support.
	NormalizeGaussian bool
}

// Kernel is a square matrix of weights stored row-major.
type Kernel struct {
	Kind    KernelKind
	Size    int
	Weights []float32
}

func (k *Kernel) Margin() int {
	return (k.Size - 1) / 2
}

func (k *Kernel) At(row, col int) float32 {
	return k.Weights[row*k.Size+col]
}

func (k *Kernel) Sum() float64 {
	sum := 0.0
	for _, w := range k.Weights {
		sum += float64(w)
	}
	return sum
}

func NewKernel(kind KernelKind, size int, opts KernelOptions) (*Kernel, error) {
	if size < 1 || size%2 == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKernelSize, size)
	}

	k := &Kernel{
		Kind:    kind,
		Size:    size,
		Weights: make([]float32, size*size),
	}
	switch kind {
	case KernelBox:
		fillBox(k)
	case KernelWeightedCenter:
		f, err := centerWeight(opts.CenterWeight, opts.CenterWeightPolicy)
		if err != nil {
			return nil, err
		}
		fillWeightedCenter(k, f)
	case KernelGaussian:
		fillGaussian(k)
		if opts.NormalizeGaussian {
			normalize(k)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedKernelKind, int(kind))
	}

	Logger().Debug("kernel synthesized", "kind", kind, "size", size, "sum", k.Sum())
	return k, nil
}

func centerWeight(f float32, policy CenterWeightPolicy) (float32, error) {
	if f > 0 && f < 1 {
		return f, nil
	}
	switch policy {
	case CenterWeightPassThrough:
		Logger().Warn("center weight outside (0, 1), kernel will not be a convex combination", "f", f)
		return f, nil
	case CenterWeightClamp:
		return min(max(f, 0), 1), nil
	case CenterWeightReject:
		return 0, fmt.Errorf("%w: got %g", ErrCenterWeightRange, f)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedPolicy, int(policy))
	}
}

func fillBox(k *Kernel) {
	w := float32(1 / float64(k.Size*k.Size))
	for i := range k.Weights {
		k.Weights[i] = w
	}
}

func fillWeightedCenter(k *Kernel, f float32) {
	center := k.Margin()*k.Size + k.Margin()
	if k.Size == 1 {
		k.Weights[center] = f
		return
	}
	rest := (1 - f) * float32(1/float64(k.Size*k.Size-1))
	for i := range k.Weights {
		k.Weights[i] = rest
	}
	k.Weights[center] = f
}

// fillGaussian keeps the exponent in float32 and only widens it for exp.
func fillGaussian(k *Kernel) {
	mu := float32(k.Margin())
	twoSigmaSq := float32(2 * gaussianSigma * gaussianSigma)
	pi, sigma := float64(gaussianPi), float64(gaussianSigma)
	h := float32(1 / (2 * pi * sigma * sigma))
	for i := 0; i < k.Size; i++ {
		for j := 0; j < k.Size; j++ {
			di, dj := float32(i)-mu, float32(j)-mu
			q := (float32(di*di) + float32(dj*dj)) / twoSigmaSq
			k.Weights[i*k.Size+j] = float32(float64(h) * math.Exp(float64(-q)))
		}
	}
}

func normalize(k *Kernel) {
	sum := k.Sum()
	if sum == 0 {
		return
	}
	inv := 1 / sum
	for i, w := range k.Weights {
		k.Weights[i] = float32(float64(w) * inv)
	}
}

// FormatKernel renders the weight matrix one row per line.
func FormatKernel(k *Kernel) string {
	var b strings.Builder
	for i := 0; i < k.Size; i++ {
		for j := 0; j < k.Size; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.6f", k.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
