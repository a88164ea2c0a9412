package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	pgmblur "github.com/rprtr258/pgmblur/pkg"
)

var (
	_flagInput = &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "input image, .pgm, .png or .tiff",
		Required: true,
	}
	_flagOutput = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output image, derived from input name when omitted",
	}
	_flagSize = &cli.IntFlag{
		Name:    "size",
		Aliases: []string{"k"},
		Usage:   "kernel side, odd",
		Value:   3,
	}
	_flagWorkers = &cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "number of worker goroutines, GOMAXPROCS when 0",
	}
	_flagSchedule = &cli.StringFlag{
		Name:  "schedule",
		Usage: "row distribution between workers: dynamic or static",
		Value: pgmblur.ScheduleDynamic.String(),
	}
	_flagSampleOrder = &cli.StringFlag{
		Name:  "sample-order",
		Usage: "byte order of 16-bit pgm samples: big, little or host",
		Value: "big",
	}
	_flagCenterWeight = &cli.Float64Flag{
		Name:    "center-weight",
		Aliases: []string{"f"},
		Usage:   "weight of the center cell of the weighted kernel",
		Value:   1,
	}
	_flagCenterPolicy = &cli.StringFlag{
		Name:  "center-policy",
		Usage: "what to do with center weight outside (0, 1): pass, clamp or reject",
		Value: pgmblur.CenterWeightPassThrough.String(),
	}
	_flagNormalize = &cli.BoolFlag{
		Name:  "normalize",
		Usage: "rescale gaussian weights to sum to 1",
	}
)

func sampleOrder(name string) (pgmblur.CodecOptions, error) {
	if name == "host" {
		return pgmblur.CodecOptions{SampleOrder: pgmblur.HostByteOrder()}, nil
	}
	order, err := pgmblur.ParseByteOrder(name)
	if err != nil {
		return pgmblur.CodecOptions{}, err
	}
	return pgmblur.CodecOptions{SampleOrder: order}, nil
}

// kernelOptions reads only the flags that matter for kind, so commands
// that do not declare them still work.
func kernelOptions(ctx *cli.Context, kind pgmblur.KernelKind) (pgmblur.KernelOptions, error) {
	var opts pgmblur.KernelOptions
	switch kind {
	case pgmblur.KernelWeightedCenter:
		policy, err := pgmblur.ParseCenterWeightPolicy(ctx.String(_flagCenterPolicy.Name))
		if err != nil {
			return pgmblur.KernelOptions{}, err
		}
		opts.CenterWeight = float32(ctx.Float64(_flagCenterWeight.Name))
		opts.CenterWeightPolicy = policy
	case pgmblur.KernelGaussian:
		opts.NormalizeGaussian = ctx.Bool(_flagNormalize.Name)
	}
	return opts, nil
}

func blurConfig(ctx *cli.Context, kind pgmblur.KernelKind) (pgmblur.Config, error) {
	schedule, err := pgmblur.ParseSchedule(ctx.String(_flagSchedule.Name))
	if err != nil {
		return pgmblur.Config{}, err
	}
	codec, err := sampleOrder(ctx.String(_flagSampleOrder.Name))
	if err != nil {
		return pgmblur.Config{}, err
	}
	kernel, err := kernelOptions(ctx, kind)
	if err != nil {
		return pgmblur.Config{}, err
	}

	return pgmblur.Config{
		KernelKind: kind,
		KernelSize: ctx.Int(_flagSize.Name),
		Kernel:     kernel,
		Workers:    ctx.Int(_flagWorkers.Name),
		Schedule:   schedule,
		InputPath:  ctx.String(_flagInput.Name),
		OutputPath: ctx.String(_flagOutput.Name),
		Codec:      codec,
	}, nil
}

func runBlur(ctx *cli.Context, kind pgmblur.KernelKind) error {
	cfg, err := blurConfig(ctx, kind)
	if err != nil {
		return err
	}

	stats, err := pgmblur.BlurFilter(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, stats.OutputPath)
	return err
}

func blurFlags() []cli.Flag {
	return []cli.Flag{
		_flagInput,
		_flagOutput,
		_flagSize,
		_flagWorkers,
		_flagSchedule,
		_flagSampleOrder,
	}
}

func blurCommand(name, usage string, kind pgmblur.KernelKind, flags ...cli.Flag) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: append(blurFlags(), flags...),
		Action: func(ctx *cli.Context) error {
			return runBlur(ctx, kind)
		},
	}
}

func newApp(stdout io.Writer) *cli.App {
	var verbose bool
	return &cli.App{
		Name:      "pgmblur",
		Usage:     "blur grayscale images with box, weighted-center or gaussian kernels",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "log kernel and padding details",
				Destination: &verbose,
			},
		},
		Before: func(ctx *cli.Context) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			pgmblur.SetLogger(slog.New(slog.NewTextHandler(ctx.App.ErrWriter, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			blurCommand("box", "blur with the mean of the k x k neighbourhood", pgmblur.KernelBox),
			blurCommand("weighted", "blur keeping weight f on the center pixel", pgmblur.KernelWeightedCenter,
				_flagCenterWeight, _flagCenterPolicy),
			blurCommand("gaussian", "blur with a sigma=10 gaussian", pgmblur.KernelGaussian,
				_flagNormalize),
			{
				Name:  "blur",
				Usage: "blur with kernel chosen by number or name",
				Flags: append(blurFlags(),
					&cli.StringFlag{
						Name:     "kind",
						Usage:    "0/box, 1/weighted or 2/gaussian",
						Required: true,
					},
					_flagCenterWeight,
					_flagCenterPolicy,
					_flagNormalize,
				),
				Action: func(ctx *cli.Context) error {
					kind, err := pgmblur.ParseKernelKind(ctx.String("kind"))
					if err != nil {
						return err
					}
					return runBlur(ctx, kind)
				},
			},
			{
				Name:  "kernel",
				Usage: "print kernel weights",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "0/box, 1/weighted or 2/gaussian",
						Value: pgmblur.KernelBox.String(),
					},
					_flagSize,
					_flagCenterWeight,
					_flagCenterPolicy,
					_flagNormalize,
				},
				Action: func(ctx *cli.Context) error {
					kind, err := pgmblur.ParseKernelKind(ctx.String("kind"))
					if err != nil {
						return err
					}
					opts, err := kernelOptions(ctx, kind)
					if err != nil {
						return err
					}
					k, err := pgmblur.NewKernel(kind, ctx.Int(_flagSize.Name), opts)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(ctx.App.Writer, "%ssum: %.6f\n", pgmblur.FormatKernel(k), k.Sum())
					return err
				},
			},
			{
				Name:  "gradient",
				Usage: "generate a vertical gradient test image",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Value: 256},
					&cli.IntFlag{Name: "height", Value: 256},
					&cli.IntFlag{Name: "maxval", Value: 255},
					_flagSampleOrder,
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "output image, .pgm, .png or .tiff",
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					im, err := pgmblur.Gradient(ctx.Int("maxval"), ctx.Int("width"), ctx.Int("height"))
					if err != nil {
						return err
					}
					codec, err := sampleOrder(ctx.String(_flagSampleOrder.Name))
					if err != nil {
						return err
					}
					output := ctx.String("output")
					if err := pgmblur.SaveImageFile(im, output, codec); err != nil {
						return err
					}
					_, err = fmt.Fprintln(ctx.App.Writer, output)
					return err
				},
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		slog.Error("pgmblur failed", "err", err)
		os.Exit(1)
	}
}
