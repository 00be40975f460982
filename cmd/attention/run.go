package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/attention/internal/attention"
	"github.com/born-ml/attention/internal/matrixio"
	"github.com/born-ml/attention/internal/parallel"
	"github.com/born-ml/attention/internal/tensor"
)

type outputFlags struct {
	dtype     string
	precision int
	extra     bool // run: also print weights; tokens: also print output rows
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dtype, "dtype", "float64", "element type: float32 or float64")
	cmd.Flags().IntVar(&o.precision, "precision", 4, "digits after the decimal point")
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		file string
		out  outputFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute attention for Q, K and V read from a YAML or JSON file",
		Long: `Compute attention for Q, K and V read from a YAML or JSON file.

The document holds three row lists:

  q: [[1, 0], [0, 1]]
  k: [[1, 0], [0, 1]]
  v: [[1, 0], [0, 1]]

Use "-" to read from standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, closeFn, err := openInput(cmd, file)
			if err != nil {
				return err
			}
			defer closeFn()

			dt, err := tensor.ParseDataType(out.dtype)
			if err != nil {
				return err
			}

			cfg := flags.parallelConfig()
			switch dt {
			case tensor.Float32:
				return runFile[float32](cmd.OutOrStdout(), r, cfg, out)
			default:
				return runFile[float64](cmd.OutOrStdout(), r, cfg, out)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input document (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().BoolVar(&out.extra, "weights", false, "also print the attention weights")
	out.register(cmd)

	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func runFile[T tensor.Float](w io.Writer, r io.Reader, cfg parallel.Config, out outputFlags) error {
	in, err := matrixio.Decode[T](r)
	if err != nil {
		return err
	}

	slog.Debug("computing attention",
		"q", in.Q.Shape(), "k", in.K.Shape(), "v", in.V.Shape(),
		"dtype", in.Q.DataType(), "parallel", cfg.Enabled, "workers", cfg.NumWorkers)

	output, weights, err := attention.NewEngine[T](cfg).ComputeWithWeights(in.Q, in.K, in.V)
	if err != nil {
		return err
	}

	if out.extra {
		fmt.Fprintln(w, "weights:")
		matrixio.Render(w, weights, matrixio.RenderOptions{Precision: out.precision})
		fmt.Fprintln(w)
		fmt.Fprintln(w, "output:")
	}
	matrixio.Render(w, output, matrixio.RenderOptions{Precision: out.precision})
	return nil
}
