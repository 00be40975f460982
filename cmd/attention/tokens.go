package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/attention/internal/attention"
	"github.com/born-ml/attention/internal/matrixio"
	"github.com/born-ml/attention/internal/parallel"
	"github.com/born-ml/attention/internal/tensor"
	"github.com/born-ml/attention/internal/tokenizer"
)

func newTokensCmd(flags *globalFlags) *cobra.Command {
	var (
		encoding string
		dim      int
		out      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "tokens TEXT",
		Short: "Show causal self-attention weights over the tokens of TEXT",
		Long: `Tokenize TEXT, embed every token with a fixed pseudo-random row and run
self-attention with Q = K = V = the embeddings. Prints the weight matrix
labelled by token.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dim < 1 {
				return fmt.Errorf("--dim must be at least 1, got %d", dim)
			}

			dt, err := tensor.ParseDataType(out.dtype)
			if err != nil {
				return err
			}

			tok, err := tokenizer.NewTikToken(encoding)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			cfg := flags.parallelConfig()
			switch dt {
			case tensor.Float32:
				return runTokens[float32](cmd.OutOrStdout(), tok, text, dim, cfg, out)
			default:
				return runTokens[float64](cmd.OutOrStdout(), tok, text, dim, cfg, out)
			}
		},
	}

	cmd.Flags().StringVar(&encoding, "encoding", tokenizer.DefaultEncoding, "tiktoken encoding")
	cmd.Flags().IntVar(&dim, "dim", 16, "embedding width (d_k = d_v)")
	cmd.Flags().BoolVar(&out.extra, "output", false, "also print the attention output rows")
	out.register(cmd)

	return cmd
}

func runTokens[T tensor.Float](w io.Writer, tok tokenizer.Tokenizer, text string, dim int, cfg parallel.Config, out outputFlags) error {
	ids, err := tok.Encode(text)
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}
	pieces, err := tokenizer.Pieces(tok, ids)
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}
	slog.Debug("tokenized", "encoding", tok.Name(), "tokens", len(ids))

	x := tokenizer.Embed[T](ids, dim)
	output, weights, err := attention.NewEngine[T](cfg).ComputeWithWeights(x, x, x)
	if err != nil {
		return err
	}

	labels := make([]string, len(pieces))
	for i, p := range pieces {
		labels[i] = strconv.Quote(p)
	}

	matrixio.Render(w, weights, matrixio.RenderOptions{
		Precision: out.precision,
		RowLabels: labels,
		ColLabels: labels,
	})

	if out.extra {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "output:")
		matrixio.Render(w, output, matrixio.RenderOptions{Precision: out.precision, RowLabels: labels})
	}
	return nil
}
