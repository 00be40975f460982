package matrixio

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/born-ml/attention/internal/tensor"
)

// RenderOptions controls table output.
type RenderOptions struct {
	Precision int      // Digits after the decimal point.
	RowLabels []string // Optional label per row; defaults to the row index.
	ColLabels []string // Optional header; defaults to the column index.
}

// Render writes m to w as a table.
func Render[T tensor.Float](w io.Writer, m *tensor.Matrix[T], opts RenderOptions) {
	header := make([]string, 0, m.Cols()+1)
	header = append(header, "")
	for j := 0; j < m.Cols(); j++ {
		header = append(header, label(opts.ColLabels, j))
	}

	bitSize := 64
	if m.DataType() == tensor.Float32 {
		bitSize = 32
	}

	data := make([][]string, m.Rows())
	for i := range data {
		row := make([]string, 0, m.Cols()+1)
		row = append(row, label(opts.RowLabels, i))
		for _, x := range m.Row(i) {
			row = append(row, strconv.FormatFloat(float64(x), 'f', opts.Precision, bitSize))
		}
		data[i] = row
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")
	table.AppendBulk(data)
	table.Render()
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return strconv.Itoa(i)
}
