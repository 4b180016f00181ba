package output

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable writes a pretty table to out.
func RenderTable(out io.Writer, headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(out)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}
