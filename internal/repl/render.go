package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/domain/schema"
	"github.com/leengari/memstore/internal/engine"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderNames(w io.Writer, header string, names []string) {
	if len(names) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{header})
	for _, n := range names {
		t.AppendRow(table.Row{n})
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(names))
}

// renderRecords prints one row per record with the columns in schema order.
// The header carries the declared type of each column.
func renderRecords(w io.Writer, columns []schema.Column, recs []*data.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := newTable(w)
	header := table.Row{"id"}
	for _, col := range columns {
		header = append(header, fmt.Sprintf("%s (%s)", col.Name, col.Type))
	}
	t.AppendHeader(header)

	for _, rec := range recs {
		row := table.Row{rec.ID}
		for _, col := range columns {
			v, ok := rec.Get(col.Name)
			if !ok {
				row = append(row, "NULL")
				continue
			}
			row = append(row, v.String())
		}
		t.AppendRow(row)
	}
	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(recs))
}

func renderTableInfo(w io.Writer, info engine.TableInfo) {
	indexed := make(map[string]bool, len(info.Indexes))
	for _, col := range info.Indexes {
		indexed[col] = true
	}

	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s.%s", info.Database, info.Name))
	t.AppendHeader(table.Row{"column", "type", "indexed"})
	for _, col := range info.Columns {
		mark := ""
		if indexed[col.Name] {
			mark = "yes"
		}
		t.AppendRow(table.Row{col.Name, col.Type, mark})
	}
	t.Render()

	indexes := "none"
	if len(info.Indexes) > 0 {
		indexes = strings.Join(info.Indexes, ", ")
	}
	fmt.Fprintf(w, "records: %d, indexes: %s, created: %s\n",
		info.Records, indexes, info.CreatedAt.Format("2006-01-02 15:04:05"))
}
