package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leengari/memstore/internal/domain/schema"
	"github.com/leengari/memstore/internal/storage"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [snapshot]",
		Short: "Summarize a snapshot file",
		Long: `Read a snapshot file without starting a store and print its databases,
tables, columns and record counts. Defaults to the configured snapshot path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := GetConfig(cmd.Context()).SnapshotPath
			if len(args) == 1 {
				path = args[0]
			}

			databases, err := storage.LoadFile(path)
			if err != nil {
				return err
			}
			renderSnapshot(cmd.OutOrStdout(), path, databases)
			return nil
		},
	}
}

func renderSnapshot(w io.Writer, path string, databases map[string]*schema.Database) {
	if len(databases) == 0 {
		_, _ = fmt.Fprintf(w, "%s: empty snapshot\n", path)
		return
	}

	names := make([]string, 0, len(databases))
	for name := range databases {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(path)
	t.AppendHeader(table.Row{"database", "table", "columns", "records"})

	tables, records := 0, 0
	for _, name := range names {
		db := databases[name]
		if len(db.Tables) == 0 {
			t.AppendRow(table.Row{name, "-", "-", 0})
			continue
		}
		for _, tableName := range db.TableNames() {
			tbl := db.Tables[tableName]
			cols := make([]string, len(tbl.Schema.Columns))
			for i, col := range tbl.Schema.Columns {
				cols[i] = fmt.Sprintf("%s %s", col.Name, col.Type)
			}
			t.AppendRow(table.Row{name, tableName, strings.Join(cols, ", "), tbl.Len()})
			tables++
			records += tbl.Len()
		}
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d databases, %d tables, %d records)\n", len(databases), tables, records)
}
