// Package repl is the line-oriented admin shell over the engine.
package repl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/leengari/memstore/internal/domain/data"
	"github.com/leengari/memstore/internal/domain/schema"
	"github.com/leengari/memstore/internal/engine"
	"github.com/leengari/memstore/internal/query/predicate"
)

// ErrQuit is returned by Execute for exit and \q
var ErrQuit = errors.New("quit")

type Shell struct {
	engine  *engine.Engine
	out     io.Writer
	current string // selected database
}

func NewShell(eng *engine.Engine, out io.Writer) *Shell {
	return &Shell{engine: eng, out: out}
}

func (s *Shell) Prompt() string {
	if s.current == "" {
		return "memstore> "
	}
	return fmt.Sprintf("memstore(%s)> ", s.current)
}

// Start runs the interactive shell on the terminal until exit or EOF
func (s *Shell) Start(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.Prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintln(s.out, "Welcome to memstore")
	fmt.Fprintln(s.out, "Type 'help' for commands, 'exit' or '\\q' to quit.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		rl.SetPrompt(s.Prompt())
	}
}

// Run executes every line of in, printing errors inline. Used for piped input.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := s.Execute(scanner.Text()); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (s *Shell) completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("dbs"),
		readline.PcItem("createdb"),
		readline.PcItem("dropdb"),
		readline.PcItem("use"),
		readline.PcItem("tables"),
		readline.PcItem("create"),
		readline.PcItem("drop"),
		readline.PcItem("describe"),
		readline.PcItem("select"),
		readline.PcItem("filter"),
		readline.PcItem("where"),
		readline.PcItem("get"),
		readline.PcItem("insert"),
		readline.PcItem("update"),
		readline.PcItem("delete"),
		readline.PcItem("index"),
		readline.PcItem("dropindex"),
		readline.PcItem("lookup"),
		readline.PcItem("save"),
		readline.PcItem("load"),
		readline.PcItem("exit"),
	)
}

// Execute runs a single command line
func (s *Shell) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd, rest := cut(line)

	switch strings.ToLower(cmd) {
	case "exit", "quit", "\\q":
		return ErrQuit
	case "help":
		printHelp(s.out)
		return nil
	case "dbs", "ls":
		return s.listDatabases()
	case "createdb":
		return s.createDatabase(rest)
	case "dropdb":
		return s.dropDatabase(rest)
	case "use":
		return s.use(rest)
	case "save":
		return s.save(rest)
	case "load":
		return s.load(rest)
	}

	// everything below works on the selected database
	if s.current == "" {
		return fmt.Errorf("no database selected (use <db>)")
	}

	switch strings.ToLower(cmd) {
	case "tables":
		return s.listTables()
	case "create":
		return s.createTable(rest)
	case "drop":
		return s.dropTable(rest)
	case "describe", "desc":
		return s.describe(rest)
	case "select":
		return s.selectAll(rest)
	case "filter":
		return s.filter(rest)
	case "where":
		return s.where(rest)
	case "get":
		return s.get(rest)
	case "insert":
		return s.insert(rest)
	case "update":
		return s.update(rest)
	case "delete":
		return s.delete(rest)
	case "index":
		return s.createIndex(rest)
	case "dropindex":
		return s.dropIndex(rest)
	case "lookup":
		return s.lookup(rest)
	}
	return fmt.Errorf("unknown command %q (type help)", cmd)
}

func (s *Shell) listDatabases() error {
	names := s.engine.ListDatabases()
	renderNames(s.out, "database", names)
	return nil
}

func (s *Shell) createDatabase(args string) error {
	name, _ := cut(args)
	if name == "" {
		return usage("createdb <name>")
	}
	if err := s.engine.CreateDatabase(name); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "database %s created\n", name)
	return nil
}

func (s *Shell) dropDatabase(args string) error {
	name, _ := cut(args)
	if name == "" {
		return usage("dropdb <name>")
	}
	if err := s.engine.DropDatabase(name); err != nil {
		return err
	}
	if s.current == name {
		s.current = ""
	}
	fmt.Fprintf(s.out, "database %s dropped\n", name)
	return nil
}

func (s *Shell) use(args string) error {
	name, _ := cut(args)
	if name == "" {
		return usage("use <db>")
	}
	if _, err := s.engine.ListTables(name); err != nil {
		return err
	}
	s.current = name
	fmt.Fprintf(s.out, "using %s\n", name)
	return nil
}

func (s *Shell) listTables() error {
	names, err := s.engine.ListTables(s.current)
	if err != nil {
		return err
	}
	renderNames(s.out, "table", names)
	return nil
}

// createTable parses: create <table> <column>:<TYPE> ...
func (s *Shell) createTable(args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return usage("create <table> <column>:<type> ...")
	}

	columns := make([]schema.Column, 0, len(fields)-1)
	for _, f := range fields[1:] {
		name, typ, ok := strings.Cut(f, ":")
		if !ok || name == "" || typ == "" {
			return fmt.Errorf("invalid column %q, want name:TYPE", f)
		}
		columns = append(columns, schema.Column{Name: name, Type: schema.ColumnType(typ)})
	}

	if err := s.engine.CreateTable(s.current, fields[0], columns); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "table %s created\n", fields[0])
	return nil
}

func (s *Shell) dropTable(args string) error {
	table, _ := cut(args)
	if table == "" {
		return usage("drop <table>")
	}
	if err := s.engine.DropTable(s.current, table); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "table %s dropped\n", table)
	return nil
}

func (s *Shell) describe(args string) error {
	table, _ := cut(args)
	if table == "" {
		return usage("describe <table>")
	}
	info, err := s.engine.DescribeTable(s.current, table)
	if err != nil {
		return err
	}
	renderTableInfo(s.out, info)
	return nil
}

func (s *Shell) selectAll(args string) error {
	table, rest := cut(args)
	if table == "" {
		return usage("select <table> [limit]")
	}

	limit := -1
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid limit %q", rest)
		}
		limit = n
	}

	recs, err := s.engine.SelectAll(s.current, table)
	if err != nil {
		return err
	}
	if limit >= 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return s.renderRecords(table, recs)
}

func (s *Shell) filter(args string) error {
	table, rest := cut(args)
	if table == "" || rest == "" {
		return usage("filter <table> <json object>")
	}
	conditions, err := s.decodeObject(table, rest)
	if err != nil {
		return err
	}
	recs, err := s.engine.FilterEquals(s.current, table, conditions)
	if err != nil {
		return err
	}
	return s.renderRecords(table, recs)
}

// where runs an extended query; the JSON has the same shape as the HTTP
// query body: {"groups":[[...]],"order_by":"...","descending":true,"limit":n}
func (s *Shell) where(args string) error {
	table, rest := cut(args)
	if table == "" || rest == "" {
		return usage("where <table> <json query>")
	}
	kinds, err := s.engine.ColumnKinds(s.current, table)
	if err != nil {
		return err
	}

	var body predicate.QueryJSON
	if err := json.Unmarshal([]byte(rest), &body); err != nil {
		return fmt.Errorf("invalid JSON query: %w", err)
	}
	q, err := body.Query(kinds)
	if err != nil {
		return err
	}

	recs, err := s.engine.SelectWhere(s.current, table, q)
	if err != nil {
		return err
	}
	return s.renderRecords(table, recs)
}

func (s *Shell) get(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return usage("get <table> <id>")
	}
	rec, err := s.engine.Get(s.current, fields[0], fields[1])
	if err != nil {
		return err
	}
	return s.renderRecords(fields[0], []*data.Record{rec})
}

func (s *Shell) insert(args string) error {
	table, rest := cut(args)
	if table == "" || rest == "" {
		return usage("insert <table> <json object>")
	}
	values, err := s.decodeObject(table, rest)
	if err != nil {
		return err
	}
	rec, err := s.engine.Insert(s.current, table, values)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "inserted %s\n", rec.ID)
	return nil
}

func (s *Shell) update(args string) error {
	table, rest := cut(args)
	id, rest := cut(rest)
	if table == "" || id == "" || rest == "" {
		return usage("update <table> <id> <json object>")
	}
	values, err := s.decodeObject(table, rest)
	if err != nil {
		return err
	}
	if _, err := s.engine.Update(s.current, table, id, values); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "updated %s\n", id)
	return nil
}

func (s *Shell) delete(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return usage("delete <table> <id>")
	}
	if err := s.engine.Delete(s.current, fields[0], fields[1]); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "deleted %s\n", fields[1])
	return nil
}

func (s *Shell) createIndex(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return usage("index <table> <column>")
	}
	if err := s.engine.CreateIndex(s.current, fields[0], fields[1]); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "index on %s.%s created\n", fields[0], fields[1])
	return nil
}

func (s *Shell) dropIndex(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return usage("dropindex <table> <column>")
	}
	if err := s.engine.DropIndex(s.current, fields[0], fields[1]); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "index on %s.%s dropped\n", fields[0], fields[1])
	return nil
}

func (s *Shell) lookup(args string) error {
	table, rest := cut(args)
	column, rest := cut(rest)
	if table == "" || column == "" || rest == "" {
		return usage("lookup <table> <column> <json value>")
	}
	kinds, err := s.engine.ColumnKinds(s.current, table)
	if err != nil {
		return err
	}
	value, err := data.ParseJSON(json.RawMessage(rest), kinds[column])
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	recs, err := s.engine.SelectByIndex(s.current, table, column, value)
	if err != nil {
		return err
	}
	return s.renderRecords(table, recs)
}

func (s *Shell) save(args string) error {
	path, err := s.engine.Save(strings.TrimSpace(args))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved to %s\n", path)
	return nil
}

func (s *Shell) load(args string) error {
	path, err := s.engine.Load(strings.TrimSpace(args))
	if err != nil {
		return err
	}
	if s.current != "" {
		if _, err := s.engine.ListTables(s.current); err != nil {
			s.current = ""
		}
	}
	fmt.Fprintf(s.out, "loaded %s (%d databases)\n", path, len(s.engine.ListDatabases()))
	return nil
}

// decodeObject reads a JSON object of column values using the table's kinds
func (s *Shell) decodeObject(table, raw string) (map[string]data.Value, error) {
	kinds, err := s.engine.ColumnKinds(s.current, table)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}

	values := make(map[string]data.Value, len(fields))
	for col, b := range fields {
		v, err := data.ParseJSON(b, kinds[col])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		values[col] = v
	}
	return values, nil
}

func (s *Shell) renderRecords(table string, recs []*data.Record) error {
	info, err := s.engine.DescribeTable(s.current, table)
	if err != nil {
		return err
	}
	renderRecords(s.out, info.Columns, recs)
	return nil
}

// cut splits off the first word of s
func cut(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func usage(u string) error {
	return fmt.Errorf("usage: %s", u)
}

func printHelp(w io.Writer) {
	help := `
Commands:
  dbs                               List databases
  createdb <name>                   Create a database
  dropdb <name>                     Drop a database
  use <db>                          Select a database
  tables                            List tables of the selected database
  create <table> <col>:<TYPE> ...   Create a table (INT, FLOAT, TEXT, BOOL)
  drop <table>                      Drop a table
  describe <table>                  Show columns and indexes
  select <table> [limit]            List records in insertion order
  filter <table> <json>             Records whose columns equal the given values
  where <table> <json>              Extended query, e.g.
                                    where users {"groups":[[{"column":"age","op":">","value":30}]],"order_by":"age","limit":5}
  get <table> <id>                  Show one record
  insert <table> <json>             Insert a record, e.g. insert users {"name":"a","age":3}
  update <table> <id> <json>        Merge values into a record
  delete <table> <id>               Delete a record
  index <table> <column>            Build an index
  dropindex <table> <column>        Drop an index
  lookup <table> <column> <json>    Indexed point lookup
  save [path]                       Write a snapshot
  load [path]                       Replace the store with a snapshot
  exit / \q                         Quit
`
	fmt.Fprintln(w, help)
}
