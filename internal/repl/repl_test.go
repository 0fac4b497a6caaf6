package repl

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	domainerrors "github.com/leengari/memstore/internal/domain/errors"
	"github.com/leengari/memstore/internal/engine"
)

func newShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	eng := engine.New(nil, engine.Options{SnapshotPath: filepath.Join(t.TempDir(), "snap.json")})
	return NewShell(eng, &out), &out
}

func run(t *testing.T, s *Shell, out *bytes.Buffer, script string) string {
	t.Helper()
	out.Reset()
	assert.NilError(t, s.Run(strings.NewReader(script)))
	return out.String()
}

const setup = `createdb app
use app
create users name:TEXT age:int
`

func TestShellCreateAndSelect(t *testing.T) {
	s, out := newShell(t)

	got := run(t, s, out, setup+`insert users {"name":"alice","age":30}
insert users {"name":"bob","age":25}
select users
`)
	assert.Check(t, is.Contains(got, "database app created"))
	assert.Check(t, is.Contains(got, "table users created"))
	assert.Check(t, is.Contains(got, "alice"))
	assert.Check(t, is.Contains(got, "bob"))
	assert.Check(t, is.Contains(got, "age (INT)"))
	assert.Check(t, is.Contains(got, "(2 rows)"))
	assert.Check(t, !strings.Contains(got, "Error:"), got)
	assert.Equal(t, s.Prompt(), "memstore(app)> ")

	got = run(t, s, out, "select users 1\n")
	assert.Check(t, is.Contains(got, "alice"))
	assert.Check(t, !strings.Contains(got, "bob"))
	assert.Check(t, is.Contains(got, "(1 rows)"))
}

func TestShellFilterIndexLookup(t *testing.T) {
	s, out := newShell(t)

	got := run(t, s, out, setup+`insert users {"name":"alice","age":30}
insert users {"name":"bob","age":30}
insert users {"name":"carol","age":41}
lookup users age 30
index users age
lookup users age 30
filter users {"age":41}
describe users
`)
	assert.Check(t, is.Contains(got, "no index"), got)
	assert.Check(t, is.Contains(got, "index on users.age created"))
	assert.Check(t, is.Contains(got, "(2 rows)"))
	assert.Check(t, is.Contains(got, "carol"))
	assert.Check(t, is.Contains(got, "app.users"))
	assert.Check(t, is.Contains(got, "indexes: age"))
}

func TestShellWhere(t *testing.T) {
	s, out := newShell(t)
	run(t, s, out, setup+`insert users {"name":"alice","age":30}
insert users {"name":"bob","age":25}
insert users {"name":"carol","age":41}
`)

	got := run(t, s, out, `where users {"groups":[[{"column":"age","op":">","value":26}]],"order_by":"age","descending":true,"limit":1}`+"\n")
	assert.Check(t, is.Contains(got, "carol"), got)
	assert.Check(t, !strings.Contains(got, "alice"))
	assert.Check(t, is.Contains(got, "(1 rows)"))

	got = run(t, s, out, `where users {"groups":[[{"column":"name","op":"in","value":["bob","carol"]}],[{"column":"name","op":"like","value":"al%"}]]}`+"\n")
	assert.Check(t, is.Contains(got, "(3 rows)"), got)

	got = run(t, s, out, "where users {}\n")
	assert.Check(t, is.Contains(got, "(0 rows)"), got)

	got = run(t, s, out, `where users {"groups":[[{"column":"age","op":"~","value":1}]]}`+"\n"+
		`where users {"groups":[[{"column":"age","op":">","value":null}]]}`+"\n"+
		"where users not-json\n")
	assert.Check(t, is.Equal(strings.Count(got, "Error:"), 3), got)
}

func TestShellRejectsInvalidRecords(t *testing.T) {
	s, out := newShell(t)

	got := run(t, s, out, setup+`insert users {"name":"alice","age":"30"}
insert users {"name":"alice"}
insert users not-json
select users
`)
	assert.Check(t, is.Equal(strings.Count(got, "Error:"), 3), got)
	assert.Check(t, is.Contains(got, "(0 rows)"))
}

func TestShellUpdateDelete(t *testing.T) {
	s, out := newShell(t)
	run(t, s, out, setup+`insert users {"name":"alice","age":30}`)

	recs, err := s.engine.SelectAll("app", "users")
	assert.NilError(t, err)
	assert.Assert(t, is.Len(recs, 1))
	id := recs[0].ID

	got := run(t, s, out, "update users "+id+` {"age":31}`+"\nget users "+id+"\n")
	assert.Check(t, is.Contains(got, "updated "+id))
	assert.Check(t, is.Contains(got, "31"))

	got = run(t, s, out, "delete users "+id+"\nget users "+id+"\n")
	assert.Check(t, is.Contains(got, "deleted "+id))
	assert.Check(t, is.Contains(got, "Error:"))
}

func TestShellSaveLoad(t *testing.T) {
	s, out := newShell(t)
	run(t, s, out, setup+`insert users {"name":"alice","age":30}`)

	got := run(t, s, out, "save\ndropdb app\ndbs\nload\nuse app\nselect users\n")
	assert.Check(t, is.Contains(got, "saved to "))
	assert.Check(t, is.Contains(got, "loaded "))
	assert.Check(t, is.Contains(got, "alice"))
	assert.Check(t, !strings.Contains(got, "Error:"), got)
}

func TestShellExecute(t *testing.T) {
	s, _ := newShell(t)

	assert.Check(t, errors.Is(s.Execute("exit"), ErrQuit))
	assert.Check(t, errors.Is(s.Execute(`\q`), ErrQuit))
	assert.NilError(t, s.Execute("   "))
	assert.ErrorContains(t, s.Execute("tables"), "no database selected")
	assert.ErrorContains(t, s.Execute("frobnicate"), "unknown command")
	assert.Check(t, errors.Is(s.Execute("use nope"), domainerrors.ErrNotFound))

	assert.NilError(t, s.Execute("createdb app"))
	assert.NilError(t, s.Execute("use app"))
	assert.ErrorContains(t, s.Execute("create users name"), "want name:TYPE")
	assert.Check(t, errors.Is(s.Execute("create users name:DATE"), domainerrors.ErrSchemaViolation))
	assert.ErrorContains(t, s.Execute("select"), "usage: select")
}

func TestShellRunStopsAtExit(t *testing.T) {
	s, out := newShell(t)
	got := run(t, s, out, "createdb a\nexit\ncreatedb b\n")
	assert.Check(t, is.Contains(got, "database a created"))
	assert.DeepEqual(t, s.engine.ListDatabases(), []string{"a"})
}

func TestCut(t *testing.T) {
	tests := []struct {
		in, head, rest string
	}{
		{"insert users {\"a\": 1}", "insert", "users {\"a\": 1}"},
		{"  save  ", "save", ""},
		{"", "", ""},
		{"use\tapp", "use", "app"},
	}
	for _, tt := range tests {
		head, rest := cut(tt.in)
		assert.Equal(t, head, tt.head)
		assert.Equal(t, rest, tt.rest)
	}
}
