package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/memstore/internal/domain/data"
	domainerrors "github.com/leengari/memstore/internal/domain/errors"
	"github.com/leengari/memstore/internal/domain/schema"
	"github.com/leengari/memstore/internal/query/indexing"
	"github.com/leengari/memstore/internal/query/predicate"
)

func newUsersEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	eng := New(nil, opts)
	assert.NilError(t, eng.CreateDatabase("app"))
	assert.NilError(t, eng.CreateTable("app", "users", []schema.Column{
		{Name: "name", Type: schema.ColumnTypeText},
		{Name: "age", Type: schema.ColumnTypeInt},
	}))
	return eng
}

func user(name string, age int64) map[string]data.Value {
	return map[string]data.Value{"name": data.String(name), "age": data.Int(age)}
}

func TestEngineCRUD(t *testing.T) {
	eng := newUsersEngine(t, Options{})

	rec, err := eng.Insert("app", "users", user("alice", 30))
	assert.NilError(t, err)

	got, err := eng.Get("app", "users", rec.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.Values["name"], data.String("alice"))

	_, err = eng.Update("app", "users", rec.ID, map[string]data.Value{"age": data.Int(31)})
	assert.NilError(t, err)

	rows, err := eng.FilterEquals("app", "users", map[string]data.Value{"age": data.Int(31)})
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 1)

	assert.NilError(t, eng.Delete("app", "users", rec.ID))
	_, err = eng.Get("app", "users", rec.ID)
	assert.Assert(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestEngineUnknownTargets(t *testing.T) {
	eng := newUsersEngine(t, Options{})

	_, err := eng.SelectAll("nope", "users")
	assert.Assert(t, errors.Is(err, domainerrors.ErrNotFound))

	_, err = eng.SelectAll("app", "nope")
	assert.Assert(t, errors.Is(err, domainerrors.ErrNotFound))

	err = eng.CreateDatabase("app")
	assert.Assert(t, errors.Is(err, domainerrors.ErrAlreadyExists))
}

func TestEngineDescribeTable(t *testing.T) {
	eng := newUsersEngine(t, Options{})
	_, err := eng.Insert("app", "users", user("alice", 30))
	assert.NilError(t, err)
	assert.NilError(t, eng.CreateIndex("app", "users", "name"))

	info, err := eng.DescribeTable("app", "users")
	assert.NilError(t, err)
	assert.Equal(t, info.Records, 1)
	assert.DeepEqual(t, info.Indexes, []string{"name"})
	assert.Equal(t, len(info.Columns), 2)
}

func TestEngineSaveLoadRebuildsConfiguredIndexes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	eng := newUsersEngine(t, Options{
		SnapshotPath: path,
		Indexes:      indexing.Spec{"app": {"users": {"name"}}},
	})
	_, err := eng.Insert("app", "users", user("alice", 30))
	assert.NilError(t, err)

	saved, err := eng.Save("")
	assert.NilError(t, err)
	assert.Equal(t, saved, path)

	_, err = eng.Load("")
	assert.NilError(t, err)

	rows, err := eng.SelectByIndex("app", "users", "name", data.String("alice"))
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 1)

	// age was never configured, so it has no index after the load
	_, err = eng.SelectByIndex("app", "users", "age", data.Int(30))
	assert.Assert(t, errors.Is(err, domainerrors.ErrNoIndex))
}

func TestEngineLoadFailureKeepsState(t *testing.T) {
	eng := newUsersEngine(t, Options{})
	_, err := eng.Insert("app", "users", user("alice", 30))
	assert.NilError(t, err)

	_, err = eng.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Assert(t, err != nil)

	rows, err := eng.SelectAll("app", "users")
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 1)
}

func TestEngineSaveWithoutPath(t *testing.T) {
	eng := New(nil, Options{})
	_, err := eng.Save("")
	assert.ErrorContains(t, err, "no snapshot path")
}

func TestEngineConcurrentWritersKeepIndexConsistent(t *testing.T) {
	eng := newUsersEngine(t, Options{})
	assert.NilError(t, eng.CreateIndex("app", "users", "age"))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				rec, err := eng.Insert("app", "users", user(fmt.Sprintf("u%d-%d", w, i), int64(i%5)))
				if err != nil {
					t.Errorf("insert: %v", err)
					return
				}
				if i%3 == 0 {
					if _, err := eng.Update("app", "users", rec.ID, map[string]data.Value{"age": data.Int(99)}); err != nil {
						t.Errorf("update: %v", err)
					}
				}
			}
		}(w)
	}
	wg.Wait()

	for age := int64(0); age < 5; age++ {
		viaIndex, err := eng.SelectByIndex("app", "users", "age", data.Int(age))
		assert.NilError(t, err)
		viaScan, err := eng.SelectWhere("app", "users", predicate.Query{
			Groups: []predicate.Group{{predicate.Cond("age", predicate.OpEq, data.Int(age))}},
		})
		assert.NilError(t, err)
		assert.Equal(t, len(viaIndex), len(viaScan))
	}
}
