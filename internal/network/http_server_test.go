package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/leengari/memstore/internal/domain/errors"
	"github.com/leengari/memstore/internal/engine"
	"github.com/leengari/memstore/internal/query/indexing"
)

type apiRecord struct {
	ID        string                 `json:"id"`
	Values    map[string]interface{} `json:"values"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}

type apiRecords struct {
	Records []apiRecord `json:"records"`
	Count   int         `json:"count"`
}

func newTestServer(t *testing.T, opts engine.Options) *HTTPServer {
	t.Helper()
	return NewHTTPServer(engine.New(nil, opts))
}

func do(t *testing.T, s *HTTPServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// seedUsers creates app.users(name TEXT, age INT)
func seedUsers(t *testing.T, s *HTTPServer) {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/databases", `{"name":"app"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPost, "/databases/app/tables",
		`{"name":"users","columns":[{"name":"name","type":"TEXT"},{"name":"age","type":"int"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func insertUser(t *testing.T, s *HTTPServer, name string, age int) apiRecord {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"values": map[string]interface{}{"name": name, "age": age}})
	require.NoError(t, err)
	rec := do(t, s, http.MethodPost, "/databases/app/tables/users/records", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[apiRecord](t, rec)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, engine.Options{})
	rec := do(t, s, http.MethodGet, "/hc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRecordLifecycle(t *testing.T) {
	s := newTestServer(t, engine.Options{})
	seedUsers(t, s)

	alice := insertUser(t, s, "alice", 30)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, alice.CreatedAt, alice.UpdatedAt)
	assert.Equal(t, float64(30), alice.Values["age"])

	rec := do(t, s, http.MethodPatch, "/databases/app/tables/users/records/"+alice.ID, `{"values":{"age":31}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[apiRecord](t, rec)
	assert.Equal(t, "alice", updated.Values["name"])
	assert.Equal(t, float64(31), updated.Values["age"])
	assert.NotEqual(t, updated.CreatedAt, updated.UpdatedAt)

	rec = do(t, s, http.MethodGet, "/databases/app/tables/users/records/"+alice.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, "/databases/app/tables/users/records/"+alice.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/databases/app/tables/users/records/"+alice.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domainerrors.KindNotFound, decode[ErrorResponse](t, rec).Kind)
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t, engine.Options{})
	seedUsers(t, s)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   domainerrors.Kind
	}{
		{"duplicate database", http.MethodPost, "/databases", `{"name":"app"}`, http.StatusConflict, domainerrors.KindAlreadyExists},
		{"missing database", http.MethodGet, "/databases/nope/tables", "", http.StatusNotFound, domainerrors.KindNotFound},
		{"missing table", http.MethodGet, "/databases/app/tables/nope", "", http.StatusNotFound, domainerrors.KindNotFound},
		{"string for int", http.MethodPost, "/databases/app/tables/users/records",
			`{"values":{"name":"bob","age":"30"}}`, http.StatusUnprocessableEntity, domainerrors.KindTypeMismatch},
		{"missing column", http.MethodPost, "/databases/app/tables/users/records",
			`{"values":{"name":"bob"}}`, http.StatusUnprocessableEntity, domainerrors.KindMissingColumn},
		{"undeclared column", http.MethodPost, "/databases/app/tables/users/records",
			`{"values":{"name":"bob","age":3,"email":"b@x"}}`, http.StatusUnprocessableEntity, domainerrors.KindSchemaViolation},
		{"null value", http.MethodPost, "/databases/app/tables/users/records",
			`{"values":{"name":null,"age":3}}`, http.StatusBadRequest, KindValidation},
		{"no values", http.MethodPost, "/databases/app/tables/users/records", `{}`, http.StatusBadRequest, KindValidation},
		{"lookup without index", http.MethodPost, "/databases/app/tables/users/indexes/age/lookup",
			`{"value":3}`, http.StatusPreconditionFailed, domainerrors.KindNoIndex},
		{"index unknown column", http.MethodPost, "/databases/app/tables/users/indexes",
			`{"column":"email"}`, http.StatusBadRequest, domainerrors.KindUnknownColumn},
		{"bad operator", http.MethodPost, "/databases/app/tables/users/query",
			`{"groups":[[{"column":"age","op":"~","value":1}]]}`, http.StatusBadRequest, domainerrors.KindUnsupportedOperator},
		{"bad operand", http.MethodPost, "/databases/app/tables/users/query",
			`{"groups":[[{"column":"age","op":">","value":"x"}]]}`, http.StatusBadRequest, domainerrors.KindUnsupportedOperand},
		{"bad column type", http.MethodPost, "/databases/app/tables",
			`{"name":"t","columns":[{"name":"a","type":"DATE"}]}`, http.StatusUnprocessableEntity, domainerrors.KindSchemaViolation},
		{"no columns", http.MethodPost, "/databases/app/tables",
			`{"name":"t","columns":[]}`, http.StatusBadRequest, KindValidation},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, domainerrors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.kind, decode[ErrorResponse](t, rec).Kind)
		})
	}
}

func TestQueryAndIndexLookup(t *testing.T) {
	s := newTestServer(t, engine.Options{})
	seedUsers(t, s)
	insertUser(t, s, "a", 25)
	r35 := insertUser(t, s, "b", 35)
	r40 := insertUser(t, s, "c", 40)

	rec := do(t, s, http.MethodPost, "/databases/app/tables/users/query",
		`{"groups":[[{"column":"age","op":">","value":30}]]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[apiRecords](t, rec)
	require.Equal(t, 2, got.Count)
	assert.Equal(t, r35.ID, got.Records[0].ID)

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/query",
		`{"groups":[[{"column":"age","op":">","value":30}]],"order_by":"age","descending":true,"limit":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode[apiRecords](t, rec)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, r40.ID, got.Records[0].ID)

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/query", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decode[apiRecords](t, rec).Count)

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/query", `{"groups":[[]]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, decode[apiRecords](t, rec).Count)

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/query",
		`{"groups":[[{"column":"name","op":"in","value":["a","c"]}]]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[apiRecords](t, rec).Count)

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/indexes", `{"column":"age"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/indexes/age/lookup", `{"value":40}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode[apiRecords](t, rec)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, r40.ID, got.Records[0].ID)

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/filter", `{"conditions":{"age":40}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[apiRecords](t, rec).Count)

	rec = do(t, s, http.MethodDelete, "/databases/app/tables/users/indexes/age", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSnapshotSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s := newTestServer(t, engine.Options{
		SnapshotPath: path,
		Indexes:      indexing.Spec{"app": {"users": {"name"}}},
	})
	seedUsers(t, s)
	alice := insertUser(t, s, "alice", 30)

	rec := do(t, s, http.MethodPost, "/snapshot/save", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, path, decode[SnapshotStats](t, rec).Path)

	rec = do(t, s, http.MethodDelete, "/databases/app", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodPost, "/snapshot/load", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"app"}, decode[SnapshotStats](t, rec).Databases)

	rec = do(t, s, http.MethodPost, "/databases/app/tables/users/indexes/name/lookup", `{"value":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[apiRecords](t, rec)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, alice.ID, got.Records[0].ID)
	assert.Equal(t, alice.CreatedAt, got.Records[0].CreatedAt)

	rec = do(t, s, http.MethodPost, "/snapshot/load", `{"path":"`+filepath.Join(t.TempDir(), "missing.json")+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(domainerrors.KindInternal))
	assert.Equal(t, http.StatusPreconditionFailed, StatusFor(domainerrors.KindNoIndex))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(domainerrors.KindCorruptSnapshot))
}
