package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/leapstack-labs/querykit/internal/history"
	"github.com/leapstack-labs/querykit/internal/testutil"
	"github.com/leapstack-labs/querykit/pkg/dialect"
	"github.com/leapstack-labs/querykit/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestServer(t *testing.T) (*Server, *history.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'grace')`)
	require.NoError(t, err)

	d, ok := dialect.Get("sqlite")
	require.True(t, ok)

	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := NewServer(Config{
		DB:      query.NewDatabase(db, d),
		History: store,
		Logger:  testutil.NewTestLogger(t),
	})
	return srv, store
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestQueryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/v1/query",
		`{"sql": "SELECT id, name FROM users ORDER BY id"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"id", "name"}, resp.Columns)
	assert.Equal(t, 2, resp.RowCount)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "ada", resp.Rows[0][1])
	assert.Equal(t, "grace", resp.Rows[1][1])
}

func TestQueryWithParams(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/v1/query",
		`{"sql": "SELECT name FROM users WHERE id = ?", "params": [2]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp queryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.RowCount)
	assert.Equal(t, "grace", resp.Rows[0][0])
}

func TestQueryRejectsNonSelect(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, stmt := range []string{
		"DELETE FROM users",
		"UPDATE users SET name = 'x'",
		"DROP TABLE users",
		"  insert into users (id, name) values (3, 'mallory')",
	} {
		rec := doJSON(t, srv.Routes(), http.MethodPost, "/v1/query",
			`{"sql": `+strconv.Quote(stmt)+`}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, stmt)
		assert.Contains(t, rec.Body.String(), "only SELECT statements")
	}
}

func TestQueryEmptySQL(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/v1/query", `{"sql": "  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sql must not be empty")
}

func TestExecEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/v1/exec",
		`{"sql": "INSERT INTO users (id, name) VALUES (?, ?)", "params": [3, "lin"]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp execResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.RowsAffected)
}

func TestTableCount(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/v1/tables/users/count", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp countResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "users", resp.Table)
	assert.Equal(t, int64(2), resp.Count)
}

func TestTableCountQuotesName(t *testing.T) {
	srv, _ := newTestServer(t)
	// A hostile table name compiles to a quoted identifier, so the engine
	// reports a missing table instead of executing the payload.
	rec := doJSON(t, srv.Routes(), http.MethodGet, "/v1/tables/users%3B%20DROP%20TABLE%20users/count", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var n int
	require.NoError(t, srv.db.DB().QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 2, n, "users table should survive")
}

func TestQueryRecordsHistory(t *testing.T) {
	srv, store := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/v1/query", `{"sql": "SELECT * FROM users"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	runs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "gateway", runs[0].Source)
	assert.Equal(t, "sqlite", runs[0].Dialect)
	assert.Equal(t, "SELECT * FROM users", runs[0].SQL)
	assert.Equal(t, int64(2), runs[0].RowCount)
	assert.Empty(t, runs[0].Error)
}

func TestExecRecordsFailedRun(t *testing.T) {
	srv, store := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/v1/exec", `{"sql": "INSERT INTO missing VALUES (1)"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	runs, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEmpty(t, runs[0].Error)
}
