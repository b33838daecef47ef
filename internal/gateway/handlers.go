package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/querykit/internal/history"
	"github.com/leapstack-labs/querykit/pkg/expr"
	"github.com/leapstack-labs/querykit/pkg/query"
	"github.com/leapstack-labs/querykit/pkg/rowset"
)

type statementRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

type queryResponse struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated,omitempty"`
}

type execResponse struct {
	RowsAffected int64 `json:"rows_affected"`
}

type countResponse struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

// handleQuery executes a read-only statement and returns the drained rows.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeStatement(w, r)
	if !ok {
		return
	}
	if !query.IsReadOnly(req.SQL) {
		http.Error(w, "only SELECT statements are allowed here; use /v1/exec for mutations", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	rs, err := s.db.RawQuery(ctx, req.SQL, req.Params...)

	var rowCount int64
	if rs != nil {
		rowCount = int64(rs.Len())
	}
	s.record(r.Context(), req.SQL, rowCount, time.Since(start), err)

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, rowSetResponse(rs))
}

// handleExec executes a mutating statement and returns the affected row
// count.
func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeStatement(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	affected, err := s.db.RawExec(ctx, req.SQL, req.Params...)
	s.record(r.Context(), req.SQL, affected, time.Since(start), err)

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, execResponse{RowsAffected: affected})
}

// handleTableCount counts the rows of one table. The statement is built
// through the expression tree so the table name is quoted per dialect
// rather than interpolated.
func (s *Server) handleTableCount(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if table == "" {
		http.Error(w, "table name required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	sel := expr.SelectFrom(expr.NewTable(table), expr.As(expr.Count(), "records"))
	rs, err := s.db.Query(sel).Cursor(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !rs.First() {
		http.Error(w, fmt.Sprintf("count query returned no rows for table %s", table), http.StatusInternalServerError)
		return
	}
	count, err := rs.Int64(1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Table: table, Count: count})
}

// decodeStatement parses the request body, writing the error response on
// failure.
func (s *Server) decodeStatement(w http.ResponseWriter, r *http.Request) (statementRequest, bool) {
	var req statementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	req.SQL = strings.TrimSpace(req.SQL)
	if req.SQL == "" {
		http.Error(w, "sql must not be empty", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// record stores a run in the history store. Failures are logged and
// swallowed; history never breaks a response.
func (s *Server) record(ctx context.Context, sqlText string, rowCount int64, elapsed time.Duration, execErr error) {
	if s.history == nil {
		return
	}
	run := history.Run{
		Source:   "gateway",
		Dialect:  s.db.Dialect().Name,
		SQL:      sqlText,
		RowCount: rowCount,
		Duration: elapsed,
	}
	if execErr != nil {
		run.Error = execErr.Error()
	}
	if _, err := s.history.Record(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("failed to record run", slog.Any("error", err))
	}
}

// rowSetResponse flattens a drained row set for JSON encoding. Byte slices
// become strings so values read naturally instead of as base64.
func rowSetResponse(rs *rowset.RowSet) queryResponse {
	cols := rs.Columns()
	resp := queryResponse{
		Columns: make([]string, len(cols)),
		Rows:    make([][]any, 0, rs.Len()),
	}
	for i, c := range cols {
		resp.Columns[i] = c.Label
	}

	rs.BeforeFirst()
	for len(resp.Rows) < maxRows {
		ok, err := rs.Next()
		if err != nil || !ok {
			break
		}
		row := make([]any, len(cols))
		for i := range cols {
			v, err := rs.Value(i + 1)
			if err == nil {
				if b, bok := v.([]byte); bok {
					v = string(b)
				}
				row[i] = v
			}
		}
		resp.Rows = append(resp.Rows, row)
	}

	resp.RowCount = len(resp.Rows)
	resp.Truncated = rs.Len() > len(resp.Rows)
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
