package tracing

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// ChangeQuery selects classification changes from a trace. Zero values
// match everything; Unit uses -1 for any unit.
type ChangeQuery struct {
	Unit  int
	Draw  uint64
	Cause string
	Limit int
}

// AnyUnit returns a query that matches every change.
func AnyUnit() ChangeQuery {
	return ChangeQuery{Unit: -1}
}

// TraceReader reads back the tables written by a DBTracer.
type TraceReader struct {
	db *sql.DB
}

// NewTraceReader opens a trace database written by a DBTracer.
func NewTraceReader(filename string) (*TraceReader, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, err
	}

	return NewTraceReaderWithDB(db), nil
}

// NewTraceReaderWithDB creates a TraceReader on an open database.
func NewTraceReaderWithDB(db *sql.DB) *TraceReader {
	return &TraceReader{db: db}
}

func (q ChangeQuery) where() (string, []any) {
	var conds []string
	var args []any

	if q.Unit >= 0 {
		conds = append(conds, "Unit = ?")
		args = append(args, q.Unit)
	}

	if q.Draw > 0 {
		conds = append(conds, "Draw = ?")
		args = append(args, q.Draw)
	}

	if q.Cause != "" {
		conds = append(conds, "Cause = ?")
		args = append(args, q.Cause)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// Changes returns the matching changes in recording order, and the number
// of matching changes before Limit is applied.
func (r *TraceReader) Changes(
	ctx context.Context,
	q ChangeQuery,
) ([]ChangeEntry, int, error) {
	where, args := q.where()

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+ChangeTableName+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting changes: %w", err)
	}

	query := "SELECT Seq, Draw, Unit, Before, After, Cause FROM " +
		ChangeTableName + where + " ORDER BY Seq"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("reading changes: %w", err)
	}
	defer rows.Close()

	var changes []ChangeEntry
	for rows.Next() {
		var e ChangeEntry
		if err := rows.Scan(&e.Seq, &e.Draw, &e.Unit, &e.Before, &e.After, &e.Cause); err != nil {
			return nil, 0, err
		}

		changes = append(changes, e)
	}

	return changes, total, rows.Err()
}

// Draws returns the result of every finalized draw in order.
func (r *TraceReader) Draws(ctx context.Context) ([]FinalizeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT Draw, Used, Cached, Valid, Invalid FROM "+
			FinalizeTableName+" ORDER BY Draw")
	if err != nil {
		return nil, fmt.Errorf("reading draws: %w", err)
	}
	defer rows.Close()

	var draws []FinalizeEntry
	for rows.Next() {
		var e FinalizeEntry
		if err := rows.Scan(&e.Draw, &e.Used, &e.Cached, &e.Valid, &e.Invalid); err != nil {
			return nil, err
		}

		draws = append(draws, e)
	}

	return draws, rows.Err()
}

// Close closes the database.
func (r *TraceReader) Close() error {
	return r.db.Close()
}
