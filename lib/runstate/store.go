// Package runstate persists the once-per-day run gate.
package runstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"mturk-extractor/lib/runstate/db"
)

const (
	KeyLastRunDate = "lastRunDate"
	KeyTotalRuns   = "totalRuns"
)

// Store is a tiny key value store on top of sqlite/libsql.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

// NewStore creates the schema if it does not exist yet.
func NewStore(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create run state schema: %w", err)
	}
	return Store{
		db:  database,
		qry: db.New(database),
	}, nil
}

func getOrEmpty(ctx context.Context, qry *db.Queries, key string) (string, error) {
	value, err := qry.GetValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func parseRuns(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	runs, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", KeyTotalRuns, err)
	}
	return runs, nil
}

// LastRunDate returns the date of the last successful run, or an empty
// string if there never was one.
func (s Store) LastRunDate(ctx context.Context) (string, error) {
	return getOrEmpty(ctx, s.qry, KeyLastRunDate)
}

func (s Store) TotalRuns(ctx context.Context) (int64, error) {
	value, err := getOrEmpty(ctx, s.qry, KeyTotalRuns)
	if err != nil {
		return 0, err
	}
	return parseRuns(value)
}

// IncrementRuns bumps the run counter and returns the new value.
func (s Store) IncrementRuns(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	value, err := getOrEmpty(ctx, txqry, KeyTotalRuns)
	if err != nil {
		return 0, err
	}
	runs, err := parseRuns(value)
	if err != nil {
		return 0, err
	}
	runs++

	err = txqry.SetValue(ctx, db.SetValueParams{
		Key:   KeyTotalRuns,
		Value: strconv.FormatInt(runs, 10),
	})
	if err != nil {
		return 0, err
	}
	return runs, tx.Commit()
}

// MarkRun records date (YYYY-MM-DD) as the last successful run.
func (s Store) MarkRun(ctx context.Context, date string) error {
	return s.qry.SetValue(ctx, db.SetValueParams{
		Key:   KeyLastRunDate,
		Value: date,
	})
}

func (s Store) Values(ctx context.Context) ([]db.RunState, error) {
	return s.qry.ListValues(ctx)
}

// Reset forgets the last run date and the run counter.
func (s Store) Reset(ctx context.Context) error {
	return s.qry.DeleteAllValues(ctx)
}
