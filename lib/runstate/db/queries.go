package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type RunState struct {
	Key   string
	Value string
}

const getValue = `-- name: GetValue :one
select value from run_state
where key = ?
`

func (q *Queries) GetValue(ctx context.Context, key string) (string, error) {
	row := q.db.QueryRowContext(ctx, getValue, key)
	var value string
	err := row.Scan(&value)
	return value, err
}

const setValue = `-- name: SetValue :exec
insert into run_state(key, value) values (?, ?)
on conflict(key) do update set value = excluded.value
`

type SetValueParams struct {
	Key   string
	Value string
}

func (q *Queries) SetValue(ctx context.Context, arg SetValueParams) error {
	_, err := q.db.ExecContext(ctx, setValue, arg.Key, arg.Value)
	return err
}

const listValues = `-- name: ListValues :many
select key, value from run_state
order by key
`

func (q *Queries) ListValues(ctx context.Context) ([]RunState, error) {
	rows, err := q.db.QueryContext(ctx, listValues)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RunState
	for rows.Next() {
		var i RunState
		if err := rows.Scan(&i.Key, &i.Value); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllValues = `-- name: DeleteAllValues :exec
delete from run_state
`

func (q *Queries) DeleteAllValues(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllValues)
	return err
}
