package postgres_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// rowStub implements pgx.Row
type rowStub struct{ scan func(dest ...any) error }

func (r rowStub) Scan(dest ...any) error { return r.scan(dest...) }

// poolStub implements postgres.PgxPool for tests. It records the last statement
// and its arguments so tests can assert on what was sent.
type poolStub struct {
	execTag  pgconn.CommandTag
	execErr  error
	row      rowStub
	lastSQL  string
	lastArgs []any
	execs    []string
}

func (p *poolStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.lastSQL, p.lastArgs = sql, args
	p.execs = append(p.execs, sql)
	return p.execTag, p.execErr
}

func (p *poolStub) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.lastSQL, p.lastArgs = sql, args
	if p.row.scan == nil {
		return rowStub{scan: func(_ ...any) error { return errors.New("no row configured") }}
	}
	return p.row
}

func (p *poolStub) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (p *poolStub) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	return nil, errors.New("not implemented")
}

// scanInto assigns vals to dest positionally. Unset trailing destinations are left alone.
func scanInto(vals ...any) rowStub {
	return rowStub{scan: func(dest ...any) error {
		for i, v := range vals {
			if i >= len(dest) {
				break
			}
			switch d := dest[i].(type) {
			case *string:
				*d = v.(string)
			case **string:
				if v == nil {
					*d = nil
				} else {
					s := v.(string)
					*d = &s
				}
			case **float64:
				if v == nil {
					*d = nil
				} else {
					f := v.(float64)
					*d = &f
				}
			case *[]byte:
				if v == nil {
					*d = nil
				} else {
					*d = v.([]byte)
				}
			case *time.Time:
				*d = v.(time.Time)
			}
		}
		return nil
	}}
}
