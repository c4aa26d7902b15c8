package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Transaction runs named steps inside one sql.Tx. The first failing step rolls
// everything back; the step name is added to the returned error.
type Transaction struct {
	db    *sql.DB
	steps []Step
}

type Step struct {
	Name string
	Fn   func(ctx context.Context, tx *sql.Tx) error
}

func NewTransaction(db *sql.DB) *Transaction {
	return &Transaction{db: db}
}

func (t *Transaction) AddStep(name string, fn func(ctx context.Context, tx *sql.Tx) error) *Transaction {
	t.steps = append(t.steps, Step{Name: name, Fn: fn})
	return t
}

func (t *Transaction) Execute(ctx context.Context) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}

	for _, step := range t.steps {
		if err := step.Fn(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapError("commit", err)
	}
	return nil
}
