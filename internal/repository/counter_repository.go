package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterKey identifies one named counter, e.g. {workspace id, "members"}.
type CounterKey struct {
	ID          string
	CounterType string
}

type CounterRepository interface {
	Get(ctx context.Context, key CounterKey) (int64, bool, error)
	Add(ctx context.Context, key CounterKey, delta int64) error
	Set(ctx context.Context, key CounterKey, value int64) error
}

type pgCounterRepository struct {
	pool *pgxpool.Pool
}

func NewCounterRepository(pool *pgxpool.Pool) CounterRepository {
	return &pgCounterRepository{pool: pool}
}

func (r *pgCounterRepository) Get(ctx context.Context, key CounterKey) (int64, bool, error) {
	var value int64
	query := `SELECT value FROM workspace_counters WHERE id = $1 AND counter_type = $2`
	err := r.pool.QueryRow(ctx, query, key.ID, key.CounterType).Scan(&value)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

func (r *pgCounterRepository) Add(ctx context.Context, key CounterKey, delta int64) error {
	query := `
		INSERT INTO workspace_counters (id, counter_type, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (id, counter_type) DO UPDATE SET value = workspace_counters.value + $3
	`
	_, err := r.pool.Exec(ctx, query, key.ID, key.CounterType, delta)
	return err
}

func (r *pgCounterRepository) Set(ctx context.Context, key CounterKey, value int64) error {
	query := `
		INSERT INTO workspace_counters (id, counter_type, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (id, counter_type) DO UPDATE SET value = $3
	`
	_, err := r.pool.Exec(ctx, query, key.ID, key.CounterType, value)
	return err
}
