package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/errs"
)

// Row is a persisted entity with a statically declared table.
type Row interface {
	TableName() string
	GetID() uuid.UUID
}

type normalizer interface {
	Normalize()
}

// Repository gives typed access to the table backing T.
type Repository[T Row] struct {
	client Client
	table  string
}

func NewRepository[T Row](client Client) *Repository[T] {
	var zero T
	return &Repository[T]{client: client, table: zero.TableName()}
}

func (r *Repository[T]) TableName() string {
	return r.table
}

// Find returns the rows matching q, normalized.
func (r *Repository[T]) Find(ctx context.Context, q Query) ([]T, error) {
	rows := []T{}
	if err := r.client.Select(ctx, r.table, q, &rows); err != nil {
		return nil, err
	}
	normalize(rows)
	return rows, nil
}

// FindAll returns every row of the table.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.Find(ctx, Query{})
}

// FindByID returns the row with the given id or a not-found error.
func (r *Repository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	rows, err := r.Find(ctx, Query{Filters: map[string]any{"id": id}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NewNotFound(r.table)
	}
	return &rows[0], nil
}

// Single returns the one row matching q. It fails when no row or more than
// one row matches.
func (r *Repository[T]) Single(ctx context.Context, q Query) (*T, error) {
	q.Limit = 2
	rows, err := r.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, errs.NewNotFound(r.table)
	case 1:
		return &rows[0], nil
	default:
		return nil, errs.NewMultipleRowsError(r.table, len(rows))
	}
}

func (r *Repository[T]) Count(ctx context.Context, q Query) (int64, error) {
	return r.client.Count(ctx, r.table, q)
}

// Insert writes rows in one statement and returns them as stored.
func (r *Repository[T]) Insert(ctx context.Context, rows []T) ([]T, error) {
	if len(rows) == 0 {
		return []T{}, nil
	}
	out := make([]T, len(rows))
	copy(out, rows)
	normalize(out)
	if err := r.client.Insert(ctx, r.table, &out); err != nil {
		return nil, err
	}
	normalize(out)
	return out, nil
}

// Add inserts a single row.
func (r *Repository[T]) Add(ctx context.Context, row T) (*T, error) {
	rows, err := r.Insert(ctx, []T{row})
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// Update patches one row and returns what was updated, which is empty when
// no row has that id. updated_at is refreshed unless fields sets it.
func (r *Repository[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) ([]T, error) {
	patch := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if k == "id" {
			continue
		}
		patch[k] = v
	}
	if _, ok := patch["updated_at"]; !ok {
		patch["updated_at"] = time.Now().UTC()
	}
	rows := []T{}
	if err := r.client.Update(ctx, r.table, id, patch, &rows); err != nil {
		return nil, err
	}
	normalize(rows)
	return rows, nil
}

// Delete removes the rows with the given ids and returns them.
func (r *Repository[T]) Delete(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	rows := []T{}
	if err := r.client.Delete(ctx, r.table, ids, &rows); err != nil {
		return nil, err
	}
	normalize(rows)
	return rows, nil
}

func normalize[T any](rows []T) {
	for i := range rows {
		if n, ok := any(&rows[i]).(normalizer); ok {
			n.Normalize()
		}
	}
}
