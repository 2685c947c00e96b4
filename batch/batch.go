// Package batch runs bulk mutations in fixed-size chunks and reports partial
// failure instead of aborting.
package batch

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/retry"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultSize = 100

// Mutator is the write side of a table. *database.Repository satisfies it.
type Mutator[T any] interface {
	TableName() string
	Insert(ctx context.Context, rows []T) ([]T, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) ([]T, error)
	Delete(ctx context.Context, ids []uuid.UUID) ([]T, error)
}

// Patch is a partial update of one row.
type Patch struct {
	ID     uuid.UUID      `json:"id"`
	Fields map[string]any `json:"fields"`
}

type Options struct {
	// Size is the chunk size, DefaultSize when zero.
	Size int
	// Retry, when set, wraps every remote call.
	Retry *retry.Policy
}

func (o Options) size() int {
	if o.Size <= 0 {
		return DefaultSize
	}
	return o.Size
}

// Result accumulates the rows written and the errors met across chunks.
type Result[T any] struct {
	Rows   []T
	Errors []error
	op     string
}

// Data returns the written rows, or nil when none were written.
func (r Result[T]) Data() []T {
	if len(r.Rows) == 0 {
		return nil
	}
	return r.Rows
}

// Err returns nil when every call succeeded. Otherwise it returns the first
// error, wrapped in a partial failure error when some rows were written.
func (r Result[T]) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	if len(r.Rows) > 0 {
		return errs.NewPartialFailureError(r.op, len(r.Rows), len(r.Errors), r.Errors[0])
	}
	return r.Errors[0]
}

// Chunks splits items into consecutive slices of at most size items.
func Chunks[E any](items []E, size int) [][]E {
	if size <= 0 {
		size = DefaultSize
	}
	chunks := make([][]E, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func call[R any](ctx context.Context, o Options, op func(ctx context.Context) (R, error)) (R, error) {
	if o.Retry == nil {
		return op(ctx)
	}
	return retry.Do(ctx, *o.Retry, op)
}

// Insert writes rows one chunk at a time, one multi-row insert per chunk.
func Insert[T any](ctx context.Context, m Mutator[T], rows []T, o Options) Result[T] {
	res := Result[T]{op: "insert " + m.TableName()}
	for i, chunk := range Chunks(rows, o.size()) {
		out, err := call(ctx, o, func(ctx context.Context) ([]T, error) {
			return m.Insert(ctx, chunk)
		})
		if err != nil {
			log.Debug().Err(err).Str("table", m.TableName()).Int("chunk", i).Msg("bulk insert chunk failed")
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Rows = append(res.Rows, out...)
	}
	return res
}

// Delete removes rows by id one chunk at a time, one multi-row delete per
// chunk.
func Delete[T any](ctx context.Context, m Mutator[T], ids []uuid.UUID, o Options) Result[T] {
	res := Result[T]{op: "delete " + m.TableName()}
	for i, chunk := range Chunks(ids, o.size()) {
		out, err := call(ctx, o, func(ctx context.Context) ([]T, error) {
			return m.Delete(ctx, chunk)
		})
		if err != nil {
			log.Debug().Err(err).Str("table", m.TableName()).Int("chunk", i).Msg("bulk delete chunk failed")
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Rows = append(res.Rows, out...)
	}
	return res
}

// Update applies patches one chunk at a time. The rows of a chunk are
// updated concurrently and all of them settle before the next chunk starts.
// Rows come back in input order.
func Update[T any](ctx context.Context, m Mutator[T], patches []Patch, o Options) Result[T] {
	res := Result[T]{op: "update " + m.TableName()}
	for i, chunk := range Chunks(patches, o.size()) {
		type slot struct {
			rows []T
			err  error
		}
		slots := make([]slot, len(chunk))

		var g errgroup.Group
		for j, p := range chunk {
			g.Go(func() error {
				out, err := call(ctx, o, func(ctx context.Context) ([]T, error) {
					return m.Update(ctx, p.ID, p.Fields)
				})
				slots[j] = slot{rows: out, err: err}
				return nil
			})
		}
		_ = g.Wait()

		for _, s := range slots {
			if s.err != nil {
				log.Debug().Err(s.err).Str("table", m.TableName()).Int("chunk", i).Msg("bulk update row failed")
				res.Errors = append(res.Errors, s.err)
				continue
			}
			res.Rows = append(res.Rows, s.rows...)
		}
	}
	return res
}
