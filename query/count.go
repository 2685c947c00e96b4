package query

import (
	"context"

	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/models"
)

// Counter is a table that can count rows matching a query.
type Counter interface {
	TableName() string
	Count(ctx context.Context, q database.Query) (int64, error)
}

// CountLoader is a Loader whose reads only count rows.
type CountLoader struct {
	*Loader[models.Count]
}

func NewCount(src Counter, opts ...Option) *CountLoader {
	fetch := func(ctx context.Context, q database.Query) ([]models.Count, error) {
		n, err := src.Count(ctx, q)
		if err != nil {
			return nil, err
		}
		return []models.Count{{Count: n}}, nil
	}
	return &CountLoader{newLoader(src.TableName(), fetch, opts...)}
}

// Count returns the number of rows matching cfg. Columns are forced to
// "count" so count reads never share a cache key with row reads.
func (c *CountLoader) Count(ctx context.Context, cfg Config) (int64, error) {
	cfg.Columns = "count"
	rows, err := c.Load(ctx, cfg)
	return first(rows), err
}

// Value is the last count read, or 0.
func (c *CountLoader) Value() int64 {
	return first(c.State().Data)
}

func first(rows []models.Count) int64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].Count
}
