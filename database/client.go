package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Client is the table-level adapter over the hosted database. It is the only
// layer that addresses tables by name; everything above it goes through a
// typed Repository. Every error it returns is an *errs.ApiErr.
type Client interface {
	Select(ctx context.Context, table string, q Query, dest any) error
	Count(ctx context.Context, table string, q Query) (int64, error)
	// Insert writes rows (a pointer to a slice) and fills them with the stored values.
	Insert(ctx context.Context, table string, rows any) error
	// Update patches the row with the given id and scans the updated rows into dest.
	Update(ctx context.Context, table string, id uuid.UUID, fields map[string]any, dest any) error
	// Delete removes the rows with the given ids and scans them into dest.
	Delete(ctx context.Context, table string, ids []uuid.UUID, dest any) error
}

// GormClient implements Client on top of gorm and Postgres.
type GormClient struct {
	db *gorm.DB
}

func NewGormClient(db *gorm.DB) *GormClient {
	return &GormClient{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (c *GormClient) GetDB() *gorm.DB {
	return c.db
}

func (c *GormClient) filtered(ctx context.Context, table string, q Query) *gorm.DB {
	tx := c.db.WithContext(ctx).Table(table)
	for _, p := range q.Predicates() {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: p.Column}, Value: p.Value})
	}
	return tx
}

func (c *GormClient) Select(ctx context.Context, table string, q Query, dest any) error {
	tx := c.filtered(ctx, table, q)
	if q.Columns != "" && q.Columns != "*" {
		tx = tx.Select(q.Columns)
	}
	if q.Order != nil {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.Order.Column},
			Desc:   !q.Order.Ascending,
		})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(dest).Error; err != nil {
		return errs.NewDatabaseError("select", table, err)
	}
	return nil
}

func (c *GormClient) Count(ctx context.Context, table string, q Query) (int64, error) {
	var n int64
	if err := c.filtered(ctx, table, q).Count(&n).Error; err != nil {
		return 0, errs.NewDatabaseError("count", table, err)
	}
	return n, nil
}

func (c *GormClient) Insert(ctx context.Context, table string, rows any) error {
	err := c.db.WithContext(ctx).
		Table(table).
		Clauses(clause.Returning{}).
		Create(rows).Error
	if err != nil {
		return errs.NewDatabaseError("insert", table, err)
	}
	return nil
}

func (c *GormClient) Update(ctx context.Context, table string, id uuid.UUID, fields map[string]any, dest any) error {
	err := c.db.WithContext(ctx).
		Table(table).
		Model(dest).
		Clauses(clause.Returning{}).
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
		Updates(fields).Error
	if err != nil {
		return errs.NewDatabaseError("update", table, err)
	}
	return nil
}

func (c *GormClient) Delete(ctx context.Context, table string, ids []uuid.UUID, dest any) error {
	if len(ids) == 0 {
		return nil
	}
	err := c.db.WithContext(ctx).
		Table(table).
		Clauses(clause.Returning{}).
		Where(clause.IN{Column: clause.Column{Name: "id"}, Values: uuidValues(ids)}).
		Delete(dest).Error
	if err != nil {
		return errs.NewDatabaseError("delete", table, err)
	}
	return nil
}

func uuidValues(ids []uuid.UUID) []any {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return values
}
