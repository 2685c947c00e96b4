package content

import (
	"context"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rpupo63/academic-portfolio-backend/query"
)

// Publications reads publications, most recent first.
type Publications struct {
	pubs      *query.Loader[models.Publication]
	count     *query.CountLoader
	cacheTime time.Duration
}

func NewPublications(repo *database.Repository[models.Publication], cacheTime time.Duration, opts ...query.Option) *Publications {
	return &Publications{
		pubs:      query.New[models.Publication](repo, opts...),
		count:     query.NewCount(repo, opts...),
		cacheTime: cacheTime,
	}
}

func (p *Publications) config() query.Config {
	return query.Config{
		Order:     query.Descending("publication_date"),
		CacheTime: p.cacheTime,
	}
}

func (p *Publications) Load(ctx context.Context) ([]models.Publication, error) {
	return p.pubs.Load(ctx, p.config())
}

func (p *Publications) Refetch(ctx context.Context) ([]models.Publication, error) {
	p.pubs.Invalidate()
	p.count.Invalidate()
	return p.pubs.Load(ctx, p.config())
}

func (p *Publications) State() query.State[models.Publication] {
	return p.pubs.State()
}

func (p *Publications) Count(ctx context.Context) (int64, error) {
	return p.count.Count(ctx, query.Config{CacheTime: p.cacheTime})
}
