package content

import (
	"context"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rpupo63/academic-portfolio-backend/query"
)

// Blogs reads published posts, newest first.
type Blogs struct {
	repo      *database.Repository[models.BlogPost]
	posts     *query.Loader[models.BlogPost]
	count     *query.CountLoader
	cacheTime time.Duration
}

func NewBlogs(repo *database.Repository[models.BlogPost], cacheTime time.Duration, opts ...query.Option) *Blogs {
	return &Blogs{
		repo:      repo,
		posts:     query.New[models.BlogPost](repo, opts...),
		count:     query.NewCount(repo, opts...),
		cacheTime: cacheTime,
	}
}

func (b *Blogs) config() query.Config {
	return query.Config{
		Filters:   map[string]any{"published": true},
		Order:     query.Descending("created_at"),
		CacheTime: b.cacheTime,
	}
}

func (b *Blogs) Load(ctx context.Context) ([]models.BlogPost, error) {
	return b.posts.Load(ctx, b.config())
}

// Refetch reads the posts again, ignoring the cache.
func (b *Blogs) Refetch(ctx context.Context) ([]models.BlogPost, error) {
	b.posts.Invalidate()
	b.count.Invalidate()
	return b.posts.Load(ctx, b.config())
}

func (b *Blogs) State() query.State[models.BlogPost] {
	return b.posts.State()
}

// Count returns the number of published posts with a count-only read.
func (b *Blogs) Count(ctx context.Context) (int64, error) {
	return b.count.Count(ctx, query.Config{
		Filters:   map[string]any{"published": true},
		CacheTime: b.cacheTime,
	})
}

// BySlug returns the published post with the given slug.
func (b *Blogs) BySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return b.repo.Single(ctx, database.Query{
		Filters: map[string]any{"slug": slug, "published": true},
	})
}

// Enhanced is the published posts plus their content type groups.
type Enhanced struct {
	Posts      []models.BlogPost `json:"posts"`
	Partitions Partitions        `json:"partitions"`
}

// EnhancedBlogs is Blogs with the posts grouped by content type.
type EnhancedBlogs struct {
	*Blogs
}

func NewEnhancedBlogs(blogs *Blogs) *EnhancedBlogs {
	return &EnhancedBlogs{blogs}
}

func (e *EnhancedBlogs) Load(ctx context.Context) (Enhanced, error) {
	posts, err := e.Blogs.Load(ctx)
	return enhance(posts), err
}

func (e *EnhancedBlogs) Refetch(ctx context.Context) (Enhanced, error) {
	posts, err := e.Blogs.Refetch(ctx)
	return enhance(posts), err
}

// ByType returns the published posts of one content type.
func (e *EnhancedBlogs) ByType(ctx context.Context, ct models.ContentType) ([]models.BlogPost, error) {
	en, err := e.Load(ctx)
	return en.Partitions.ByType(ct), err
}

func enhance(posts []models.BlogPost) Enhanced {
	if posts == nil {
		posts = []models.BlogPost{}
	}
	return Enhanced{Posts: posts, Partitions: Partition(posts)}
}
