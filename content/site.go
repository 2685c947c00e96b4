// Package content holds the site's read views and the admin mutations that
// keep them fresh.
package content

import (
	"context"
	"io"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/batch"
	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/query"
	"github.com/rpupo63/academic-portfolio-backend/retry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Uploader stores a file and returns its public URL. *storage.Client
// satisfies it.
type Uploader interface {
	Upload(ctx context.Context, path, contentType string, body io.Reader, size int64) (string, error)
}

type Options struct {
	CacheTime       time.Duration
	Batch           batch.Options
	Retry           *retry.Policy
	SchedulerWindow time.Duration
}

// OptionsFromConfig reads QUERY_CACHE_SECONDS, BATCH_SIZE and the retry
// policy keys.
func OptionsFromConfig(c map[string]string) Options {
	policy := retry.PolicyFromConfig(c)
	return Options{
		CacheTime: config.GetDuration(c, "QUERY_CACHE_SECONDS", time.Second, query.DefaultCacheTime),
		Batch: batch.Options{
			Size:  config.GetInt(c, "BATCH_SIZE", batch.DefaultSize),
			Retry: &policy,
		},
		Retry:           &policy,
		SchedulerWindow: batch.DefaultWindow,
	}
}

// Site wires every view and the admin operations over one database.
type Site struct {
	Blogs        *Blogs
	Enhanced     *EnhancedBlogs
	Publications *Publications
	Content      *Content
	Counts       *Counts
	Resume       *Resume
	Admin        *Admin

	scheduler *batch.Scheduler
}

func NewSite(db database.Database, uploader Uploader, o Options) *Site {
	var opts []query.Option
	if o.Retry != nil {
		opts = append(opts, query.WithRetry(*o.Retry))
	}
	if uploader == nil {
		uploader = missingStorage{}
	}

	scheduler := batch.NewScheduler(o.SchedulerWindow)
	blogs := NewBlogs(db.BlogPostRepo(), o.CacheTime, opts...)
	pubs := NewPublications(db.PublicationRepo(), o.CacheTime, opts...)

	return &Site{
		Blogs:        blogs,
		Enhanced:     NewEnhancedBlogs(blogs),
		Publications: pubs,
		Content:      NewContent(blogs, pubs),
		Counts:       NewCounts(blogs, pubs),
		Resume:       NewResume(db.ResumeRepo(), db.ExperienceRepo(), uploader, scheduler, o.CacheTime, opts...),
		Admin:        NewAdmin(db.BlogPostRepo(), db.PublicationRepo(), blogs, pubs, uploader, o.Batch, o.CacheTime, opts...),
		scheduler:    scheduler,
	}
}

// Close runs any queued work and stops accepting more.
func (s *Site) Close() {
	s.scheduler.Close()
}

type missingStorage struct{}

func (missingStorage) Upload(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", errs.NewConfigMissingError("SUPABASE_S3_ENDPOINT")
}

// refresh re-reads the views touched by a mutation. A failed re-read is
// logged and does not fail the mutation.
func refresh(ctx context.Context, logger zerolog.Logger, reads ...func(context.Context) error) {
	for _, read := range reads {
		if err := read(ctx); err != nil {
			logger.Warn().Err(err).Msg("refetch after mutation failed")
		}
	}
}

func discard[T any](f func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := f(ctx)
		return err
	}
}

func componentLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
