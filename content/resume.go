package content

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/batch"
	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rpupo63/academic-portfolio-backend/query"
	"github.com/rpupo63/academic-portfolio-backend/storage"
	"github.com/rs/zerolog"
)

type ResumeView struct {
	Resume      *models.Resume      `json:"resume"`
	Experiences []models.Experience `json:"experiences"`
}

// Resume reads the resume document and the experience timeline.
type Resume struct {
	resumeRepo  *database.Repository[models.Resume]
	expRepo     *database.Repository[models.Experience]
	resume      *query.Loader[models.Resume]
	experiences *query.Loader[models.Experience]
	uploader    Uploader
	scheduler   *batch.Scheduler
	cacheTime   time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

func NewResume(
	resumeRepo *database.Repository[models.Resume],
	expRepo *database.Repository[models.Experience],
	uploader Uploader,
	scheduler *batch.Scheduler,
	cacheTime time.Duration,
	opts ...query.Option,
) *Resume {
	return &Resume{
		resumeRepo:  resumeRepo,
		expRepo:     expRepo,
		resume:      query.New[models.Resume](resumeRepo, opts...),
		experiences: query.New[models.Experience](expRepo, opts...),
		uploader:    uploader,
		scheduler:   scheduler,
		cacheTime:   cacheTime,
		now:         time.Now,
		logger:      componentLogger("resume"),
	}
}

func (r *Resume) experienceConfig() query.Config {
	return query.Config{Order: query.Ascending("order_index"), CacheTime: r.cacheTime}
}

// Load returns the resume and the ordered experiences. A missing or
// ambiguous resume row leaves Resume nil and is only logged; the timeline
// is still returned.
func (r *Resume) Load(ctx context.Context) (ResumeView, error) {
	doc, err := r.Document(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("resume unavailable")
	}
	exps, err := r.Experiences(ctx)
	if exps == nil {
		exps = []models.Experience{}
	}
	return ResumeView{Resume: doc, Experiences: exps}, err
}

// Document returns the single resume row. It fails when there is none or
// more than one.
func (r *Resume) Document(ctx context.Context) (*models.Resume, error) {
	rows, err := r.resume.Load(ctx, query.Config{Limit: 2, CacheTime: r.cacheTime})
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, errs.NewNotFound("resume")
	case 1:
		return &rows[0], nil
	default:
		return nil, errs.NewMultipleRowsError("resume", len(rows))
	}
}

func (r *Resume) Experiences(ctx context.Context) ([]models.Experience, error) {
	return r.experiences.Load(ctx, r.experienceConfig())
}

func (r *Resume) refetchResume(ctx context.Context) {
	r.resume.Invalidate()
	refresh(ctx, r.logger, func(ctx context.Context) error {
		_, err := r.Document(ctx)
		return err
	})
}

func (r *Resume) refetchExperiences(ctx context.Context) {
	r.experiences.Invalidate()
	refresh(ctx, r.logger, discard(r.Experiences))
}

// SetPDF uploads a new resume PDF and points the resume row at it. The row
// is created when there is none yet.
func (r *Resume) SetPDF(ctx context.Context, filename, contentType string, body io.Reader, size int64) (*models.Resume, error) {
	if err := storage.CheckResume(contentType); err != nil {
		return nil, err
	}

	url, err := r.uploader.Upload(ctx, storage.ResumePath(filename, r.now()), contentType, body, size)
	if err != nil {
		return nil, err
	}

	current, err := r.resumeRepo.Single(ctx, database.Query{})
	switch {
	case errs.IsNotFound(err):
		created, err := r.resumeRepo.Add(ctx, models.Resume{PDFURL: &url})
		if err != nil {
			return nil, err
		}
		r.refetchResume(ctx)
		return created, nil
	case err != nil:
		return nil, err
	}

	rows, err := r.resumeRepo.Update(ctx, current.ID, map[string]any{"pdf_url": url})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NewNotFound("resume")
	}
	r.refetchResume(ctx)
	return &rows[0], nil
}

func validateExperience(e models.Experience) error {
	switch {
	case strings.TrimSpace(e.Position) == "":
		return errs.NewMissingRequiredFieldError("position")
	case strings.TrimSpace(e.Institution) == "":
		return errs.NewMissingRequiredFieldError("institution")
	case strings.TrimSpace(e.Duration) == "":
		return errs.NewMissingRequiredFieldError("duration")
	}
	return nil
}

// CreateExperience appends an entry to the timeline. Without an explicit
// order index it goes last.
func (r *Resume) CreateExperience(ctx context.Context, e models.Experience) (*models.Experience, error) {
	if err := validateExperience(e); err != nil {
		return nil, err
	}
	if e.OrderIndex == 0 {
		n, err := r.expRepo.Count(ctx, database.Query{})
		if err != nil {
			return nil, err
		}
		e.OrderIndex = int(n)
	}
	e.ID = uuid.Nil

	created, err := r.expRepo.Add(ctx, e)
	if err != nil {
		return nil, err
	}
	r.refetchExperiences(ctx)
	return created, nil
}

func (r *Resume) UpdateExperience(ctx context.Context, id uuid.UUID, e models.Experience) (*models.Experience, error) {
	if err := validateExperience(e); err != nil {
		return nil, err
	}
	rows, err := r.expRepo.Update(ctx, id, map[string]any{
		"position":    e.Position,
		"institution": e.Institution,
		"duration":    e.Duration,
		"description": e.Description,
		"order_index": e.OrderIndex,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NewNotFound("experience")
	}
	r.refetchExperiences(ctx)
	return &rows[0], nil
}

func (r *Resume) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	rows, err := r.expRepo.Delete(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errs.NewNotFound("experience")
	}
	r.refetchExperiences(ctx)
	return nil
}

// Reorder sets order_index to each entry's position in ids. The updates
// are queued on the scheduler together and run as one concurrent wave.
func (r *Resume) Reorder(ctx context.Context, ids []uuid.UUID) ([]models.Experience, error) {
	errCh := make(chan error, len(ids))
	for i, id := range ids {
		go func() {
			errCh <- r.scheduler.Do(ctx, func(ctx context.Context) error {
				rows, err := r.expRepo.Update(ctx, id, map[string]any{"order_index": i})
				if err == nil && len(rows) == 0 {
					err = errs.NewNotFound("experience")
				}
				return err
			})
		}()
	}

	var failures []error
	for range ids {
		if err := <-errCh; err != nil {
			failures = append(failures, err)
		}
	}

	r.experiences.Invalidate()
	exps, err := r.Experiences(ctx)
	if len(failures) > 0 {
		return exps, errors.Join(failures...)
	}
	return exps, err
}
