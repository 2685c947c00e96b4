package content

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rpupo63/academic-portfolio-backend/batch"
	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rpupo63/academic-portfolio-backend/query"
	"github.com/rpupo63/academic-portfolio-backend/storage"
	"github.com/rs/zerolog"
)

// PostInput is a blog post as submitted by the admin form. Media holds files
// uploaded during the edit that still have to be attached.
type PostInput struct {
	Title            string             `json:"title"`
	Slug             string             `json:"slug"`
	Excerpt          string             `json:"excerpt"`
	Content          string             `json:"content"`
	ThumbnailURL     string             `json:"thumbnail_url"`
	Tags             []string           `json:"tags"`
	TagsCSV          string             `json:"tags_csv"`
	Published        bool               `json:"published"`
	ContentType      string             `json:"content_type"`
	VideoURL         *string            `json:"video_url"`
	PhotoURLs        []string           `json:"photo_urls"`
	MediaDescription *string            `json:"media_description"`
	Media            []models.MediaFile `json:"media"`
}

// Post validates the input and builds the row it describes.
func (in PostInput) Post() (models.BlogPost, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.BlogPost{}, errs.NewMissingRequiredFieldError("title")
	}
	ct, err := models.ParseContentType(in.ContentType)
	if err != nil {
		return models.BlogPost{}, errs.NewInvalidFieldError("content_type", err.Error())
	}

	tags := in.Tags
	if len(tags) == 0 && in.TagsCSV != "" {
		tags = models.ParseTags(in.TagsCSV)
	}
	if tags == nil {
		tags = []string{}
	}

	p := models.BlogPost{
		Title:            strings.TrimSpace(in.Title),
		Slug:             in.Slug,
		Excerpt:          in.Excerpt,
		Content:          in.Content,
		ThumbnailURL:     in.ThumbnailURL,
		Tags:             pq.StringArray(tags),
		Published:        in.Published,
		ContentType:      ct,
		VideoURL:         in.VideoURL,
		PhotoURLs:        pq.StringArray(in.PhotoURLs),
		MediaDescription: in.MediaDescription,
	}
	p.EnsureSlug()
	if !models.ValidSlug(p.Slug) {
		return models.BlogPost{}, errs.NewInvalidFieldError("slug", "only lower-case letters, digits and hyphens are allowed")
	}
	models.FoldMedia(&p, in.Media)
	return p, nil
}

func postFields(p models.BlogPost) map[string]any {
	return map[string]any{
		"title":             p.Title,
		"slug":              p.Slug,
		"excerpt":           p.Excerpt,
		"content":           p.Content,
		"thumbnail_url":     p.ThumbnailURL,
		"tags":              p.Tags,
		"published":         p.Published,
		"content_type":      p.ContentType,
		"video_url":         p.VideoURL,
		"photo_urls":        p.PhotoURLs,
		"media_description": p.MediaDescription,
	}
}

// checkPatch validates the fields of a partial post update.
func checkPatch(fields map[string]any) error {
	if v, ok := fields["content_type"]; ok {
		s, _ := v.(string)
		ct, err := models.ParseContentType(s)
		if err != nil {
			return errs.NewInvalidFieldError("content_type", err.Error())
		}
		fields["content_type"] = ct
	}
	if v, ok := fields["slug"]; ok {
		s, _ := v.(string)
		s = strings.ToLower(strings.TrimSpace(s))
		if !models.ValidSlug(s) {
			return errs.NewInvalidFieldError("slug", "only lower-case letters, digits and hyphens are allowed")
		}
		fields["slug"] = s
	}
	if v, ok := fields["title"]; ok {
		if s, _ := v.(string); strings.TrimSpace(s) == "" {
			return errs.NewMissingRequiredFieldError("title")
		}
	}
	return nil
}

func validatePublication(p models.Publication) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return errs.NewMissingRequiredFieldError("title")
	case strings.TrimSpace(p.Publisher) == "":
		return errs.NewMissingRequiredFieldError("publisher")
	case time.Time(p.PublicationDate).IsZero():
		return errs.NewMissingRequiredFieldError("publication_date")
	}
	return nil
}

// Admin performs the dashboard's mutations and keeps the public views fresh.
type Admin struct {
	posts     *database.Repository[models.BlogPost]
	pubs      *database.Repository[models.Publication]
	all       *query.Loader[models.BlogPost]
	blogs     *Blogs
	pubViews  *Publications
	uploader  Uploader
	batch     batch.Options
	cacheTime time.Duration
	logger    zerolog.Logger
}

func NewAdmin(
	posts *database.Repository[models.BlogPost],
	pubs *database.Repository[models.Publication],
	blogs *Blogs,
	pubViews *Publications,
	uploader Uploader,
	batchOpts batch.Options,
	cacheTime time.Duration,
	opts ...query.Option,
) *Admin {
	return &Admin{
		posts:     posts,
		pubs:      pubs,
		all:       query.New[models.BlogPost](posts, opts...),
		blogs:     blogs,
		pubViews:  pubViews,
		uploader:  uploader,
		batch:     batchOpts,
		cacheTime: cacheTime,
		logger:    componentLogger("admin"),
	}
}

// Posts lists every post, drafts included, newest first.
func (a *Admin) Posts(ctx context.Context) ([]models.BlogPost, error) {
	return a.all.Load(ctx, query.Config{Order: query.Descending("created_at"), CacheTime: a.cacheTime})
}

func (a *Admin) Post(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	return a.posts.FindByID(ctx, id)
}

func (a *Admin) postsChanged(ctx context.Context) {
	a.all.Invalidate()
	refresh(ctx, a.logger, discard(a.blogs.Refetch), discard(a.Posts))
}

func (a *Admin) publicationsChanged(ctx context.Context) {
	refresh(ctx, a.logger, discard(a.pubViews.Refetch))
}

func (a *Admin) CreatePost(ctx context.Context, in PostInput) (*models.BlogPost, error) {
	p, err := in.Post()
	if err != nil {
		return nil, err
	}
	created, err := a.posts.Add(ctx, p)
	if err != nil {
		return nil, slugConflict(p.Slug, err)
	}
	a.postsChanged(ctx)
	return created, nil
}

// UpdatePost replaces every editable field of the post.
func (a *Admin) UpdatePost(ctx context.Context, id uuid.UUID, in PostInput) (*models.BlogPost, error) {
	p, err := in.Post()
	if err != nil {
		return nil, err
	}
	rows, err := a.posts.Update(ctx, id, postFields(p))
	if err != nil {
		return nil, slugConflict(p.Slug, err)
	}
	if len(rows) == 0 {
		return nil, errs.NewNotFound("blog_posts")
	}
	a.postsChanged(ctx)
	return &rows[0], nil
}

// slugConflict names the slug when a post write hits the unique index.
func slugConflict(slug string, err error) error {
	if !errs.IsConflict(err) {
		return err
	}
	return errs.NewConflictError(fmt.Sprintf("slug %q is already used", slug), err)
}

func (a *Admin) DeletePost(ctx context.Context, id uuid.UUID) error {
	rows, err := a.posts.Delete(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errs.NewNotFound("blog_posts")
	}
	a.postsChanged(ctx)
	return nil
}

// BulkCreatePosts validates every input first and inserts nothing when any
// of them is invalid.
func (a *Admin) BulkCreatePosts(ctx context.Context, inputs []PostInput) (batch.Result[models.BlogPost], error) {
	rows := make([]models.BlogPost, len(inputs))
	for i, in := range inputs {
		p, err := in.Post()
		if err != nil {
			return batch.Result[models.BlogPost]{}, err
		}
		rows[i] = p
	}
	res := batch.Insert[models.BlogPost](ctx, a.posts, rows, a.batch)
	if len(res.Rows) > 0 {
		a.postsChanged(ctx)
	}
	return res, nil
}

func (a *Admin) BulkUpdatePosts(ctx context.Context, patches []batch.Patch) (batch.Result[models.BlogPost], error) {
	for _, p := range patches {
		if p.ID == uuid.Nil {
			return batch.Result[models.BlogPost]{}, errs.NewMissingRequiredFieldError("id")
		}
		if err := checkPatch(p.Fields); err != nil {
			return batch.Result[models.BlogPost]{}, err
		}
	}
	res := batch.Update[models.BlogPost](ctx, a.posts, patches, a.batch)
	if len(res.Rows) > 0 {
		a.postsChanged(ctx)
	}
	return res, nil
}

func (a *Admin) BulkDeletePosts(ctx context.Context, ids []uuid.UUID) batch.Result[models.BlogPost] {
	res := batch.Delete[models.BlogPost](ctx, a.posts, ids, a.batch)
	if len(res.Rows) > 0 {
		a.postsChanged(ctx)
	}
	return res
}

func (a *Admin) CreatePublication(ctx context.Context, p models.Publication) (*models.Publication, error) {
	if err := validatePublication(p); err != nil {
		return nil, err
	}
	p.ID = uuid.Nil
	p.Normalize()
	created, err := a.pubs.Add(ctx, p)
	if err != nil {
		return nil, err
	}
	a.publicationsChanged(ctx)
	return created, nil
}

func (a *Admin) UpdatePublication(ctx context.Context, id uuid.UUID, p models.Publication) (*models.Publication, error) {
	if err := validatePublication(p); err != nil {
		return nil, err
	}
	p.Normalize()
	rows, err := a.pubs.Update(ctx, id, map[string]any{
		"title":            p.Title,
		"publisher":        p.Publisher,
		"publication_date": p.PublicationDate,
		"issn":             p.ISSN,
		"description":      p.Description,
		"type":             p.Type,
		"url":              p.URL,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NewNotFound("publications")
	}
	a.publicationsChanged(ctx)
	return &rows[0], nil
}

func (a *Admin) DeletePublication(ctx context.Context, id uuid.UUID) error {
	rows, err := a.pubs.Delete(ctx, []uuid.UUID{id})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errs.NewNotFound("publications")
	}
	a.publicationsChanged(ctx)
	return nil
}

// UploadThumbnail stores a post thumbnail and returns its URL.
func (a *Admin) UploadThumbnail(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	if kind, ok := models.KindForContentType(contentType); !ok || kind != models.MediaImage {
		return "", errs.NewUnsupportedMediaTypeError(contentType, []string{"image/*"})
	}
	return a.uploader.Upload(ctx, storage.ThumbnailPath(filename), contentType, body, size)
}

// UploadMedia stores an image or video for a post being edited.
func (a *Admin) UploadMedia(ctx context.Context, filename, contentType string, body io.Reader, size int64) (models.MediaFile, error) {
	kind, err := storage.CheckMedia(contentType)
	if err != nil {
		return models.MediaFile{}, err
	}
	url, err := a.uploader.Upload(ctx, storage.MediaPath(kind, filename), contentType, body, size)
	if err != nil {
		return models.MediaFile{}, err
	}
	return models.MediaFile{
		ID:   uuid.NewString(),
		URL:  url,
		Type: kind,
		Name: filename,
		Size: size,
	}, nil
}
