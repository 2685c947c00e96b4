package content

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/batch"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestPostInput(t *testing.T) {
	tests := []struct {
		name    string
		in      PostInput
		slug    string
		ct      models.ContentType
		wantErr func(error) bool
	}{
		{name: "slug from title", in: PostInput{Title: "My New Article"}, slug: "my-new-article", ct: models.ContentText},
		{name: "explicit slug lower-cased", in: PostInput{Title: "x", Slug: "Hello-World", ContentType: "video"}, slug: "hello-world", ct: models.ContentVideo},
		{name: "missing title", in: PostInput{}, wantErr: errs.IsMissingRequiredFieldError},
		{name: "unknown content type", in: PostInput{Title: "x", ContentType: "audio"}, wantErr: errs.IsInvalidFieldError},
		{name: "unsafe slug", in: PostInput{Title: "x", Slug: "a/b"}, wantErr: errs.IsInvalidFieldError},
		{name: "punctuation dropped from derived slug", in: PostInput{Title: "What's new in C++?"}, slug: "whats-new-in-c", ct: models.ContentText},
		{name: "commas dropped from derived slug", in: PostInput{Title: "Hello, World"}, slug: "hello-world", ct: models.ContentText},
		{name: "accents transliterated", in: PostInput{Title: "Über Forschung"}, slug: "uber-forschung", ct: models.ContentText},
		{name: "title without slug characters", in: PostInput{Title: "?!"}, wantErr: errs.IsInvalidFieldError},
		{name: "unsafe supplied slug kept as error", in: PostInput{Title: "x", Slug: "what's new"}, wantErr: errs.IsInvalidFieldError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.in.Post()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.slug, p.Slug)
			assert.Equal(t, tt.ct, p.ContentType)
			assert.NotNil(t, p.Tags)
		})
	}
}

func TestPostInputTagsAndMedia(t *testing.T) {
	p, err := PostInput{
		Title:   "Trip",
		TagsCSV: "travel, photos ,,",
		Media: []models.MediaFile{
			{URL: "https://x/1.jpg", Type: models.MediaImage},
			{URL: "https://x/v.mp4", Type: models.MediaVideo},
			{URL: "https://x/2.jpg", Type: models.MediaImage},
		},
	}.Post()
	require.NoError(t, err)
	assert.Equal(t, []string{"travel", "photos"}, []string(p.Tags))
	assert.Equal(t, []string{"https://x/1.jpg", "https://x/2.jpg"}, []string(p.PhotoURLs))
	require.NotNil(t, p.VideoURL)
	assert.Equal(t, "https://x/v.mp4", *p.VideoURL)
}

func TestCreatePostRefreshesViews(t *testing.T) {
	site, mem := newSite(t)
	seedPosts(mem)
	ctx := context.Background()

	before, err := site.Blogs.Load(ctx)
	require.NoError(t, err)
	require.Len(t, before, 3)

	created, err := site.Admin.CreatePost(ctx, PostInput{Title: "Fresh Post", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "fresh-post", created.Slug)
	assert.NotEqual(t, uuid.Nil, created.ID)

	assert.Len(t, site.Blogs.State().Data, 4, "public list is refetched")

	_, err = site.Admin.CreatePost(ctx, PostInput{Title: "Fresh Post"})
	assert.True(t, errs.IsClientError(err), "duplicate slug is a client error")
	assert.True(t, errs.IsConflict(err))
	assert.Contains(t, err.Error(), `slug "fresh-post" is already used`)
}

func TestUpdateAndDeletePost(t *testing.T) {
	site, mem := newSite(t)
	seedPosts(mem)
	ctx := context.Background()

	all, err := site.Admin.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	draft := all[0]
	assert.Equal(t, "Draft", draft.Title)

	updated, err := site.Admin.UpdatePost(ctx, draft.ID, PostInput{Title: "Now Public", Slug: "draft", Published: true, ContentType: "mixed"})
	require.NoError(t, err)
	assert.True(t, updated.Published)
	assert.Equal(t, models.ContentMixed, updated.ContentType)

	en, err := site.Enhanced.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Now Public"}, titles(en.Partitions.Mixed))

	_, err = site.Admin.UpdatePost(ctx, uuid.New(), PostInput{Title: "Ghost"})
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, site.Admin.DeletePost(ctx, draft.ID))
	assert.True(t, errs.IsNotFound(site.Admin.DeletePost(ctx, draft.ID)))
	assert.Equal(t, 3, mem.Len("blog_posts"))
}

func TestBulkPosts(t *testing.T) {
	site, mem := newSite(t)
	ctx := context.Background()

	inputs := make([]PostInput, 5)
	for i := range inputs {
		inputs[i] = PostInput{Title: "Bulk " + string(rune('a'+i)), Published: true}
	}
	res, err := site.Admin.BulkCreatePosts(ctx, inputs)
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Len(t, res.Data(), 5)
	assert.Equal(t, 3, mem.Calls("insert", "blog_posts"), "chunks of two")

	patches := []batch.Patch{
		{ID: res.Rows[0].ID, Fields: map[string]any{"content_type": "photo"}},
		{ID: res.Rows[1].ID, Fields: map[string]any{"published": false}},
	}
	upd, err := site.Admin.BulkUpdatePosts(ctx, patches)
	require.NoError(t, err)
	require.NoError(t, upd.Err())
	assert.Equal(t, models.ContentPhoto, upd.Rows[0].ContentType)

	_, err = site.Admin.BulkUpdatePosts(ctx, []batch.Patch{{ID: res.Rows[0].ID, Fields: map[string]any{"content_type": "audio"}}})
	assert.True(t, errs.IsInvalidFieldError(err))

	mem.FailNext("delete", "blog_posts", errs.NewApiErr(503, "flaky"))
	ids := []uuid.UUID{res.Rows[0].ID, res.Rows[1].ID, res.Rows[2].ID}
	del := site.Admin.BulkDeletePosts(ctx, ids)
	assert.Len(t, del.Data(), 1)
	assert.True(t, errs.IsPartialFailureError(del.Err()))
	assert.Equal(t, 4, mem.Len("blog_posts"))
}

func TestBulkCreateRejectsInvalidInputUpFront(t *testing.T) {
	site, mem := newSite(t)

	_, err := site.Admin.BulkCreatePosts(context.Background(), []PostInput{{Title: "ok"}, {Title: ""}})
	assert.True(t, errs.IsMissingRequiredFieldError(err))
	assert.Equal(t, 0, mem.Calls("insert", "blog_posts"))
}

func TestPublicationCRUD(t *testing.T) {
	site, mem := newSite(t)
	seedPublications(mem)
	ctx := context.Background()

	_, err := site.Admin.CreatePublication(ctx, models.Publication{Title: "No publisher"})
	assert.True(t, errs.IsMissingRequiredFieldError(err))

	created, err := site.Admin.CreatePublication(ctx, models.Publication{
		Title: "Newest", Publisher: "Journal", PublicationDate: datatypes.Date(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPublicationType, created.Type)

	pubs := site.Publications.State().Data
	require.Len(t, pubs, 3)
	assert.Equal(t, "Newest", pubs[0].Title)

	created.Type = "Book Chapter"
	updated, err := site.Admin.UpdatePublication(ctx, created.ID, *created)
	require.NoError(t, err)
	assert.Equal(t, "Book Chapter", updated.Type)

	require.NoError(t, site.Admin.DeletePublication(ctx, created.ID))
	assert.Len(t, site.Publications.State().Data, 2)
}

func TestUploads(t *testing.T) {
	site, _, up := newSiteWithUploader(t)
	ctx := context.Background()

	url, err := site.Admin.UploadThumbnail(ctx, "cover.jpg", "image/jpeg", strings.NewReader("img"), 3)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example/blog-thumbnails/"))

	_, err = site.Admin.UploadThumbnail(ctx, "clip.mp4", "video/mp4", strings.NewReader("v"), 1)
	assert.True(t, errs.IsUnsupportedMediaTypeError(err))

	file, err := site.Admin.UploadMedia(ctx, "clip.mp4", "video/mp4", strings.NewReader("v"), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MediaVideo, file.Type)
	assert.Contains(t, file.URL, "/blog-media/video/")
	assert.Len(t, up.paths, 2)
}

func TestUploadsWithoutStorage(t *testing.T) {
	site, _ := newSite(t)

	_, err := site.Admin.UploadThumbnail(context.Background(), "cover.jpg", "image/jpeg", strings.NewReader("img"), 3)
	require.Error(t, err)
	assert.Equal(t, "503", errs.Code(err))
}
