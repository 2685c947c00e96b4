package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/academic-portfolio-backend/batch"
	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type blogPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	enhanced  *content.EnhancedBlogs
	admin     *content.Admin
}

func newBlogPostHandler(site *content.Site) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder: NewResponder(logger),
		logger:    logger,
		enhanced:  site.Enhanced,
		admin:     site.Admin,
	}
}

// getBlogPosts lists published blog posts
// @Summary Get published blog posts
// @Description Lists published posts newest first. Without a type the response also groups the posts by content type.
// @Tags Blog Posts
// @Produce json
// @Param type query string false "Content type filter" Enums(text, video, photo, mixed)
// @Success 200 {object} BlogPostCollection "Published blog posts"
// @Failure 400 {object} ErrorResponse "Bad Request - Unknown content type"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching blog posts"
// @Router /blog-posts [get]
func (h blogPostHandler) getBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := r.URL.Query().Get("type"); raw != "" {
			ct, err := models.ParseContentType(raw)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("type", err.Error()))
				return
			}
			posts, err := h.enhanced.ByType(r.Context(), ct)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			h.responder.WriteJSON(w, BlogPostCollection{BlogPosts: posts, Total: len(posts)})
			return
		}

		en, err := h.enhanced.Load(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, BlogPostCollection{
			BlogPosts:  en.Posts,
			Partitions: &en.Partitions,
			Total:      len(en.Posts),
		})
	}
}

// getBlogPost retrieves a published blog post by slug
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param slug path string true "Blog post slug"
// @Success 200 {object} models.BlogPost "Blog post"
// @Failure 404 {object} ErrorResponse "Not Found - No published post with that slug"
// @Router /blog-post/{slug} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if !models.ValidSlug(slug) {
			h.responder.WriteError(w, errs.NewNotFound("blog post"))
			return
		}
		post, err := h.enhanced.BySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// getAllPosts lists every post, drafts included
// @Summary Get all blog posts
// @Tags Admin
// @Produce json
// @Success 200 {object} BlogPostCollection "All blog posts"
// @Router /admin/blog-posts [get]
func (h blogPostHandler) getAllPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.admin.Posts(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, BlogPostCollection{BlogPosts: posts, Total: len(posts)})
	}
}

// getPost retrieves any post by ID
// @Summary Get blog post by ID
// @Tags Admin
// @Produce json
// @Param blogPostID path string true "Blog Post ID" format(uuid)
// @Success 200 {object} models.BlogPost "Blog post"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blogPostID"
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /admin/blog-post/{blogPostID} [get]
func (h blogPostHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post, err := h.admin.Post(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// createBlogPost creates a new blog post
// @Summary Create blog post
// @Description Creates a post. The slug is derived from the title when omitted; uploaded media is folded into photo_urls and video_url.
// @Tags Admin
// @Accept json
// @Produce json
// @Param blogPost body content.PostInput true "Blog post data"
// @Success 201 {object} models.BlogPost "Created blog post"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blog post data"
// @Failure 409 {object} ErrorResponse "Conflict - Slug already used"
// @Router /admin/blog-post [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in content.PostInput
		if err := h.responder.DecodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post, err := h.admin.CreatePost(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.logger.Info().Str("slug", post.Slug).Msg("blog post created")
		h.responder.WriteCreated(w, post)
	}
}

// updateBlogPost replaces an existing blog post
// @Summary Update blog post
// @Tags Admin
// @Accept json
// @Produce json
// @Param blogPostID path string true "Blog Post ID" format(uuid)
// @Param blogPost body content.PostInput true "Updated blog post data"
// @Success 200 {object} models.BlogPost "Updated blog post"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blog post data"
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /admin/blog-post/{blogPostID} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in content.PostInput
		if err := h.responder.DecodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post, err := h.admin.UpdatePost(r.Context(), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// deleteBlogPost deletes a blog post by ID
// @Summary Delete blog post
// @Tags Admin
// @Produce json
// @Param blogPostID path string true "Blog Post ID" format(uuid)
// @Success 200 {object} StatusResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /admin/blog-post/{blogPostID} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.admin.DeletePost(r.Context(), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "blog post deleted successfully"})
	}
}

// bulkCreateBlogPosts inserts many posts in chunks
// @Summary Bulk create blog posts
// @Description Validates every post, then inserts them in chunks. A failed chunk does not stop the rest; the response is 207 when only some rows were written.
// @Tags Admin
// @Accept json
// @Produce json
// @Param blogPosts body []content.PostInput true "Posts to create"
// @Success 200 {object} BulkResponse[models.BlogPost] "All rows written"
// @Success 207 {object} BulkResponse[models.BlogPost] "Some rows written"
// @Failure 400 {object} ErrorResponse "Bad Request - An input is invalid"
// @Router /admin/blog-posts/bulk [post]
func (h blogPostHandler) bulkCreateBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var inputs []content.PostInput
		if err := h.responder.DecodeJSON(w, r, &inputs); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		res, err := h.admin.BulkCreatePosts(r.Context(), inputs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		writeBulk(h.responder, w, res)
	}
}

// bulkUpdateBlogPosts applies partial updates to many posts
// @Summary Bulk update blog posts
// @Tags Admin
// @Accept json
// @Produce json
// @Param patches body []batch.Patch true "Per-row field updates"
// @Success 200 {object} BulkResponse[models.BlogPost] "All rows updated"
// @Success 207 {object} BulkResponse[models.BlogPost] "Some rows updated"
// @Router /admin/blog-posts/bulk [patch]
func (h blogPostHandler) bulkUpdateBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patches []batch.Patch
		if err := h.responder.DecodeJSON(w, r, &patches); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		res, err := h.admin.BulkUpdatePosts(r.Context(), patches)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		writeBulk(h.responder, w, res)
	}
}

// bulkDeleteBlogPosts deletes many posts by ID
// @Summary Bulk delete blog posts
// @Tags Admin
// @Accept json
// @Produce json
// @Param ids body BulkDeleteRequest true "IDs to delete"
// @Success 200 {object} BulkResponse[models.BlogPost] "Deleted rows"
// @Success 207 {object} BulkResponse[models.BlogPost] "Some rows deleted"
// @Router /admin/blog-posts/bulk [delete]
func (h blogPostHandler) bulkDeleteBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BulkDeleteRequest
		if err := h.responder.DecodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if len(req.IDs) == 0 {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("ids"))
			return
		}
		writeBulk(h.responder, w, h.admin.BulkDeletePosts(r.Context(), req.IDs))
	}
}
