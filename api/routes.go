package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the public site routes and the authenticated admin
// routes.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/blog-posts", handlers.blogPostHandler.getBlogPosts())
		r.Get("/blog-post/{slug}", handlers.blogPostHandler.getBlogPost())
		r.Get("/publications", handlers.publicationHandler.getPublications())
		r.Get("/resume", handlers.resumeHandler.getResume())
		r.Get("/content", handlers.contentHandler.getContent())
		r.Get("/counts", handlers.contentHandler.getCounts())
		r.Get("/elapsed", handlers.contentHandler.getElapsed())
		r.Post("/contact", handlers.contactHandler.sendContact())

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", handlers.authHandler.login())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.authenticate)

				r.Get("/session", handlers.authHandler.session())
				r.Post("/logout", handlers.authHandler.logout())

				r.Get("/blog-posts", handlers.blogPostHandler.getAllPosts())
				r.Get("/blog-post/{blogPostID}", handlers.blogPostHandler.getPost())
				r.Post("/blog-post", handlers.blogPostHandler.createBlogPost())
				r.Put("/blog-post/{blogPostID}", handlers.blogPostHandler.updateBlogPost())
				r.Delete("/blog-post/{blogPostID}", handlers.blogPostHandler.deleteBlogPost())
				r.Post("/blog-posts/bulk", handlers.blogPostHandler.bulkCreateBlogPosts())
				r.Patch("/blog-posts/bulk", handlers.blogPostHandler.bulkUpdateBlogPosts())
				r.Delete("/blog-posts/bulk", handlers.blogPostHandler.bulkDeleteBlogPosts())

				r.Post("/publication", handlers.publicationHandler.createPublication())
				r.Put("/publication/{publicationID}", handlers.publicationHandler.updatePublication())
				r.Delete("/publication/{publicationID}", handlers.publicationHandler.deletePublication())

				r.Post("/experience", handlers.resumeHandler.createExperience())
				r.Put("/experience/{experienceID}", handlers.resumeHandler.updateExperience())
				r.Delete("/experience/{experienceID}", handlers.resumeHandler.deleteExperience())
				r.Put("/experiences/order", handlers.resumeHandler.reorderExperiences())
				r.Post("/resume", handlers.resumeHandler.uploadResume())

				r.Post("/uploads/thumbnail", handlers.uploadHandler.uploadThumbnail())
				r.Post("/uploads/media", handlers.uploadHandler.uploadMedia())
			})
		})
	})
}
