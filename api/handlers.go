package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/batch"
	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rpupo63/academic-portfolio-backend/elapsed"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/services"
)

// Mailer delivers contact-form messages. *services.Mailer satisfies it.
type Mailer interface {
	SendContact(ctx context.Context, msg services.ContactMessage) error
}

// ElapsedSource reports the career counter. *elapsed.Tracker satisfies it.
type ElapsedSource interface {
	Current() elapsed.Elapsed
	Since() time.Time
}

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Site        *content.Site
	Credentials CredentialStore
	Mailer      Mailer
	Elapsed     ElapsedSource
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Deps, issuer sessionIssuer, secureCookie bool, maxUpload int64) *routeHandlers {
	return &routeHandlers{
		authHandler:        newAuthHandler(deps.Credentials, issuer, secureCookie),
		blogPostHandler:    newBlogPostHandler(deps.Site),
		publicationHandler: newPublicationHandler(deps.Site),
		resumeHandler:      newResumeHandler(deps.Site.Resume, maxUpload),
		contentHandler:     newContentHandler(deps.Site, deps.Elapsed),
		uploadHandler:      newUploadHandler(deps.Site.Admin, maxUpload),
		contactHandler:     newContactHandler(deps.Mailer),
	}
}

// parseID reads a UUID path parameter.
func parseID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(param, "must be a UUID")
	}
	return id, nil
}

// writeBulk reports a bulk result: 200 when every chunk succeeded, 207 when
// some rows were written, and the first error when none were.
func writeBulk[T any](responder Responder, w http.ResponseWriter, res batch.Result[T]) {
	err := res.Err()
	if err != nil && len(res.Rows) == 0 {
		responder.WriteError(w, err)
		return
	}

	body := BulkResponse[T]{
		Rows:    res.Rows,
		Written: len(res.Rows),
		Failed:  len(res.Errors),
	}
	if body.Rows == nil {
		body.Rows = []T{}
	}
	for _, e := range res.Errors {
		body.Errors = append(body.Errors, e.Error())
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusMultiStatus
	}
	responder.writeJSON(w, status, body)
}
