package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type publicationHandler struct {
	responder    Responder
	logger       zerolog.Logger
	publications *content.Publications
	admin        *content.Admin
}

func newPublicationHandler(site *content.Site) publicationHandler {
	logger := log.With().Str("handlerName", "publicationHandler").Logger()

	return publicationHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		publications: site.Publications,
		admin:        site.Admin,
	}
}

// PublicationInput is a publication as submitted by the admin form. The
// date is YYYY-MM-DD or RFC 3339.
type PublicationInput struct {
	Title           string  `json:"title"`
	Publisher       string  `json:"publisher"`
	PublicationDate string  `json:"publication_date" example:"2024-03-01"`
	ISSN            *string `json:"issn"`
	Description     *string `json:"description"`
	Type            string  `json:"type" example:"Journal Article"`
	URL             *string `json:"url"`
}

func (in PublicationInput) publication() (models.Publication, error) {
	raw := strings.TrimSpace(in.PublicationDate)
	if raw == "" {
		return models.Publication{}, errs.NewMissingRequiredFieldError("publication_date")
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		if date, err = time.Parse(time.RFC3339, raw); err != nil {
			return models.Publication{}, errs.NewInvalidFieldError("publication_date", "expected YYYY-MM-DD")
		}
	}
	return models.Publication{
		Title:           strings.TrimSpace(in.Title),
		Publisher:       strings.TrimSpace(in.Publisher),
		PublicationDate: datatypes.Date(date),
		ISSN:            in.ISSN,
		Description:     in.Description,
		Type:            strings.TrimSpace(in.Type),
		URL:             in.URL,
	}, nil
}

// getPublications lists publications newest first
// @Summary Get publications
// @Tags Publications
// @Produce json
// @Success 200 {object} PublicationCollection "Publications"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching publications"
// @Router /publications [get]
func (h publicationHandler) getPublications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pubs, err := h.publications.Load(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, PublicationCollection{Publications: pubs, Total: len(pubs)})
	}
}

// createPublication adds a publication
// @Summary Create publication
// @Tags Admin
// @Accept json
// @Produce json
// @Param publication body PublicationInput true "Publication data"
// @Success 201 {object} models.Publication "Created publication"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid publication data"
// @Router /admin/publication [post]
func (h publicationHandler) createPublication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in PublicationInput
		if err := h.responder.DecodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		pub, err := in.publication()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		created, err := h.admin.CreatePublication(r.Context(), pub)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, created)
	}
}

// updatePublication replaces a publication
// @Summary Update publication
// @Tags Admin
// @Accept json
// @Produce json
// @Param publicationID path string true "Publication ID" format(uuid)
// @Param publication body PublicationInput true "Updated publication data"
// @Success 200 {object} models.Publication "Updated publication"
// @Failure 404 {object} ErrorResponse "Not Found - Publication not found"
// @Router /admin/publication/{publicationID} [put]
func (h publicationHandler) updatePublication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "publicationID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in PublicationInput
		if err := h.responder.DecodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		pub, err := in.publication()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		updated, err := h.admin.UpdatePublication(r.Context(), id, pub)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deletePublication removes a publication
// @Summary Delete publication
// @Tags Admin
// @Produce json
// @Param publicationID path string true "Publication ID" format(uuid)
// @Success 200 {object} StatusResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Publication not found"
// @Router /admin/publication/{publicationID} [delete]
func (h publicationHandler) deletePublication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "publicationID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.admin.DeletePublication(r.Context(), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "publication deleted successfully"})
	}
}
