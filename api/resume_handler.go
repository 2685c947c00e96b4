package api

import (
	"net/http"

	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type resumeHandler struct {
	responder Responder
	logger    zerolog.Logger
	resume    *content.Resume
	maxUpload int64
}

func newResumeHandler(resume *content.Resume, maxUpload int64) resumeHandler {
	logger := log.With().Str("handlerName", "resumeHandler").Logger()
	return resumeHandler{
		responder: NewResponder(logger),
		logger:    logger,
		resume:    resume,
		maxUpload: maxUpload,
	}
}

// getResume returns the resume document and the experience timeline
// @Summary Get resume
// @Description Returns the resume PDF link (null when none is uploaded) and the experiences in display order
// @Tags Resume
// @Produce json
// @Success 200 {object} content.ResumeView "Resume and experiences"
// @Router /resume [get]
func (h resumeHandler) getResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.resume.Load(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, view)
	}
}

// uploadResume replaces the resume PDF
// @Summary Upload resume PDF
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Success 200 {object} models.Resume "Updated resume"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type - Not a PDF"
// @Router /admin/resume [post]
func (h resumeHandler) uploadResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, err := readUpload(w, r, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer up.file.Close()

		doc, err := h.resume.SetPDF(r.Context(), up.name, up.contentType, up.file, up.size)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, doc)
	}
}

// createExperience adds a timeline entry
// @Summary Create experience
// @Tags Admin
// @Accept json
// @Produce json
// @Param experience body models.Experience true "Experience data"
// @Success 201 {object} models.Experience "Created experience"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing field"
// @Router /admin/experience [post]
func (h resumeHandler) createExperience() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var exp models.Experience
		if err := h.responder.DecodeJSON(w, r, &exp); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		created, err := h.resume.CreateExperience(r.Context(), exp)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, created)
	}
}

// updateExperience replaces a timeline entry
// @Summary Update experience
// @Tags Admin
// @Accept json
// @Produce json
// @Param experienceID path string true "Experience ID" format(uuid)
// @Param experience body models.Experience true "Updated experience"
// @Success 200 {object} models.Experience "Updated experience"
// @Failure 404 {object} ErrorResponse "Not Found - Experience not found"
// @Router /admin/experience/{experienceID} [put]
func (h resumeHandler) updateExperience() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "experienceID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var exp models.Experience
		if err := h.responder.DecodeJSON(w, r, &exp); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		updated, err := h.resume.UpdateExperience(r.Context(), id, exp)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

// deleteExperience removes a timeline entry
// @Summary Delete experience
// @Tags Admin
// @Produce json
// @Param experienceID path string true "Experience ID" format(uuid)
// @Success 200 {object} StatusResponse "Success message"
// @Router /admin/experience/{experienceID} [delete]
func (h resumeHandler) deleteExperience() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "experienceID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.resume.DeleteExperience(r.Context(), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "experience deleted successfully"})
	}
}

// reorderExperiences sets the display order of the timeline
// @Summary Reorder experiences
// @Description Sets each entry's order_index to its position in ids and returns the reordered timeline
// @Tags Admin
// @Accept json
// @Produce json
// @Param order body ReorderRequest true "Experience IDs in display order"
// @Success 200 {array} models.Experience "Reordered experiences"
// @Router /admin/experiences/order [put]
func (h resumeHandler) reorderExperiences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if err := h.responder.DecodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if len(req.IDs) == 0 {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("ids"))
			return
		}
		exps, err := h.resume.Reorder(r.Context(), req.IDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, exps)
	}
}
