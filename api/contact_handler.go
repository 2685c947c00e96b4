package api

import (
	"net/http"

	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	mailer    Mailer
}

func newContactHandler(mailer Mailer) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()
	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		mailer:    mailer,
	}
}

// sendContact forwards a contact-form message by email
// @Summary Send contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body services.ContactMessage true "Contact message"
// @Success 202 {object} StatusResponse "Message accepted"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing or invalid field"
// @Failure 503 {object} ErrorResponse "Service Unavailable - Email not configured"
// @Router /contact [post]
func (h contactHandler) sendContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.mailer == nil {
			h.responder.WriteError(w, errs.NewConfigMissingError("RESEND_API_KEY"))
			return
		}
		var msg services.ContactMessage
		if err := h.responder.DecodeJSON(w, r, &msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.mailer.SendContact(r.Context(), msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.writeJSON(w, http.StatusAccepted, StatusResponse{Status: "success", Message: "message sent"})
	}
}
