package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contentHandler struct {
	responder Responder
	logger    zerolog.Logger
	content   *content.Content
	counts    *content.Counts
	elapsed   ElapsedSource
}

func newContentHandler(site *content.Site, elapsed ElapsedSource) contentHandler {
	logger := log.With().Str("handlerName", "contentHandler").Logger()
	return contentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		content:   site.Content,
		counts:    site.Counts,
		elapsed:   elapsed,
	}
}

// getContent returns blogs and publications together
// @Summary Get combined content
// @Description Returns published posts, publications, the posts grouped by content type and the totals. With kind only that slice is returned.
// @Tags Content
// @Produce json
// @Param kind query string false "Slice to return" Enums(blog, publication, video, photo)
// @Success 200 {object} content.Snapshot "Combined content"
// @Failure 400 {object} ErrorResponse "Bad Request - Unknown kind"
// @Router /content [get]
func (h contentHandler) getContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			kind content.Kind
			err  error
		)
		if raw := r.URL.Query().Get("kind"); raw != "" {
			if kind, err = content.ParseKind(raw); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		snap, err := h.content.Load(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if kind != "" {
			h.responder.WriteJSON(w, snap.ByKind(kind))
			return
		}
		h.responder.WriteJSON(w, snap)
	}
}

// getCounts returns the number of published posts and publications
// @Summary Get content counts
// @Tags Content
// @Produce json
// @Success 200 {object} content.Totals "Counts"
// @Router /counts [get]
func (h contentHandler) getCounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := h.counts.Load(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, totals)
	}
}

// getElapsed returns the time since the career start date
// @Summary Get career counter
// @Tags Content
// @Produce json
// @Success 200 {object} ElapsedResponse "Elapsed time"
// @Router /elapsed [get]
func (h contentHandler) getElapsed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e := h.elapsed.Current()
		h.responder.WriteJSON(w, ElapsedResponse{
			Since:      h.elapsed.Since().Format(time.DateOnly),
			Years:      e.Years,
			Months:     e.Months,
			Days:       e.Days,
			TotalDays:  e.TotalDays,
			Formatted:  e.Format(),
			YearsOnly:  e.YearsOnly(),
			MonthsOnly: e.MonthsOnly(),
			DaysOnly:   e.DaysOnly(),
		})
	}
}
