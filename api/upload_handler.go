package api

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const uploadField = "file"

// upload is a file read from a multipart form.
type upload struct {
	file        multipart.File
	name        string
	contentType string
	size        int64
}

// readUpload opens the "file" part of a multipart request of at most
// maxBytes. The part's own Content-Type wins; the extension is the fallback.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errs.NewMaxBodySizeExceededError(maxBytes)
		}
		return nil, errs.Malformed("multipart form")
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errs.NewMissingRequiredFieldError(uploadField)
	}

	ct := header.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
			ct = byExt
		}
	}
	return &upload{file: file, name: header.Filename, contentType: ct, size: header.Size}, nil
}

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	admin     *content.Admin
	maxUpload int64
}

func newUploadHandler(admin *content.Admin, maxUpload int64) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()
	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		admin:     admin,
		maxUpload: maxUpload,
	}
}

// uploadThumbnail stores a post thumbnail image
// @Summary Upload thumbnail
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} map[string]string "Public URL"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type - Not an image"
// @Failure 503 {object} ErrorResponse "Service Unavailable - Storage not configured"
// @Router /admin/uploads/thumbnail [post]
func (h uploadHandler) uploadThumbnail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, err := readUpload(w, r, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer up.file.Close()

		url, err := h.admin.UploadThumbnail(r.Context(), up.name, up.contentType, up.file, up.size)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, map[string]string{"url": url})
	}
}

// uploadMedia stores an image or video for a post
// @Summary Upload post media
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or video file"
// @Success 201 {object} models.MediaFile "Uploaded media"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type - Not an image or video"
// @Router /admin/uploads/media [post]
func (h uploadHandler) uploadMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, err := readUpload(w, r, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer up.file.Close()

		file, err := h.admin.UploadMedia(r.Context(), up.name, up.contentType, up.file, up.size)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, file)
	}
}
