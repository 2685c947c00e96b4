package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
)

const pdfContentType = "application/pdf"

func extension(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}

// ThumbnailPath returns blog-thumbnails/<uuid>.<ext>.
func ThumbnailPath(filename string) string {
	return fmt.Sprintf("blog-thumbnails/%s.%s", uuid.NewString(), extension(filename))
}

// MediaPath returns blog-media/<kind>/<uuid>.<ext>.
func MediaPath(kind models.MediaKind, filename string) string {
	return fmt.Sprintf("blog-media/%s/%s.%s", kind, uuid.NewString(), extension(filename))
}

// ResumePath returns resume/resume-<unix millis>.<ext>.
func ResumePath(filename string, now time.Time) string {
	return fmt.Sprintf("resume/resume-%d.%s", now.UnixMilli(), extension(filename))
}

// CheckResume rejects anything that is not a PDF.
func CheckResume(contentType string) error {
	if strings.TrimSpace(strings.Split(contentType, ";")[0]) != pdfContentType {
		return errs.NewUnsupportedMediaTypeError(contentType, []string{pdfContentType})
	}
	return nil
}

// CheckMedia returns the media kind for an upload or a 415 error.
func CheckMedia(contentType string) (models.MediaKind, error) {
	kind, ok := models.KindForContentType(contentType)
	if !ok {
		return "", errs.NewUnsupportedMediaTypeError(contentType, []string{"image/*", "video/*"})
	}
	return kind, nil
}
