package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rs/zerolog"
)

const (
	maxResponseSize = 10 * 1024 * 1024 // 10MB
	maxJSONBodySize = 2 * 1024 * 1024
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.writeJSON(w, http.StatusOK, data)
}

func (r Responder) WriteCreated(w http.ResponseWriter, data any) {
	r.writeJSON(w, http.StatusCreated, data)
}

func (r Responder) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large, truncating")

		truncatedJSON, _ := json.Marshal(map[string]any{
			"error":        "Response too large",
			"message":      "The requested data exceeds the maximum response size",
			"maxSizeMB":    maxResponseSize / (1024 * 1024),
			"actualSizeMB": len(jsonData) / (1024 * 1024),
		})
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write(truncatedJSON)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	}

	response := ErrorResponse{
		Error:   apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}
	if apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}
	r.writeJSON(w, apiErr.StatusCode, response)
}

// DecodeJSON reads a JSON body of at most maxJSONBodySize bytes into dst.
func (r Responder) DecodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	body := http.MaxBytesReader(w, req.Body, maxJSONBodySize)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewInvalidJSONError(errors.New("empty request body"))
		}
		r.logger.Debug().Err(err).Msg("Failed to decode request body")
		return errs.NewInvalidJSONError(err)
	}
	return nil
}
