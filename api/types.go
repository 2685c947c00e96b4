package api

import (
	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/content"
	"github.com/rpupo63/academic-portfolio-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler        authHandler
	blogPostHandler    blogPostHandler
	publicationHandler publicationHandler
	resumeHandler      resumeHandler
	contentHandler     contentHandler
	uploadHandler      uploadHandler
	contactHandler     contactHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// StatusResponse is the body of mutations that return no row.
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message,omitempty"`
}

// BlogPostCollection is a list of posts. Partitions is only set on the
// unfiltered listing.
type BlogPostCollection struct {
	BlogPosts  []models.BlogPost   `json:"blogPosts"`
	Partitions *content.Partitions `json:"partitions,omitempty"`
	Total      int                 `json:"total"`
}

// PublicationCollection is a list of publications, newest first.
type PublicationCollection struct {
	Publications []models.Publication `json:"publications"`
	Total        int                  `json:"total"`
}

// BulkResponse reports a chunked bulk mutation. Errors lists every failed
// chunk or row; rows written before a failure are kept.
type BulkResponse[T any] struct {
	Rows    []T      `json:"rows"`
	Written int      `json:"written"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

// ElapsedResponse is the career counter with its display strings.
type ElapsedResponse struct {
	Since      string `json:"since"`
	Years      int    `json:"years"`
	Months     int    `json:"months"`
	Days       int    `json:"days"`
	TotalDays  int    `json:"total_days"`
	Formatted  string `json:"formatted"`
	YearsOnly  string `json:"years_only"`
	MonthsOnly string `json:"months_only"`
	DaysOnly   string `json:"days_only"`
}
