package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/elapsed"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, deps Deps) (Server, error) {
	if deps.Site == nil {
		return Server{}, errors.New("api: a content site is required")
	}
	if deps.Credentials == nil {
		return Server{}, errors.New("api: a credential store is required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()
	router := newRouter(deps, withConfig(c), withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(c, "READ_TIMEOUT_SECONDS", time.Second, 180*time.Second),
		WriteTimeout: config.GetDuration(c, "WRITE_TIMEOUT_SECONDS", time.Second, 180*time.Second),
		IdleTimeout:  config.GetDuration(c, "IDLE_TIMEOUT_SECONDS", time.Second, 180*time.Second),
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Deps, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if deps.Elapsed == nil {
		deps.Elapsed = elapsed.NewTracker(elapsed.DefaultStart, nil)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	issuer := newSessionIssuer(router.config)
	secureCookie := config.GetBool(router.config, "ADMIN_COOKIE_SECURE", true)
	maxUpload := int64(config.GetInt(router.config, "UPLOAD_MAX_MB", 50)) << 20

	handlers := initializeHandlers(deps, issuer, secureCookie, maxUpload)
	authMiddleware := newAuthMiddleware(issuer)

	acceptedOrigins := splitOrigins(config.GetString(router.config, "ACCEPTED_ORIGINS", ""))
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		NewResponder(log.Logger).WriteJSON(w, map[string]string{
			"status": "ok",
			"uptime": time.Since(router.startupTime).Truncate(time.Second).String(),
		})
	})
	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		errChannel <- err
	}
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
