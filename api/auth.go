package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookie = "admin_session"
	tokenIssuer   = "academic-portfolio"
)

// Session is an authenticated admin login.
type Session struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialStore looks admin accounts up by username.
type CredentialStore interface {
	FindAdmin(ctx context.Context, username string) (*models.AdminUser, error)
}

type adminStore struct {
	repo *database.Repository[models.AdminUser]
}

// NewCredentialStore reads accounts from the admin_users table.
func NewCredentialStore(repo *database.Repository[models.AdminUser]) CredentialStore {
	return adminStore{repo: repo}
}

func (s adminStore) FindAdmin(ctx context.Context, username string) (*models.AdminUser, error) {
	return s.repo.Single(ctx, database.Query{Filters: map[string]any{"username": username}})
}

// sessionIssuer signs and verifies HS256 session tokens.
type sessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newSessionIssuer(c map[string]string) sessionIssuer {
	return sessionIssuer{
		secret: []byte(config.GetString(c, "ADMIN_JWT_SECRET", "")),
		ttl:    config.GetDuration(c, "ADMIN_SESSION_HOURS", time.Hour, 24*time.Hour),
		now:    time.Now,
	}
}

func (i sessionIssuer) issue(username string) (string, Session, error) {
	if len(i.secret) == 0 {
		return "", Session{}, errs.NewConfigMissingError("ADMIN_JWT_SECRET")
	}
	now := i.now()
	session := Session{Username: username, ExpiresAt: now.Add(i.ttl).Truncate(time.Second)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", Session{}, errs.NewInternalErrorWithCause("sign session token", err)
	}
	return signed, session, nil
}

func (i sessionIssuer) parse(raw string) (Session, error) {
	if len(i.secret) == 0 {
		return Session{}, errs.NewConfigMissingError("ADMIN_JWT_SECRET")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Session{}, errs.NewInvalidTokenError(err)
	}
	if claims.Subject == "" {
		return Session{}, errs.NewInvalidTokenError(errors.New("token has no subject"))
	}
	return Session{Username: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// tokenFromRequest prefers the bearer header over the session cookie.
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

type authHandler struct {
	responder    Responder
	logger       zerolog.Logger
	credentials  CredentialStore
	issuer       sessionIssuer
	secureCookie bool
}

func newAuthHandler(credentials CredentialStore, issuer sessionIssuer, secureCookie bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()
	return authHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		credentials:  credentials,
		issuer:       issuer,
		secureCookie: secureCookie,
	}
}

func (h authHandler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}

// login checks admin credentials and starts a session
// @Summary Admin login
// @Description Verifies the username and password and returns a session token, also set as the admin_session cookie
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse "Session token"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing username or password"
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /admin/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := h.responder.DecodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("username"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		user, err := h.credentials.FindAdmin(r.Context(), req.Username)
		if err != nil {
			if errs.IsNotFound(err) {
				h.logger.Warn().Str("username", req.Username).Msg("login for unknown admin")
				h.responder.WriteError(w, errs.NewInvalidCredentialsError())
				return
			}
			h.responder.WriteError(w, err)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			h.logger.Warn().Str("username", req.Username).Msg("login with wrong password")
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}

		token, session, err := h.issuer.issue(user.Username)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.setCookie(w, token, session.ExpiresAt)
		h.logger.Info().Str("username", user.Username).Msg("admin logged in")
		h.responder.WriteJSON(w, LoginResponse{Token: token, Session: session})
	}
}

// logout clears the session cookie
// @Summary Admin logout
// @Tags Admin
// @Produce json
// @Success 200 {object} StatusResponse "Logged out"
// @Router /admin/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.setCookie(w, "", time.Unix(0, 0))
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "logged out"})
	}
}

// session returns the current admin session
// @Summary Current admin session
// @Tags Admin
// @Produce json
// @Success 200 {object} Session "Session details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /admin/session [get]
func (h authHandler) session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := ctxGetSession(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		h.responder.WriteJSON(w, session)
	}
}

// EnsureAdmin creates the admin account when no account with that username
// exists. It reports whether an account was created.
func EnsureAdmin(ctx context.Context, repo *database.Repository[models.AdminUser], username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, errs.NewMissingRequiredFieldError("username")
	}
	_, err := NewCredentialStore(repo).FindAdmin(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case !errs.IsNotFound(err):
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, errs.NewInternalErrorWithCause("hash admin password", err)
	}
	if _, err := repo.Add(ctx, models.AdminUser{Username: username, PasswordHash: string(hash)}); err != nil {
		return false, err
	}
	return true, nil
}
