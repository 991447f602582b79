package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/bookclub/catalog/internal/services"
	"github.com/bookclub/catalog/internal/session"
)

const logoutNotice = "You have successfully logged out"

// AuthHandler provides registration and cookie session endpoints.
type AuthHandler struct {
	userService *services.UserService
	sessions    *session.Manager
	views       *Views
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, sessions *session.Manager, views *Views) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		views:       views,
	}
}

// AuthRouter registers auth routes on the given router. limit, when not
// nil, guards the credential endpoints.
func AuthRouter(r chi.Router, userService *services.UserService, sessions *session.Manager, views *Views, limit func(http.Handler) http.Handler) {
	handler := NewAuthHandler(userService, sessions, views)
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/register/", handler.RegisterForm)
	r.With(limit).Post("/register/", handler.Register)
	r.Get("/login/", handler.LoginForm)
	r.With(limit).Post("/login/", handler.Login)
	r.Post("/logout/", handler.Logout)
}

type RegisterErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, http.StatusOK, "register_form", pageData{
		"Form":   services.Registration{},
		"Errors": map[string]string{},
	})
}

// Register creates an account. The new user still has to log in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.Registration
	if err := decodeBody(w, r, &req, func(form url.Values) {
		req.Username = form.Get("username")
		req.Email = form.Get("email")
		req.Password = form.Get("password")
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.userService.Register(r.Context(), req); err != nil {
		var errs validation.Errors
		if !errors.As(err, &errs) {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to create user")
			h.views.fail(w, r, http.StatusInternalServerError, "failed to create user")
			return
		}
		messages := make(map[string]string, len(errs))
		for field, fieldErr := range errs {
			messages[field] = fieldErr.Error()
		}
		if wantsHTML(r) {
			req.Password = ""
			h.views.render(w, r, http.StatusBadRequest, "register_form", pageData{"Form": req, "Errors": messages})
			return
		}
		writeJSON(w, http.StatusBadRequest, RegisterErrorResponse{Errors: messages})
		return
	}

	redirect(w, r, "/")
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, http.StatusOK, "login_form", pageData{"Username": "", "Error": ""})
}

// Login verifies credentials and starts a cookie session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req, func(form url.Values) {
		req.Username = form.Get("username")
		req.Password = form.Get("password")
	}); err != nil {
		h.loginFailed(w, r, http.StatusBadRequest, "error invalid form", "")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.loginFailed(w, r, http.StatusBadRequest, "error invalid form", req.Username)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.loginFailed(w, r, http.StatusUnauthorized, err.Error(), req.Username)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to authenticate")
		h.views.fail(w, r, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if err := h.sessions.Issue(w, user.ID); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to create session")
		h.views.fail(w, r, http.StatusInternalServerError, "failed to create session")
		return
	}
	redirect(w, r, "/")
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, status int, message, username string) {
	if wantsHTML(r) {
		h.views.render(w, r, status, "login_form", pageData{"Username": username, "Error": message})
		return
	}
	writeError(w, status, message)
}

// Logout ends the session and leaves a notice for the next page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(w, r); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to revoke session")
	}
	session.SetFlash(w, logoutNotice)
	redirect(w, r, "/")
}
