package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dom/mini-crm/internal/api/middleware"
	"github.com/dom/mini-crm/internal/api/response"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

type AuthHandler struct {
	authService *service.AuthService
	metrics     *metrics.Metrics
}

func NewAuthHandler(authService *service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is optional. All revokes every session of the caller and
// needs a valid access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

type AuthResponse struct {
	Message      string       `json:"message"`
	User         *domain.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

type StatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
	Token         string       `json:"token,omitempty"`
}

type SessionResponse struct {
	Sessions []*domain.RefreshToken `json:"sessions"`
}

var errInvalidBody = domain.NewValidationError("Invalid request body")

// decodeBody treats an empty body as an empty object.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody
	}
	return nil
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	h.countOutcome(func(m *metrics.Metrics) *prometheus.CounterVec { return m.RegistrationAttemptsTotal }, err)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, AuthResponse{
		Message:      "User registered successfully",
		User:         result.User,
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	h.countOutcome(func(m *metrics.Metrics) *prometheus.CounterVec { return m.LoginAttemptsTotal }, err)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, AuthResponse{
		Message:      "Login successful",
		User:         result.User,
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Logout always succeeds for the client; access tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	input := service.LogoutInput{RefreshToken: req.RefreshToken, All: req.All}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		input.UserID = user.ID
	}

	if err := h.authService.Logout(r.Context(), input); err != nil {
		response.Error(w, r, err)
		return
	}

	response.Message(w, http.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	token, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	h.countOutcome(func(m *metrics.Metrics) *prometheus.CounterVec { return m.TokenRefreshTotal }, err)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, domain.ErrTokenMissing)
		return
	}

	response.JSON(w, http.StatusOK, map[string]*domain.User{"user": user})
}

func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, domain.ErrTokenMissing)
		return
	}

	sessions, err := h.authService.ActiveSessions(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*domain.RefreshToken{}
	}

	response.JSON(w, http.StatusOK, SessionResponse{Sessions: sessions})
}

// Status reports whether the caller is authenticated and hands an
// authenticated caller a fresh access token.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.JSON(w, http.StatusOK, StatusResponse{Authenticated: false})
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, StatusResponse{
		Authenticated: true,
		User:          user,
		Token:         token,
	})
}

func (h *AuthHandler) countOutcome(vec func(*metrics.Metrics) *prometheus.CounterVec, err error) {
	if h.metrics == nil {
		return
	}
	vec(h.metrics).WithLabelValues(metrics.Outcome(err)).Inc()
}
