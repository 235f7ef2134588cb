package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dreamwise/dreamwise/internal/model"
	"github.com/dreamwise/dreamwise/internal/service"
)

type AuthHandler struct {
	authService   *service.AuthService
	avatarService *service.AvatarService
}

func NewAuthHandler(authService *service.AuthService, avatarService *service.AvatarService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		avatarService: avatarService,
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type registerRequest struct {
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Code     string         `json:"code"`
	Profile  *model.Profile `json:"profile,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string            `json:"token"`
	Account model.SafeProfile `json:"account"`
}

func (h *AuthHandler) RequestRegistrationCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.RequestRegistrationCode(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, messageResponse{Message: "verification code sent"})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.authService.Register(r.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
		Profile:  req.Profile,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, err := h.authService.GenerateJWT(account)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:   token,
		Account: safeProfile(r.Context(), h.avatarService, account),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:   token,
		Account: safeProfile(r.Context(), h.avatarService, account),
	})
}

// RequestPasswordReset answers 202 whether or not the account exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.RequestPasswordReset(r.Context(), req.Email)
	if errors.Is(err, service.ErrValidation) {
		writeServiceError(w, r, err)
		return
	}
	if err != nil {
		slog.Error("password reset request failed", "error", err)
	}

	writeJSON(w, http.StatusAccepted, messageResponse{Message: "if an account exists for this email, a code has been sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.ResetPassword(r.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}
