package handlers

import (
	"errors"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userService *services.UserService
	logger      zerolog.Logger
}

func NewAuthHandler(userService *services.UserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	user, err := h.userService.Signup(r.Context(), &req)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Signup failed")
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.respondWithToken(w, user)
}

// Login answers every credential failure with 400.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		var authErr *services.AuthError
		if errors.As(err, &authErr) {
			respondWithError(w, http.StatusBadRequest, authErr.Message)
			return
		}
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.respondWithToken(w, user)
}

// Refresh reissues a token for the authenticated user.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	user, err := h.userService.GetUser(r.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.respondWithToken(w, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user *models.User) {
	token, err := h.userService.IssueToken(user)
	if err != nil {
		h.logger.Error().Err(err).Msg("Token generation failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  user.Role,
		Token: token,
	})
}
