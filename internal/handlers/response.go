package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// statusFor maps a service error to its HTTP status. Errors that carry no
// classification are answered with 400 and reported as unclassified.
func statusFor(err error) (int, bool) {
	var (
		validationErr *services.ValidationError
		conflictErr   *services.ConflictError
		authErr       *services.AuthError
		forbiddenErr  *services.ForbiddenError
		notFoundErr   *services.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &conflictErr):
		return http.StatusBadRequest, true
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, true
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden, true
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, true
	}
	return http.StatusBadRequest, false
}

func respondWithServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	code, classified := statusFor(err)
	if !classified {
		logger.Error().Err(err).Msg("Unclassified service error")
	}
	respondWithError(w, code, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return services.Validation("Invalid request body")
	}
	return nil
}

func pathID(r *http.Request, what string) (primitive.ObjectID, error) {
	return services.ParseID(mux.Vars(r)["id"], what)
}
