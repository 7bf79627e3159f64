package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace/internal/services"

	"github.com/rs/zerolog"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err        error
		code       int
		classified bool
	}{
		{services.Validation("bad"), http.StatusBadRequest, true},
		{services.Conflict("dup"), http.StatusBadRequest, true},
		{services.Auth("no"), http.StatusUnauthorized, true},
		{services.Forbidden("no"), http.StatusForbidden, true},
		{services.NotFound("gone"), http.StatusNotFound, true},
		{fmt.Errorf("wrapped: %w", services.Forbidden("no")), http.StatusForbidden, true},
		{errors.New("connection reset"), http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		code, classified := statusFor(tt.err)
		if code != tt.code || classified != tt.classified {
			t.Errorf("statusFor(%v) = %d, %t; want %d, %t", tt.err, code, classified, tt.code, tt.classified)
		}
	}
}

func TestRespondWithServiceErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithServiceError(rec, zerolog.Nop(), services.NotFound("Order not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Order not found"}` {
		t.Errorf("body = %s", got)
	}
}
