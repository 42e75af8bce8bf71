package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/hodeway/internal/apperror"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantAuth   bool // expects WWW-Authenticate: Bearer
	}{
		{"validation", apperror.ValidationFailed("email", "invalid email format"), http.StatusBadRequest, "validation_error", false},
		{"not found", apperror.NotFound("itinerary", "abc"), http.StatusNotFound, "not_found", false},
		{"duplicate user", apperror.DuplicateUser(), http.StatusConflict, "conflict", false},
		{"invalid credentials", apperror.InvalidCredentials(), http.StatusUnauthorized, "invalid_credentials", false},
		{"unauthorized", apperror.Unauthorized(), http.StatusUnauthorized, "unauthorized", true},
		{"store unavailable", fmt.Errorf("%w: %w", apperror.StoreUnavailable(), errors.New("dial tcp: refused")), http.StatusServiceUnavailable, "unavailable", false},
		{"wrapped validation", fmt.Errorf("creating itinerary: %w", apperror.ValidationFailed("title", "title is required")), http.StatusBadRequest, "validation_error", false},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantType, body.Error)
			assert.NotEmpty(t, body.Message)

			if tt.wantAuth {
				assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestWriteError_HidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, fmt.Errorf("%w: %w", apperror.StoreUnavailable(), errors.New("pq: password authentication failed for user admin")))

	assert.NotContains(t, rr.Body.String(), "admin")
	assert.Contains(t, rr.Body.String(), "service temporarily unavailable")
}

func TestWriteError_IncludesField(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperror.DuplicateUser())

	assert.JSONEq(t,
		`{"error":"conflict","message":"email is already registered","field":"email"}`,
		rr.Body.String())
}
