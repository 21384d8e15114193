package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestPredicatesFollowWrapping(t *testing.T) {
	err := fmt.Errorf("loading contact: %w", NewNotFoundError("contact"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "contact not found", GetAppError(err).Message)
	assert.Nil(t, GetAppError(errors.New("plain")))
}

func TestDatabaseErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := NewDatabaseError("insert contact", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrorTypeDatabase))
	assert.Contains(t, err.Error(), "caused by: disk full")
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		debug      bool
		err        error
		wantStatus int
		wantType   string
		wantError  string
	}{
		{"validation", false, NewValidationError("displayName is required"), http.StatusBadRequest, "VALIDATION", "displayName is required"},
		{"unauthorized", false, NewUnauthorizedError(""), http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
		{"unknown error hidden", false, errors.New("secret detail"), http.StatusInternalServerError, "INTERNAL", "An internal error occurred"},
		{"unknown error in debug", true, errors.New("secret detail"), http.StatusInternalServerError, "INTERNAL", "secret detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewErrorHandler(zap.NewNop(), tt.debug)
			rec := httptest.NewRecorder()

			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decode(t, rec)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestHandle_DebugCause(t *testing.T) {
	err := NewDatabaseError("get contact", errors.New("connection reset"))

	rec := httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), true).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)
	assert.Equal(t, "connection reset", decode(t, rec).Details["cause"])

	rec = httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), false).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)
	assert.Nil(t, decode(t, rec).Details)
}

func TestHandleStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorHandler(zap.NewNop(), false).HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/nope", nil), http.StatusNotFound, "Not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "NOT_FOUND", body.Type)
	assert.Equal(t, "Not found", body.Error)
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	handler := h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", decode(t, rec).Type)
}
