package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laveleven/labelai-backend/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRespondError_Taxonomy(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{domain.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrAlreadyExists, http.StatusConflict, "CONFLICT"},
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{domain.ErrValidation, http.StatusBadRequest, "VALIDATION"},
		{domain.ErrDependencyUnavailable, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE"},
		{domain.ErrSerialization, http.StatusInternalServerError, "SERIALIZATION_ERROR"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
		{fmt.Errorf("load item: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.wantCode, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(rec, req, discardLogger(), tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Error.Code)
		})
	}
}

func TestRespondError_ValidationFields(t *testing.T) {
	err := domain.NewValidationErrors([]domain.FieldError{
		{Field: "name", Message: "required"},
		{Field: "type", Message: "required"},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	respondError(rec, req, discardLogger(), err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION", body.Error.Code)
	require.Len(t, body.Error.Fields, 2)
	assert.Equal(t, "name", body.Error.Fields[0].Field)
}

func TestRespondError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(rec, req, discardLogger(), errors.New("pq: secret table detail"))

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.NotContains(t, rec.Body.String(), "secret")
}
