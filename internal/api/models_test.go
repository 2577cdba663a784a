package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "fitnesstime/internal/errors"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden},
		{"event full", apperrors.ErrEventFull, http.StatusConflict},
		{"already joined", apperrors.ErrAlreadyJoined, http.StatusConflict},
		{"not a member", apperrors.ErrNotMember, http.StatusForbidden},
		{"invalid interval", apperrors.ErrInvalidInterval, http.StatusBadRequest},
		{"invalid window", apperrors.ErrInvalidWindow, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("loading event: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"http error", apperrors.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
