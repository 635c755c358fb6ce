package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("Farm not found"), http.StatusNotFound},
		{fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound},
		{Validation("Please enter a recommendation"), http.StatusBadRequest},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("taken"), http.StatusConflict},
		{fmt.Errorf("%w: closed -> active", ErrInvalidTransition), http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestRespondUsesRawMessage(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	_ = Respond(c, Validation("Please select a farm and describe your issue"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Please select a farm and describe your issue"}`, rec.Body.String())
}
