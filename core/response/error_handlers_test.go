package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/assetserve/core/response"
	"github.com/dmitrymomot/assetserve/core/router"
)

type teapotError struct{}

func (teapotError) Error() string   { return "short and stout" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "http_error",
			err:        response.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "Not Found",
		},
		{
			name:       "wrapped_http_error",
			err:        fmt.Errorf("lookup: %w", response.ErrServiceUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "Service Unavailable",
		},
		{
			name:       "status_code_interface",
			err:        teapotError{},
			wantStatus: http.StatusTeapot,
			wantBody:   "I'm a teapot",
		},
		{
			name:       "plain_error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			ctx := router.NewContext(w, req, nil)

			response.ErrorHandler(ctx, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestHTTPErrorWithErrorDoesNotMutateSentinel(t *testing.T) {
	t.Parallel()

	e := response.ErrNotFound.WithError(errors.New("cause"))
	assert.Equal(t, "cause", e.Details["cause"])
	assert.Nil(t, response.ErrNotFound.Details)
}
