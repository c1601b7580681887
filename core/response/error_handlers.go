package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/assetserve/core/handler"
)

type statusCode interface {
	StatusCode() int
}

// convertToHTTPError maps any error onto an HTTPError, preserving the cause.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = newHTTPError(status, "error")
		if base.Message == "" {
			base = ErrInternalServerError
		}
	}
	return base.WithError(err)
}

// ErrorHandler renders errors as plain text using the status of HTTPError
// values or of any error implementing StatusCode() int. Anything else is a 500.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}
