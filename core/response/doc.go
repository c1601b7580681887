// Package response builds handler.Response values and renders errors.
//
// Handlers return plain-text or byte responses:
//
//	return response.String("READY")
//	return response.BytesWithStatus(body, "image/png", http.StatusOK)
//
// Errors are returned, not written. Error(err) defers to the router's error
// handler, and ErrorHandler turns HTTPError values (or any error exposing
// StatusCode() int) into a plain-text response with the matching status:
//
//	return response.Error(response.ErrNotFound)
package response
