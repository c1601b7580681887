package response

import (
	"net/http"

	"github.com/dmitrymomot/assetserve/core/handler"
)

const textPlain = "text/plain; charset=utf-8"

// Render executes resp against the context's writer.
// A rendering error falls back to a plain 500.
func Render(ctx handler.Context, resp handler.Response) {
	if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
		http.Error(ctx.ResponseWriter(), err.Error(), http.StatusInternalServerError)
	}
}

// String writes content as text/plain with 200 OK.
func String(content string) handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

// StringWithStatus writes content as text/plain with status.
func StringWithStatus(content string, status int) handler.Response {
	return BytesWithStatus([]byte(content), textPlain, status)
}

// BytesWithStatus writes content with the given content type. An empty
// contentType leaves the header unset; a zero status means 200.
func BytesWithStatus(content []byte, contentType string, status int) handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if len(content) == 0 {
			return nil
		}
		_, err := w.Write(content)
		return err
	}
}

// NoContent answers 204 with no body.
func NoContent() handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}
