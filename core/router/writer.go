package router

import (
	"net/http"
)

// responseWriter records the first status sent and the body size, so the
// mux can tell whether a handler already answered before it reports an error.
type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

// WriteHeader forwards only the first status; later calls are dropped.
func (w *responseWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// Written reports whether the status line has gone out.
func (w *responseWriter) Written() bool { return w.status != 0 }

// Status is the status sent, or 0 before the first write.
func (w *responseWriter) Status() int { return w.status }

// BytesWritten counts body bytes accepted by the underlying writer.
func (w *responseWriter) BytesWritten() int64 { return w.bytes }

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the connection's writer.
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
