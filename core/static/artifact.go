package static

import (
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
)

// Artifact is a fully built response. It is shared between requests and
// must not be mutated after construction.
type Artifact struct {
	Status int
	Header http.Header
	Body   []byte
	// ETag is the fingerprint also carried in Header, "" when disabled.
	ETag string
}

// Render writes the artifact. Bodies are omitted for HEAD requests.
func (a *Artifact) Render(w http.ResponseWriter, r *http.Request) error {
	dst := w.Header()
	for k, v := range a.Header {
		dst[k] = v
	}
	w.WriteHeader(a.Status)
	if len(a.Body) == 0 || (r != nil && r.Method == http.MethodHead) {
		return nil
	}
	_, err := w.Write(a.Body)
	return err
}

// artifactPair holds the full response and its 304 counterpart for the
// file at name.
type artifactPair struct {
	name        string
	full        *Artifact
	notModified *Artifact
}

// headerBuilder produces the headers every served file carries.
type headerBuilder struct {
	cacheControl string
	custom       http.Header
}

func newHeaderBuilder(directive string, maxAge int, custom http.Header) headerBuilder {
	return headerBuilder{cacheControl: cacheControl(directive, maxAge), custom: custom}
}

// cacheControl renders "{directive}, max-age={n}", or just the directive
// when n is not positive.
func cacheControl(directive string, maxAge int) string {
	if maxAge > 0 {
		return directive + ", max-age=" + strconv.Itoa(maxAge)
	}
	return directive
}

// build assembles the 200 and 304 artifacts for a file. Custom headers are
// applied first so Cache-Control and Etag always reflect the plugin settings.
func (b headerBuilder) build(name string, body []byte, etag string) artifactPair {
	h := make(http.Header, len(b.custom)+4)
	for k, v := range b.custom {
		h[k] = append([]string(nil), v...)
	}
	h.Set("Cache-Control", b.cacheControl)
	if etag != "" {
		h.Set("Etag", etag)
	}

	nm := h.Clone()

	h.Set("Content-Type", contentType(name, body))
	h.Set("Content-Length", strconv.Itoa(len(body)))

	return artifactPair{
		full:        &Artifact{Status: http.StatusOK, Header: h, Body: body, ETag: etag},
		notModified: &Artifact{Status: http.StatusNotModified, Header: nm, ETag: etag},
	}
}

// contentType resolves by extension first and sniffs the body otherwise.
func contentType(name string, body []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(body)
}
