package static

import (
	"net/http"
	"strings"
	"time"
)

// Freshness is the verdict on a client's cached copy.
type Freshness int

const (
	Stale Freshness = iota
	Fresh
)

func (f Freshness) String() string {
	if f == Fresh {
		return "fresh"
	}
	return "stale"
}

// checkFreshness applies the validators in strict precedence:
// Cache-Control no-cache/no-store, then If-None-Match, then
// If-Modified-Since. When If-None-Match is present If-Modified-Since is
// never consulted (RFC 9110 section 13.1.3). modTime is only called for the
// If-Modified-Since branch; its failure yields Stale.
func checkFreshness(h http.Header, etag string, modTime func() (time.Time, error)) Freshness {
	if cc := strings.ToLower(h.Get("Cache-Control")); strings.Contains(cc, "no-cache") || strings.Contains(cc, "no-store") {
		return Stale
	}

	if values, ok := h["If-None-Match"]; ok {
		inm := ""
		if len(values) > 0 {
			inm = values[0]
		}
		switch {
		case inm == "*":
			return Fresh
		case inm == "", etag == "":
			return Stale
		case inm == etag:
			return Fresh
		default:
			return Stale
		}
	}

	if ims := h.Get("If-Modified-Since"); ims != "" {
		since, err := http.ParseTime(ims)
		if err != nil || modTime == nil {
			return Stale
		}
		mtime, err := modTime()
		if err != nil {
			return Stale
		}
		// HTTP dates carry whole seconds.
		if !mtime.Truncate(time.Second).After(since) {
			return Fresh
		}
	}

	return Stale
}
