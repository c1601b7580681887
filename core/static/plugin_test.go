package static_test

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/assetserve/core/handler"
	"github.com/dmitrymomot/assetserve/core/response"
	"github.com/dmitrymomot/assetserve/core/router"
	"github.com/dmitrymomot/assetserve/core/static"
)

// newTree writes files under <tmp>/public and returns that root. A
// secret.txt is always placed next to the root to catch traversal.
func newTree(t *testing.T, files map[string]string) string {
	t.Helper()

	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("secret"), 0o644))

	root := filepath.Join(base, "public")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func mount(t *testing.T, r router.Router[*router.Context], opts ...static.Option) *static.Plugin {
	t.Helper()

	p, err := static.New[*router.Context](context.Background(), r, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func do(h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func etagOf(body string) string {
	sum := md5.Sum([]byte(body))
	return base64.StdEncoding.EncodeToString(sum[:])
}

var fixture = map[string]string{
	"a.css":          "body{color:red}",
	"b.css":          "p{margin:0}",
	"index.html":     "home",
	"sub/index.html": "<h1>sub</h1>",
	"img/logo.svg":   "<svg/>",
	"empty/.gitkeep": "",
	".env":           "TOKEN=x",
	".git/HEAD":      "ref: refs/heads/main",
}

// modes runs the same assertions against both serving strategies.
var modes = []struct {
	name string
	opts []static.Option
	want static.Mode
}{
	{name: "static", want: static.ModeStatic},
	{name: "dynamic", opts: []static.Option{static.WithStaticLimit(0)}, want: static.ModeDynamic},
	{name: "fallback", opts: []static.Option{static.WithStaticLimit(0), static.WithEnableFallback(true)}, want: static.ModeDynamic},
}

func TestServesFiles(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			root := newTree(t, fixture)
			r := router.New[*router.Context]()
			p := mount(t, r, append([]static.Option{static.WithAssets(root)}, m.opts...)...)
			require.Equal(t, m.want, p.Mode())

			w := do(r, http.MethodGet, "/public/a.css", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "body{color:red}", w.Body.String())
			assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
			assert.Equal(t, etagOf("body{color:red}"), w.Header().Get("Etag"))
			assert.Equal(t, "15", w.Header().Get("Content-Length"))

			w = do(r, http.MethodGet, "/public/img/logo.svg", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "<svg/>", w.Body.String())

			w = do(r, http.MethodHead, "/public/a.css", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Body.String())
			assert.Equal(t, etagOf("body{color:red}"), w.Header().Get("Etag"))
		})
	}
}

func TestIndexDocuments(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			root := newTree(t, fixture)
			r := router.New[*router.Context]()
			mount(t, r, append([]static.Option{static.WithAssets(root)}, m.opts...)...)

			w := do(r, http.MethodGet, "/public/sub", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "<h1>sub</h1>", w.Body.String())
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

			w = do(r, http.MethodGet, "/public/sub/index.html", nil)
			assert.Equal(t, http.StatusOK, w.Code)

			// The wildcard route only owns paths below the prefix.
			w = do(r, http.MethodGet, "/public", nil)
			if m.name == "dynamic" {
				assert.Equal(t, http.StatusNotFound, w.Code)
			} else {
				assert.Equal(t, "home", w.Body.String())
			}

			// Directories without an index document are not served.
			w = do(r, http.MethodGet, "/public/img", nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestIndexDocumentsDisabled(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			root := newTree(t, fixture)
			r := router.New[*router.Context]()
			mount(t, r, append([]static.Option{static.WithAssets(root), static.WithIndexHTML(false)}, m.opts...)...)

			assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/sub", nil).Code)
			assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public/sub/index.html", nil).Code)
		})
	}
}

func TestNeverEscapesRoot(t *testing.T) {
	t.Parallel()

	targets := []string{
		"/public/../secret.txt",
		"/public/sub/../../secret.txt",
		"/public/%2e%2e/secret.txt",
		"/public/%2E%2E%2Fsecret.txt",
		"/public/..%2fsecret.txt",
	}

	for _, m := range modes {
		for _, decode := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s_decode_%t", m.name, decode), func(t *testing.T) {
				t.Parallel()

				root := newTree(t, fixture)
				r := router.New[*router.Context]()
				opts := append([]static.Option{static.WithAssets(root), static.WithDecodeURI(decode)}, m.opts...)
				mount(t, r, opts...)

				for _, target := range targets {
					w := do(r, http.MethodGet, target, nil)
					assert.Equal(t, http.StatusNotFound, w.Code, target)
					assert.NotContains(t, w.Body.String(), "secret", target)
				}
			})
		}
	}
}

func TestRootPathDoesNotTriggerIgnoreRules(t *testing.T) {
	t.Parallel()

	for _, dir := range []string{"user.github.io", ".envs"} {
		for _, m := range modes {
			t.Run(dir+"/"+m.name, func(t *testing.T) {
				t.Parallel()

				root := filepath.Join(t.TempDir(), dir, "public")
				require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(root, "a.css"), []byte("body{}"), 0o644))
				require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0o644))

				r := router.New[*router.Context]()
				mount(t, r, append([]static.Option{static.WithAssets(root)}, m.opts...)...)

				w := do(r, http.MethodGet, "/public/a.css", nil)
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, "body{}", w.Body.String())
				assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/.git/HEAD", nil).Code)
			})
		}
	}
}

func TestWildcardFileNames(t *testing.T) {
	t.Parallel()

	t.Run("star_inside_name_is_skipped", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, map[string]string{"a*b.txt": "star", "ok.txt": "ok"})
		r := router.New[*router.Context]()

		var p *static.Plugin
		require.NotPanics(t, func() { p = mount(t, r, static.WithAssets(root)) })
		assert.Equal(t, static.ModeStatic, p.Mode())
		assert.Equal(t, []string{"/public/ok.txt"}, p.Routes())
		assert.Equal(t, "ok", do(r, http.MethodGet, "/public/ok.txt", nil).Body.String())
	})

	t.Run("stripped_name_never_becomes_catch_all", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, map[string]string{"*.txt": "star", "ok.txt": "ok"})
		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(root), static.WithExtension(false))

		assert.Equal(t, []string{"/public/ok"}, p.Routes())
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/anything/else", nil).Code)
		assert.Equal(t, "ok", do(r, http.MethodGet, "/public/ok", nil).Body.String())
	})

	t.Run("dynamic_mode_serves_the_file", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, map[string]string{"a*b.txt": "star"})
		r := router.New[*router.Context]()
		mount(t, r, static.WithAssets(root), static.WithStaticLimit(0), static.WithDecodeURI(true))

		assert.Equal(t, "star", do(r, http.MethodGet, "/public/a%2Ab.txt", nil).Body.String())
	})
}

func TestIgnorePatterns(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			root := newTree(t, fixture)
			r := router.New[*router.Context]()
			p := mount(t, r, append([]static.Option{static.WithAssets(root)}, m.opts...)...)

			assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/.env", nil).Code)
			assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/.git/HEAD", nil).Code)
			assert.NotContains(t, p.Routes(), "/public/.env")
		})
	}

	t.Run("cleared", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		mount(t, r, static.WithAssets(root), static.WithIgnorePatterns())

		w := do(r, http.MethodGet, "/public/.env", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "TOKEN=x", w.Body.String())
	})

	t.Run("custom_rules_replace_defaults", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, fixture)
		rule, err := static.ParseIgnoreRule(`/\.svg$/`)
		require.NoError(t, err)

		r := router.New[*router.Context]()
		mount(t, r, static.WithAssets(root), static.WithIgnorePatterns(rule, static.Literal("b.css")))

		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/img/logo.svg", nil).Code)
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/b.css", nil).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public/.env", nil).Code)
	})
}

func TestConditionalRequests(t *testing.T) {
	t.Parallel()

	etag := etagOf("body{color:red}")
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	past := time.Now().Add(-24 * time.Hour).UTC().Format(http.TimeFormat)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "matching_etag", headers: map[string]string{"If-None-Match": etag}, want: http.StatusNotModified},
		{name: "wildcard_etag", headers: map[string]string{"If-None-Match": "*"}, want: http.StatusNotModified},
		{name: "stale_etag", headers: map[string]string{"If-None-Match": "bm9wZQ=="}, want: http.StatusOK},
		{name: "no_cache", headers: map[string]string{"If-None-Match": etag, "Cache-Control": "no-cache"}, want: http.StatusOK},
		{name: "not_modified_since", headers: map[string]string{"If-Modified-Since": future}, want: http.StatusNotModified},
		{name: "modified_since", headers: map[string]string{"If-Modified-Since": past}, want: http.StatusOK},
		{name: "etag_wins_over_date", headers: map[string]string{"If-None-Match": "bm9wZQ==", "If-Modified-Since": future}, want: http.StatusOK},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			root := newTree(t, fixture)
			r := router.New[*router.Context]()
			mount(t, r, append([]static.Option{
				static.WithAssets(root),
				static.WithHeaders(map[string]string{"x-frame-options": "DENY"}),
			}, m.opts...)...)

			// Warm the dynamic cache so 304s are also checked on a hit.
			require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public/a.css", nil).Code)

			for _, tt := range tests {
				w := do(r, http.MethodGet, "/public/a.css", tt.headers)
				require.Equal(t, tt.want, w.Code, tt.name)
				assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"), tt.name)
				assert.Equal(t, etag, w.Header().Get("Etag"), tt.name)
				assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"), tt.name)

				if tt.want == http.StatusNotModified {
					assert.Empty(t, w.Body.String(), tt.name)
					assert.Empty(t, w.Header().Get("Content-Type"), tt.name)
				} else {
					assert.Equal(t, "body{color:red}", w.Body.String(), tt.name)
				}
			}
		})
	}
}

func TestETagDisabled(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			root := newTree(t, fixture)
			r := router.New[*router.Context]()
			mount(t, r, append([]static.Option{static.WithAssets(root), static.WithETag(false)}, m.opts...)...)

			w := do(r, http.MethodGet, "/public/a.css", map[string]string{"If-None-Match": "*"})
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Etag"))
			assert.Equal(t, "body{color:red}", w.Body.String())
		})
	}
}

func TestHashUnavailable(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	r := router.New[*router.Context]()
	mount(t, r, static.WithAssets(root), static.WithHash(nil))

	w := do(r, http.MethodGet, "/public/a.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Etag"))

	w = do(r, http.MethodGet, "/public/a.css", map[string]string{"If-None-Match": etagOf("body{color:red}")})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResponseHeaders(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	r := router.New[*router.Context]()
	mount(t, r,
		static.WithAssets(root),
		static.WithDirective("private"),
		static.WithMaxAge(0),
		static.WithHeaders(map[string]string{
			"X-Served-By":   "assetserve",
			"Cache-Control": "no-store",
		}),
	)

	w := do(r, http.MethodGet, "/public/a.css", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private", w.Header().Get("Cache-Control"))
	assert.Equal(t, "assetserve", w.Header().Get("X-Served-By"))
}

func TestPrefixAndExtension(t *testing.T) {
	t.Parallel()

	t.Run("root_prefix", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(root), static.WithPrefix("/"))

		assert.Equal(t, "", p.Prefix())
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/a.css", nil).Code)
		assert.Equal(t, "home", do(r, http.MethodGet, "/", nil).Body.String())
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/a.css", nil).Code)
	})

	t.Run("root_prefix_dynamic", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(root), static.WithPrefix(""), static.WithStaticLimit(0))

		assert.Equal(t, []string{"/*"}, p.Routes())
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/a.css", nil).Code)
		assert.Equal(t, "home", do(r, http.MethodGet, "/", nil).Body.String())
	})

	t.Run("nested_prefix", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		mount(t, r, static.WithAssets(root), static.WithPrefix("static/v1/"))

		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/static/v1/a.css", nil).Code)
	})

	t.Run("without_extension", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		mount(t, r, static.WithAssets(root), static.WithExtension(false))

		w := do(r, http.MethodGet, "/public/a", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/a.css", nil).Code)
		assert.Equal(t, "<h1>sub</h1>", do(r, http.MethodGet, "/public/sub", nil).Body.String())
	})
}

func TestStaticLimit(t *testing.T) {
	t.Parallel()

	tree := func(t *testing.T, n int) string {
		files := make(map[string]string, n)
		for i := range n {
			files[fmt.Sprintf("f%04d.css", i)] = "x"
		}
		return newTree(t, files)
	}

	t.Run("at_limit_is_static", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(tree(t, static.DefaultStaticLimit)))

		assert.Equal(t, static.ModeStatic, p.Mode())
		assert.Len(t, p.Routes(), static.DefaultStaticLimit)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public/f1023.css", nil).Code)
	})

	t.Run("over_limit_is_one_wildcard", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(tree(t, static.DefaultStaticLimit+1)))

		assert.Equal(t, static.ModeDynamic, p.Mode())
		assert.Equal(t, static.DefaultStaticLimit+1, p.Files())
		assert.Equal(t, []string{"/public/*"}, p.Routes())
		assert.Equal(t, []router.Route{{Method: http.MethodGet, Pattern: "/public/*"}}, r.Routes())
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public/f1024.css", nil).Code)
	})

	t.Run("always_static", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(tree(t, 5)), static.WithStaticLimit(1), static.WithAlwaysStatic(true))

		assert.Equal(t, static.ModeStatic, p.Mode())
		assert.Len(t, p.Routes(), 5)
	})

	t.Run("fallback_registers_no_routes", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(tree(t, 3)), static.WithStaticLimit(2), static.WithEnableFallback(true))

		assert.Equal(t, static.ModeDynamic, p.Mode())
		assert.Empty(t, p.Routes())
		assert.Empty(t, r.Routes())
	})
}

func TestFallbackHook(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	r := router.New[*router.Context]()
	r.Post("/public/upload", func(*router.Context) handler.Response {
		return response.String("uploaded")
	})
	mount(t, r, static.WithAssets(root), static.WithStaticLimit(0), static.WithEnableFallback(true))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/public/a.css", nil).Code)
	assert.Equal(t, "uploaded", do(r, http.MethodPost, "/public/upload", nil).Body.String())

	// Non-GET requests are left alone.
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/public/a.css", nil).Code)

	// Outside the prefix the hook passes.
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/elsewhere/a.css", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/publicity/a.css", nil).Code)

	// A GET on a POST-only route still reports the allowed methods.
	w := do(r, http.MethodGet, "/public/upload", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST", w.Header().Get("Allow"))
}

func TestHostErrorHandlerReceivesNotFound(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		errs []error
	)
	r := router.New[*router.Context](router.WithErrorHandler[*router.Context](func(ctx *router.Context, err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		response.ErrorHandler(ctx, err)
	}))

	root := newTree(t, fixture)
	mount(t, r, static.WithAssets(root), static.WithStaticLimit(0))

	w := do(r, http.MethodGet, "/public/missing.css", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", w.Body.String())

	w = do(r, http.MethodGet, "/public/../secret.txt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 2)
	for _, err := range errs {
		var httpErr response.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode())
	}
}

func TestDisabledWhenRootMissing(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	p, err := static.New[*router.Context](context.Background(), r, static.WithAssets(filepath.Join(t.TempDir(), "nope")))
	require.NoError(t, err)

	assert.Equal(t, static.ModeDisabled, p.Mode())
	assert.Empty(t, p.Routes())
	assert.Empty(t, r.Routes())
	assert.Equal(t, 0, p.CacheLen())
	assert.NoError(t, p.Close())
}

func TestDisabledWhenRootIsFile(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	r := router.New[*router.Context]()
	p := mount(t, r, static.WithAssets(filepath.Join(root, "a.css")))

	assert.Equal(t, static.ModeDisabled, p.Mode())
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	ctx := context.Background()

	_, err := static.New[*router.Context](ctx, nil)
	assert.ErrorIs(t, err, static.ErrNilRegistrar)

	tests := []struct {
		name string
		opt  static.Option
		want error
	}{
		{name: "negative_limit", opt: static.WithStaticLimit(-1), want: static.ErrInvalidStaticLimit},
		{name: "zero_cache", opt: static.WithCacheSize(0), want: static.ErrInvalidCacheSize},
		{name: "wildcard_prefix", opt: static.WithPrefix("/assets/*"), want: static.ErrInvalidPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := router.New[*router.Context]()
			_, err := static.New[*router.Context](ctx, r, static.WithAssets(root), tt.opt)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, r.Routes())
		})
	}
}

func TestNewCancelled(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := router.New[*router.Context]()
	_, err := static.New[*router.Context](ctx, r, static.WithFileSystem(static.Dir(root)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.Routes())
}

func TestDynamicCache(t *testing.T) {
	t.Parallel()

	t.Run("hits_and_misses", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		metrics := static.NewMetrics(reg)

		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		p := mount(t, r, static.WithAssets(root), static.WithStaticLimit(0), static.WithMetrics(metrics))

		do(r, http.MethodGet, "/public/a.css", nil)
		do(r, http.MethodGet, "/public/a.css", nil)
		do(r, http.MethodGet, "/public/a.css", map[string]string{"If-None-Match": etagOf("body{color:red}")})
		do(r, http.MethodGet, "/public/../secret.txt", nil)
		do(r, http.MethodGet, "/public/.env", nil)
		do(r, http.MethodGet, "/public/missing.css", nil)

		assert.Equal(t, 1, p.CacheLen())
		assert.InDelta(t, 2, testutil.ToFloat64(metrics.CacheHits.WithLabelValues("/public")), 0)
		assert.InDelta(t, 2, testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("/public")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.NotModified.WithLabelValues("/public")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.NotFound.WithLabelValues("/public", "traversal")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.NotFound.WithLabelValues("/public", "ignored")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.NotFound.WithLabelValues("/public", "missing")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.Routes.WithLabelValues("/public", "dynamic")), 0)
	})

	t.Run("bounded", func(t *testing.T) {
		t.Parallel()

		metrics := static.NewMetrics(prometheus.NewRegistry())
		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		p := mount(t, r,
			static.WithAssets(root),
			static.WithStaticLimit(0),
			static.WithCacheSize(1),
			static.WithMetrics(metrics),
		)

		do(r, http.MethodGet, "/public/a.css", nil)
		do(r, http.MethodGet, "/public/b.css", nil)

		assert.Equal(t, 1, p.CacheLen())
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.Evictions.WithLabelValues("/public")), 0)
	})

	t.Run("serves_cached_copy", func(t *testing.T) {
		t.Parallel()

		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		mount(t, r, static.WithAssets(root), static.WithStaticLimit(0))

		require.Equal(t, "p{margin:0}", do(r, http.MethodGet, "/public/b.css", nil).Body.String())
		require.NoError(t, os.WriteFile(filepath.Join(root, "b.css"), []byte("changed"), 0o644))
		assert.Equal(t, "p{margin:0}", do(r, http.MethodGet, "/public/b.css", nil).Body.String())
	})

	t.Run("concurrent_misses", func(t *testing.T) {
		t.Parallel()

		metrics := static.NewMetrics(prometheus.NewRegistry())
		root := newTree(t, fixture)
		r := router.New[*router.Context]()
		mount(t, r, static.WithAssets(root), static.WithStaticLimit(0), static.WithMetrics(metrics))

		const n = 32
		var wg sync.WaitGroup
		codes := make([]int, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				codes[i] = do(r, http.MethodGet, "/public/sub/index.html", nil).Code
			}()
		}
		wg.Wait()

		for _, c := range codes {
			assert.Equal(t, http.StatusOK, c)
		}
		total := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("/public")) +
			testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("/public"))
		assert.InDelta(t, n, total, 0)
	})
}

func TestFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"index.html":   {Data: []byte("home"), ModTime: time.Now()},
		"img/logo.svg": {Data: []byte("<svg/>"), ModTime: time.Now()},
		".env":         {Data: []byte("TOKEN=x")},
	}

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			r := router.New[*router.Context]()
			p := mount(t, r, append([]static.Option{
				static.WithFileSystem(static.FromFS(fsys)),
				static.WithPrefix("/assets"),
			}, m.opts...)...)

			assert.Equal(t, "/", p.Root())
			assert.Equal(t, "<svg/>", do(r, http.MethodGet, "/assets/img/logo.svg", nil).Body.String())
			index := "/assets"
			if m.name == "dynamic" {
				index = "/assets/"
			}
			assert.Equal(t, "home", do(r, http.MethodGet, index, nil).Body.String())
			assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/assets/.env", nil).Code)
			assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/assets/../../etc/passwd", nil).Code)
		})
	}
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	root := newTree(t, map[string]string{"app.js": "x", "app.js.map": "{}"})

	cfg := static.DefaultConfig()
	cfg.Assets = root
	cfg.Prefix = "/assets"
	cfg.IgnorePatterns = []string{`/\.map$/`}
	cfg.Headers = map[string]string{"X-Test": "1"}

	opts, err := cfg.Options()
	require.NoError(t, err)

	r := router.New[*router.Context]()
	mount(t, r, opts...)

	w := do(r, http.MethodGet, "/assets/app.js", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Test"))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/assets/app.js.map", nil).Code)

	cfg.IgnorePatterns = []string{"/([/"}
	_, err = cfg.Options()
	assert.ErrorIs(t, err, static.ErrInvalidIgnoreRule)
}

func TestPluginClose(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	r := router.New[*router.Context]()
	p, err := static.New[*router.Context](context.Background(), r,
		static.WithAssets(root), static.WithStaticLimit(0), static.WithCacheTTL(time.Minute))
	require.NoError(t, err)

	do(r, http.MethodGet, "/public/a.css", nil)
	require.Equal(t, 1, p.CacheLen())

	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
	assert.Equal(t, 0, p.CacheLen())
}

func TestPluginCheck(t *testing.T) {
	t.Parallel()

	root := newTree(t, fixture)
	r := router.New[*router.Context]()
	p := mount(t, r, static.WithAssets(root))
	require.NoError(t, p.Check(context.Background()))

	require.NoError(t, os.RemoveAll(root))
	assert.ErrorIs(t, p.Check(context.Background()), static.ErrAssetsUnavailable)

	disabled := mount(t, router.New[*router.Context](), static.WithAssets(root))
	assert.ErrorIs(t, disabled.Check(context.Background()), static.ErrAssetsUnavailable)
}
