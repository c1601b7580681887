// Package static serves a directory tree over HTTP with conditional caching.
//
// At activation the plugin walks the asset root once and chooses a mode:
//
//   - static: when WithAlwaysStatic is set or the file count is within the
//     static limit (1024 by default), every file is read, fingerprinted and
//     registered as its own route with a prebuilt response.
//   - dynamic: otherwise a single prefix+"/*" route (or, with
//     WithEnableFallback, a router not-found hook) resolves files per request
//     through a bounded LRU cache with TTL.
//
// Usage with the bundled router:
//
//	r := router.New[*router.Context]()
//	p, err := static.New(ctx, r,
//		static.WithAssets("./public"),
//		static.WithPrefix("/assets"),
//		static.WithHeaders(map[string]string{"X-Content-Type-Options": "nosniff"}),
//	)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
// Every response carries Cache-Control ("public, max-age=86400" by default)
// and an Etag holding the base64 MD5 of the content. Requests are answered
// with 304 Not Modified when the validators say the client copy is fresh:
// Cache-Control no-cache or no-store always forces a full response,
// If-None-Match is compared exactly and, when present, If-Modified-Since is
// ignored.
//
// Request paths are joined onto the root and canonicalized before use; any
// path that escapes the root, matches an ignore rule, names a directory
// without index.html, or cannot be read is answered with 404. Read failures
// other than a missing file are logged unless WithSilent is set.
//
// Files can come from an OS directory (Dir), any fs.FS (FromFS) or an S3
// bucket (integration/storage/s3).
package static
