// Package handler defines the generic request-processing contract shared by
// the router, the middleware and the static asset plugin.
//
// Handlers do not write to the response directly. They return a Response
// closure that the router executes, so errors raised during rendering reach a
// single ErrorHandler:
//
//	func hello(ctx *router.Context) handler.Response {
//		return response.String("hello " + ctx.Param("name"))
//	}
//
// Middleware composes handlers of the same context type:
//
//	func timing(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
//		return func(ctx *router.Context) handler.Response {
//			start := time.Now()
//			resp := next(ctx)
//			slog.Debug("handled", "took", time.Since(start))
//			return resp
//		}
//	}
//
// FromHTTP adapts any http.Handler, for example promhttp.Handler(), into a
// HandlerFunc so it can be registered next to native handlers.
package handler
