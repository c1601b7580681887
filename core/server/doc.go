// Package server runs an http.Handler with production timeouts and graceful
// shutdown.
//
// Run returns a func() error so the server drops straight into an errgroup
// next to other long-running components:
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Cancelling ctx triggers Stop, which waits up to the shutdown timeout for
// in-flight requests. TLS is enabled with WithTLS or by setting both
// certificate paths in Config.
//
// Defaults: 15s read and write timeouts, 60s idle timeout, 1 MB header limit
// and a 30s shutdown timeout. The default logger discards everything.
package server
