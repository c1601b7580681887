// Package logger builds *slog.Logger values and provides attribute helpers.
//
//	log := logger.New(
//		logger.WithProduction("assetserve"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	log.Info("routes registered", logger.Component("static"), logger.Count("routes", n))
//
// Attribute helpers return an empty slog.Attr for nil errors and empty
// identifiers, so logger.Error(err) is safe to pass unconditionally.
//
// Discard returns a logger that drops everything; library packages use it as
// their default so nothing is printed unless a logger is supplied.
package logger
