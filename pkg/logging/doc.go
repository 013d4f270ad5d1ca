// Package logging builds the slog loggers used by apictl and the interchange
// engine.
//
// Loggers write to stderr so that converted documents on stdout stay clean:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//
//	engine := interchange.New(interchange.WithLogger(logger))
//
// Library code takes a *slog.Logger and falls back to Nop when none is given.
package logging
