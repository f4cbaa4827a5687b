// Package log is vesta's structured logging facade.
//
// Code logs against the small Logger interface with typed Field helpers;
// BaseLogger renders entries through a Formatter onto one or more Outputs
// and is bridged onto log/slog so slog-native libraries share the pipeline.
//
//	l := log.NewLogger(log.WithLevel(log.InfoLevel), log.WithFormatter(&log.TextFormatter{}))
//	l = l.With(log.Component("streams"))
//	l.Info("stream created", log.Str("stream", id), log.Uint64("amount", 2000))
//
// ApplyConfig builds a logger from a declarative Config and RedirectStdLog
// routes the standard library logger (used by Pebble) through it.
package log
