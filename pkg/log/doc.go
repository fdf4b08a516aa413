// Package log provides the logging abstraction shared by qrship components.
//
// Components accept a [Logger] and never import a concrete logging library.
// A zerolog-backed adapter is provided for applications and a no-op logger
// is the default everywhere a logger is optional.
//
// # Usage
//
//	logger := log.NewZerologAdapter()
//	ctrl := playback.NewController(sink, playback.WithLogger(logger))
//
// Tests and embedders that want silence use:
//
//	logger := log.NewNoopLogger()
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
