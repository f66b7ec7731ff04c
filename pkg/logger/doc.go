// Package logger provides the structured logging interface used across igreport.
//
// It wraps zerolog. Console output goes to stderr, either human readable or
// as JSON lines, and can be mirrored to a file. Every line carries the app
// name and version.
//
// Basic Usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//
//	logger.Info("Application started")
//	logger.WithField("username", "nasa").Info("Scanning profile")
//
// Packages that take a Logger accept NewNopLogger() when quiet, and tests use
// NewTestLogger() to assert on what was logged:
//
//	log := logger.NewTestLogger()
//	s := scanner.New(client, pacer, scanner.WithLogger(log))
//	...
//	assert.True(t, log.HasMessage("Continuing in degraded mode"))
package logger
