package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs a finished HTTP request, louder for error statuses
func LogRequest(log Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		log.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		log.WarnWithFields("HTTP request client error", fields)
	default:
		log.DebugWithFields("HTTP request completed", fields)
	}
}

// LogScanProgress logs how far a profile scan has come
func LogScanProgress(log Logger, username string, processed, limit int) {
	percentage := 0.0
	if limit > 0 {
		percentage = float64(processed) / float64(limit) * 100
	}

	log.WithFields(map[string]interface{}{
		"username":   username,
		"processed":  processed,
		"limit":      limit,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Debug("Scan progress")
}

// LogPacing logs a pause between reads
func LogPacing(log Logger, delay time.Duration) {
	log.WithField("delay", delay.Round(time.Millisecond).String()).Debug("Pausing before next read")
}

// LogRemoteBlocked logs a throttling response
func LogRemoteBlocked(log Logger, username string, cooldown time.Duration, err error) {
	log.WithError(err).WithFields(map[string]interface{}{
		"username": username,
		"cooldown": cooldown.String(),
		"action":   "remote_blocked",
	}).Warn("Instagram is throttling requests")
}

// LogDegraded logs a condition that lets a scan continue with reduced capability
func LogDegraded(log Logger, reason string, err error) {
	log.WithError(err).WithFields(map[string]interface{}{
		"degraded": true,
		"reason":   reason,
	}).Warn("Continuing in degraded mode")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)

	if len(config) > 0 {
		logger = logger.WithFields(config)
	}

	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
