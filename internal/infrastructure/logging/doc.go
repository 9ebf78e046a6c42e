// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for log shippers
//   - Development: coloured console output (LOG_DEV=true)
//
// Components receive a named *zap.Logger from Component, so every line
// carries the subsystem that wrote it ("session", "whatsapp", "telegram").
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	log := logger.Component("session")
//	log.Info("Restored session", zap.Int("bytes", n))
package logging
