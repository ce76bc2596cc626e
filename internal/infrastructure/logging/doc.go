// Package logging provides structured logging using uber/zap.
//
// Two output modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *zap.Logger named after themselves via Component.
// The level is shared by every child and can be changed with SetLevel
// while the server runs.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	defer logger.Close()
//	log := logger.Component("launcher")
//	log.Info("Application launched", zap.String("app_id", id))
package logging
