// Package logger provides structured logging for authkit using zerolog.
//
// Library code never writes to a global logger: every component accepts a
// *Logger and falls back to NewNop when none is given. Tokens and secrets are
// never passed as fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg, "authkit").WithComponent("client")
//	log.Info("login completed", logger.Fields(logger.FieldScheme, "customer"))
package logger
