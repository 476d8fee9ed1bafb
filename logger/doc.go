// Package logger provides structured logging for the test harness using
// zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Loggers never touch
// zerolog's global level, so tests running in parallel can each build
// their own.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "httptestkit").WithComponent("server")
//	log.Info("Listening on 127.0.0.1:41231", logger.Fields("port", 41231))
package logger
