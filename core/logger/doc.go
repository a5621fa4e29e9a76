// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber web framework.
//
// # Correlation
//
// Two helpers attach correlation fields to log entries:
//
//   - WithRayID extracts the RayID (request id) from a Fiber context, so all
//     logs belonging to one HTTP request can be traced together.
//   - WithCycle attaches the reconciliation cycle id, so all ledger writes and
//     exchange calls of one cycle can be traced together.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Cycle started")
package logger
