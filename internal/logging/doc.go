// Package logging provides structured logging for rokuctl.
//
// This package wraps a zap logger behind package-level helpers so the ECP
// client, the SSDP scanner and the bridge server can log without threading a
// logger through every constructor.
//
// # Silent by Default
//
// rokuctl is an interactive tool, so nothing is logged unless a level is
// requested, either with the --log-level flag or the ROKUCTL_LOG_LEVEL
// environment variable:
//
//	ROKUCTL_LOG_LEVEL=debug rokuctl discover
//
// # Log Levels
//
//   - Debug: datagram dumps, failed requests, per-character typing
//   - Info: ECP requests and their status, bridge connections
//   - Warn: recoverable problems (bad SSDP responses, persist failures)
//   - Error: server failures
//
// # Structured Logging
//
//	logging.Info("Adopted device",
//	    zap.String("host", "192.168.1.42"),
//	)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
