package logging

import (
	"log/slog"
)

// WithTx creates a logger with transaction context.
// Use this to automatically include transaction ID in all logs.
//
// Example:
//
//	log := logging.WithTx(tx.ID)
//	log.Info("starting batch")
//	log.Debug("acquiring lock", "addr", addr)
func WithTx(txID int) *slog.Logger {
	return GetLogger().With("tx_id", txID)
}

// WithLock creates a logger with lock context.
// Useful for lock table and lock manager operations.
//
// Example:
//
//	log := logging.WithLock(txID, addr)
//	log.Info("lock granted", "mode", "exclusive")
func WithLock(txID int, addr int) *slog.Logger {
	return GetLogger().With("tx_id", txID, "addr", addr)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("rewriter")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
// Use this when logging errors to include the error in structured format.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Error("operation failed", "operation", "insert")
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
