// Package pkg provides shared utilities for the badusb application.
//
// This package contains common functionality used by every other package,
// including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values for settings, USB, and script failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with component context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentUSB, "configuration captured", "config", cfg)
//
// # Errors
//
// Common errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrUSBConfig) {
//	    // USB state is inconsistent; halt
//	}
package pkg
