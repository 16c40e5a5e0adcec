// Package services defines shared utilities consumed by the selection,
// delivery, and run orchestration packages.
//
// Key responsibilities:
//   - Context helpers that stamp backup names and run identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the run driver
//     tell configuration, selection, local I/O, transport, and rejection
//     failures apart.
//
// Use these helpers when wiring new delivery logic so failure reporting stays
// uniform across backups.
package services
