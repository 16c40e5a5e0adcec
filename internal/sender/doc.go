// Package sender drives one delivery run over every configured backup.
//
// For each backup, in configuration order, the Sender asks the selection
// package for the newest matching file, then hands it to the webhook uploader
// unless the run is a dry run. Per-backup failures are logged with their cause
// and recorded in the Report; they never stop the run. A run-level file lock
// keeps overlapping scheduled invocations from delivering twice.
package sender
