// Package main hosts the latest-sender CLI.
//
// Running the root command performs one delivery pass: every configured
// backup is scanned for its newest matching file, which is uploaded to that
// backup's webhook (or only reported with --dry-run), followed by a summary
// table on stdout. Logs go to stderr and, when logging.dir is set, to a JSON
// log file per run. Subcommands inspect targets without uploading and
// scaffold or validate the configuration file.
package main
