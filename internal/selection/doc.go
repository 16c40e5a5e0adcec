// Package selection finds the newest file matching a glob pattern inside a
// backup directory.
//
// Matches are ranked by modification time; equal timestamps fall back to the
// lexicographically smallest path so the result never depends on directory
// enumeration order. An optional recency window turns a stale newest file into
// "no match" rather than an error. Per-match stat failures are reported to the
// caller's logger and skipped.
package selection
