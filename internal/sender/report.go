package sender

import (
	"time"
)

// Outcome is the per-backup result of a run.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeDryRun  Outcome = "dry-run"
	OutcomeFailed  Outcome = "failed"
)

// Entry records what happened to one backup.
type Entry struct {
	Backup  string
	Outcome Outcome
	Path    string
	Size    int64
	ModTime time.Time
	Reason  string
	Err     error
}

// Report summarizes a run.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Entries  []Entry
}

// Total is the number of backups processed.
func (r *Report) Total() int { return len(r.Entries) }

// Sent counts delivered backups.
func (r *Report) Sent() int { return r.count(OutcomeSent) }

// Skipped counts backups that were not delivered without failing, including
// dry-run selections.
func (r *Report) Skipped() int { return r.count(OutcomeSkipped) + r.count(OutcomeDryRun) }

// Failed counts backups whose selection or upload failed.
func (r *Report) Failed() int { return r.count(OutcomeFailed) }

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}
