package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"latest-sender/internal/logging"
	"latest-sender/internal/sender"
)

func runDelivery(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loading configuration from: %s\n", ctx.configPath)
	if len(cfg.Backups) == 0 {
		fmt.Fprintln(out, "No backup configurations found in the config file")
		return nil
	}

	started := time.Now()
	logger, logPath, err := ctx.newLogger(started)
	if err != nil {
		return err
	}
	if logPath != "" {
		logger.Debug("run log file", logging.String("path", logPath))
	}

	s, err := sender.New(cfg, sender.Options{
		DryRun:  ctx.opts.dryRun,
		Verbose: ctx.opts.verbose,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	report, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}

	renderReport(out, report, ctx.opts.dryRun, shouldColorize(out))

	if ctx.opts.strict && report.Failed() > 0 {
		return fmt.Errorf("%d of %d backups failed", report.Failed(), report.Total())
	}
	return nil
}

func renderReport(out io.Writer, report *sender.Report, dryRun, colorize bool) {
	rows := make([][]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		rows = append(rows, []string{
			entry.Backup,
			outcomeCell(entry.Outcome, colorize),
			displayName(entry.Path),
			sizeCell(entry.Size, entry.Path != ""),
			ageCell(entry.ModTime),
			entryDetail(entry),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Backup", "Outcome", "File", "Size", "Modified", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignWrap},
	))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  Total backups processed: %d\n", report.Total())
	fmt.Fprintf(out, "  Files sent: %d\n", report.Sent())
	fmt.Fprintf(out, "  Files skipped: %d\n", report.Skipped())
	fmt.Fprintf(out, "  Failures: %d\n", report.Failed())
	if dryRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "[DRY RUN MODE] No files were actually sent")
	}
}

func entryDetail(entry sender.Entry) string {
	if entry.Err != nil {
		return firstLine(entry.Err.Error())
	}
	return entry.Reason
}

func sizeCell(size int64, present bool) string {
	if !present {
		return "-"
	}
	return humanize.Bytes(uint64(size))
}

func ageCell(mod time.Time) string {
	if mod.IsZero() {
		return "-"
	}
	return humanize.Time(mod)
}

// displayName keeps tables narrow; full paths are in the logs.
func displayName(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
