package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"latest-sender/internal/logging"
	"latest-sender/internal/sender"
)

func newTargetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured backups and the file each would send now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfg.Backups) == 0 {
				fmt.Fprintln(out, "No backup configurations found in the config file")
				return nil
			}

			logger, _, err := ctx.newLogger(time.Now())
			if err != nil {
				return err
			}
			targets := sender.Inspect(cmd.Context(), cfg, logging.NewComponentLogger(logger, "targets"), time.Now())
			fmt.Fprintln(out, renderTargets(targets, shouldColorize(out)))
			return nil
		},
	}
}

func renderTargets(targets []sender.Target, colorize bool) string {
	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		period := t.Backup.CheckPeriod
		if period == "" {
			period = "-"
		}
		latest, size, age := "-", "-", "-"
		if t.Found {
			latest = displayName(t.Candidate.Path)
			size = sizeCell(t.Candidate.Size, true)
			age = ageCell(t.Candidate.ModTime)
		}
		status, color := targetStatus(t)
		rows = append(rows, []string{
			t.Backup.Name,
			t.Backup.SourceDirectory,
			t.Backup.FilePattern,
			period,
			latest,
			size,
			age,
			colorText(status, color, colorize),
		})
	}
	return renderTable(
		[]string{"Backup", "Directory", "Pattern", "Period", "Latest", "Size", "Modified", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignWrap, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignWrap},
	)
}

func targetStatus(t sender.Target) (string, string) {
	switch {
	case t.Err != nil:
		return "error: " + firstLine(t.Err.Error()), ansiRed
	case !t.Found:
		return "no match", ansiYellow
	case !t.Fresh:
		return "stale", ansiYellow
	default:
		return "ready", ansiGreen
	}
}
