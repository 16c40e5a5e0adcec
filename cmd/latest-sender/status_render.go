package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"latest-sender/internal/sender"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

// outcomeLabel renders an outcome for humans, e.g. "sent" -> "Sent".
func outcomeLabel(outcome sender.Outcome) string {
	return titleCaser.String(string(outcome))
}

func outcomeCell(outcome sender.Outcome, colorize bool) string {
	return colorText(outcomeLabel(outcome), outcomeColor(outcome), colorize)
}

func outcomeColor(outcome sender.Outcome) string {
	switch outcome {
	case sender.OutcomeSent:
		return ansiGreen
	case sender.OutcomeSkipped:
		return ansiYellow
	case sender.OutcomeDryRun:
		return ansiBlue
	case sender.OutcomeFailed:
		return ansiRed
	default:
		return ""
	}
}

func colorText(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
