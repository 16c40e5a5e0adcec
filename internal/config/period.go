package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// ParsePeriod parses a check period such as "1d", "24h", "30m", "1w" or
// "2d 3h". Whitespace between components is ignored. The result must be
// positive.
func ParsePeriod(value string) (time.Duration, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	if compact == "" {
		return 0, errors.New("empty duration")
	}
	d, err := str2duration.ParseDuration(compact)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", value)
	}
	return d, nil
}
