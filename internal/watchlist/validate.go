package watchlist

import (
	"fmt"
	"regexp"
	"time"

	"github.com/robfig/cron/v3"
)

// MaxEntries bounds one watchlist run
const MaxEntries = 50

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,9}$`)

// scheduleParser matches the seconds-enabled parser the scheduler runs with
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(f *File) error {
	if f.Meta.Timezone != "" {
		if _, err := time.LoadLocation(f.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}

	// an empty schedule keeps WATCHLIST_SCHEDULE
	if f.Schedule != "" {
		if _, err := scheduleParser.Parse(f.CronSpec()); err != nil {
			return ValidationError{"schedule", err.Error()}
		}
	}

	if len(f.Entries) == 0 {
		return ValidationError{"entries", "at least one entry required"}
	}
	if len(f.Entries) > MaxEntries {
		return ValidationError{"entries", fmt.Sprintf("at most %d entries", MaxEntries)}
	}

	seen := make(map[string]bool, len(f.Entries))
	for i, e := range f.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.Company == "" {
			return ValidationError{field + ".company", "required"}
		}
		if !tickerPattern.MatchString(e.Ticker) {
			return ValidationError{field + ".ticker", fmt.Sprintf("invalid ticker %q", e.Ticker)}
		}
		if seen[e.Ticker] {
			return ValidationError{field + ".ticker", fmt.Sprintf("duplicate ticker %s", e.Ticker)}
		}
		seen[e.Ticker] = true
	}

	return nil
}
