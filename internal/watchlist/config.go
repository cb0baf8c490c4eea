package watchlist

import "github.com/wonny/clientintel/pkg/config"

// File is a watchlist definition loaded from YAML
type File struct {
	Meta     Meta    `yaml:"meta" json:"meta"`
	Schedule string  `yaml:"schedule" json:"schedule"`
	Entries  []Entry `yaml:"entries" json:"entries"`
}

// Meta 메타 정보
type Meta struct {
	Name     string `yaml:"name" json:"name"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// Entry is one company to brief on every run
type Entry struct {
	Company string `yaml:"company" json:"company"`
	Ticker  string `yaml:"ticker" json:"ticker"`
}

// CronSpec returns the schedule with the timezone prefix the cron parser understands
func (f *File) CronSpec() string {
	if f.Meta.Timezone == "" {
		return f.Schedule
	}
	return "CRON_TZ=" + f.Meta.Timezone + " " + f.Schedule
}

// WatchlistEntries converts entries to the config representation used by jobs
func (f *File) WatchlistEntries() []config.WatchlistEntry {
	out := make([]config.WatchlistEntry, 0, len(f.Entries))
	for _, e := range f.Entries {
		out = append(out, config.WatchlistEntry{Company: e.Company, Ticker: e.Ticker})
	}
	return out
}
