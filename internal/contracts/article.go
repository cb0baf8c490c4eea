package contracts

import "strings"

// Article is one normalized news item
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at,omitempty"`
	Description string `json:"description,omitempty"`
}

// Valid reports whether the article may enter a merged list
func (a Article) Valid() bool {
	return strings.TrimSpace(a.Title) != "" && strings.TrimSpace(a.Source) != ""
}

// NewsMode selects how a news provider is queried
type NewsMode string

const (
	// ModeCurated queries the financial-press allowlist, sorted by relevance
	ModeCurated NewsMode = "curated"
	// ModeBroad queries all domains over the last 30 days
	ModeBroad NewsMode = "broad"
	// ModeSyndication queries the no-auth syndication feed
	ModeSyndication NewsMode = "syndication"
)

// ParseNewsMode accepts the mode names used by the API and tool surfaces
func ParseNewsMode(s string) (NewsMode, bool) {
	switch NewsMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCurated, "":
		return ModeCurated, true
	case ModeBroad:
		return ModeBroad, true
	case ModeSyndication:
		return ModeSyndication, true
	}
	return "", false
}
