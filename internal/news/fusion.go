// Package news runs the news cascade and merges its partial results.
package news

import (
	"strings"

	"github.com/wonny/clientintel/internal/contracts"
)

// DedupPrefixLen is how many leading title characters identify a story
const DedupPrefixLen = 60

// DedupKey is the lowercase first DedupPrefixLen characters of title.
// Different providers rewrite URLs and outlet names but usually keep the headline's opening.
func DedupKey(title string) string {
	runes := []rune(title)
	if len(runes) > DedupPrefixLen {
		runes = runes[:DedupPrefixLen]
	}
	return strings.ToLower(string(runes))
}

// Merge appends candidates to base in candidate order, skipping invalid articles and any
// whose key is already present in base or earlier in candidates. It returns the merged list
// and how many candidates were added. base is not modified.
func Merge(base, candidates []contracts.Article) ([]contracts.Article, int) {
	seen := make(map[string]struct{}, len(base)+len(candidates))
	merged := make([]contracts.Article, 0, len(base)+len(candidates))
	for _, a := range base {
		seen[DedupKey(a.Title)] = struct{}{}
		merged = append(merged, a)
	}

	added := 0
	for _, a := range candidates {
		if !a.Valid() {
			continue
		}
		key := DedupKey(a.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, a)
		added++
	}

	return merged, added
}

// Cap truncates articles to at most max entries, preserving order
func Cap(articles []contracts.Article, max int) []contracts.Article {
	if max < 0 {
		max = 0
	}
	if len(articles) <= max {
		return articles
	}
	return articles[:max]
}
