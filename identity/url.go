package identity

import (
	"sort"

	"github.com/PuerkitoBio/purell"
)

const urlFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagSortQuery |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveDotSegments

// NormalizeURL returns the canonical form of an offer URL. Unparseable input
// is returned unchanged.
func NormalizeURL(raw string) string {
	normalized, err := purell.NormalizeURLString(raw, urlFlags)
	if err != nil {
		return raw
	}
	return normalized
}

// UniqueURLs normalizes urls and returns them de-duplicated and sorted.
func UniqueURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		n := NormalizeURL(u)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
