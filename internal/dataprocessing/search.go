package dataprocessing

import (
	"net/url"
	"strings"
)

const (
	searchBase   = "https://www.google.com/search"
	searchTopics = "(ED|IT|raid|scam|stocks|Enforcement Directorate|Income Tax)"
)

// SearchURL builds a web search link for news about a donor. The name and
// the fixed topic filter form a single escaped query.
func SearchURL(name string) string {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(name)+" "+searchTopics)
	return searchBase + "?" + q.Encode()
}
