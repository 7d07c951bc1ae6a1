package filter

import (
	"regexp"
	"strings"
)

// Path shapes on linkedin.com that show a single job posting.
var jobPagePaths = []string{
	"linkedin.com/jobs/view",
	"linkedin.com/jobs/collections",
	"linkedin.com/jobs/search",
}

// postingURLRegex is what the record store accepts as a posting URL.
var postingURLRegex = regexp.MustCompile(`^https://www\.linkedin\.com/jobs/(view|collections)/.+$`)

// IsJobPage reports whether the page address is one the extractor knows.
func IsJobPage(pageURL string) bool {
	if pageURL == "" {
		return false
	}
	lower := strings.ToLower(pageURL)
	for _, path := range jobPagePaths {
		if strings.Contains(lower, path) {
			return true
		}
	}
	return false
}

// IsPostingURL reports whether u can be stored as a posting URL.
func IsPostingURL(u string) bool {
	return postingURLRegex.MatchString(u)
}
