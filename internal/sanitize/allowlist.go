package sanitize

import "strings"

// repoSubPaths are the known-safe paths appended to the subject
// repository's canonical URL.
var repoSubPaths = []string{
	"/blob/main/README.md",
	"/issues",
	"/pulls",
	"/releases",
}

// AllowedLinkSet is a request-scoped set of exact URL strings that may
// survive sanitization.
type AllowedLinkSet map[string]struct{}

// NewAllowedLinkSet builds the allow-list from explicit URLs.
func NewAllowedLinkSet(urls ...string) AllowedLinkSet {
	s := make(AllowedLinkSet, len(urls))
	for _, u := range urls {
		if u != "" {
			s[u] = struct{}{}
		}
	}
	return s
}

// ForRepository builds the per-request allow-list: the repository's
// canonical URL plus its fixed sub-paths, and the optional reference
// URL if supplied.
func ForRepository(repoURL, referenceURL string) AllowedLinkSet {
	s := make(AllowedLinkSet)
	repoURL = strings.TrimRight(repoURL, "/")
	if repoURL != "" {
		s[repoURL] = struct{}{}
		for _, p := range repoSubPaths {
			s[repoURL+p] = struct{}{}
		}
	}
	if referenceURL != "" {
		s[referenceURL] = struct{}{}
	}
	return s
}

// Contains reports exact membership.
func (s AllowedLinkSet) Contains(url string) bool {
	_, ok := s[url]
	return ok
}
