// Package sanitize strips unapproved links from AI-generated Markdown
// before it reaches the caller. Regex rewriting is a deliberate
// trade-off for this narrow, model-generated input shape; adversarial
// or deeply nested Markdown could evade it, which the property tests
// probe rather than a full parser guarding against.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// [label](url) and ![alt](url), with optional <...> around the url
	// and an optional "title".
	inlineLinkRe = regexp.MustCompile(`!?\[([^\]]*)\]\(\s*<?([^)<>\s]+)>?(?:\s+"[^"]*")?\s*\)`)

	// [id]: url on its own line.
	refDefRe = regexp.MustCompile(`(?m)^[ \t]{0,3}\[[^\]]+\]:[ \t]*<?(\S+?)>?(?:[ \t]+.*)?$`)

	// <https://...> autolinks.
	autolinkRe = regexp.MustCompile(`<(https?://[^>\s]+)>`)

	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// Result is the sanitizer output: rewritten Markdown plus the stripped
// URLs, deduplicated in first-seen order, for the caller to surface as
// warnings.
type Result struct {
	Markdown    string
	RemovedURLs []string
}

// Sanitize removes every link whose URL is not in allowed, keeping the
// visible text. In-document anchors (#...) and mailto: links always
// pass. The function is pure and total: it never fails, at worst it
// under- or over-matches on pathological input.
func Sanitize(markdown string, allowed AllowedLinkSet) Result {
	removed := newRemovedSet()

	out := inlineLinkRe.ReplaceAllStringFunc(markdown, func(match string) string {
		groups := inlineLinkRe.FindStringSubmatch(match)
		label, url := groups[1], groups[2]
		if permitted(url, allowed) {
			return match
		}
		removed.add(url)
		return label
	})

	out = refDefRe.ReplaceAllStringFunc(out, func(match string) string {
		url := refDefRe.FindStringSubmatch(match)[1]
		if permitted(url, allowed) {
			return match
		}
		removed.add(url)
		return ""
	})

	out = autolinkRe.ReplaceAllStringFunc(out, func(match string) string {
		url := autolinkRe.FindStringSubmatch(match)[1]
		if permitted(url, allowed) {
			return match
		}
		removed.add(url)
		return ""
	})

	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return Result{
		Markdown:    strings.TrimSpace(out),
		RemovedURLs: removed.urls,
	}
}

func permitted(url string, allowed AllowedLinkSet) bool {
	if strings.HasPrefix(url, "#") || strings.HasPrefix(url, "mailto:") {
		return true
	}
	return allowed.Contains(url)
}

// removedSet deduplicates stripped URLs preserving first-seen order.
type removedSet struct {
	seen map[string]struct{}
	urls []string
}

func newRemovedSet() *removedSet {
	return &removedSet{seen: make(map[string]struct{}), urls: []string{}}
}

func (r *removedSet) add(url string) {
	if _, ok := r.seen[url]; ok {
		return
	}
	r.seen[url] = struct{}{}
	r.urls = append(r.urls, url)
}
