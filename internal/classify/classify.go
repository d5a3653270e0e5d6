// Package classify decides whether a company website advertises a target role.
package classify

import (
	"context"
	"strings"

	"github.com/jonathan/founder-outreach/internal/fetch"
)

// DefaultKeywords is the target role profile.
var DefaultKeywords = []string{
	"product engineer",
	"frontend",
	"design engineer",
	"software engineer",
	"developer",
	"full stack",
	"web",
	"react",
	"typescript",
}

// PageFetcher fetches a page and its visible text. *fetch.Client satisfies it.
type PageFetcher interface {
	Page(ctx context.Context, url string) (*fetch.Result, error)
}

// Verdict is the classification of one company website.
type Verdict struct {
	RolesFound bool
	Matched    []string
}

// Classifier matches role keywords against website text.
type Classifier struct {
	keywords []string
	fetcher  PageFetcher
}

// New creates a Classifier. An empty keyword list uses DefaultKeywords.
func New(fetcher PageFetcher, keywords []string) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			normalized = append(normalized, k)
		}
	}
	return &Classifier{keywords: normalized, fetcher: fetcher}
}

// Matches returns the keywords that occur as case-insensitive substrings of text.
func (c *Classifier) Matches(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			matched = append(matched, k)
		}
	}
	return matched
}

// ClassifySite fetches websiteURL and reports whether its visible text mentions
// any keyword. A fetch failure is returned alongside a negative verdict.
func (c *Classifier) ClassifySite(ctx context.Context, websiteURL string) (Verdict, error) {
	res, err := c.fetcher.Page(ctx, websiteURL)
	if err != nil {
		return Verdict{}, err
	}
	matched := c.Matches(res.Text)
	return Verdict{RolesFound: len(matched) > 0, Matched: matched}, nil
}
