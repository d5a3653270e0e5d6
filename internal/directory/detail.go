package directory

import (
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/founder-outreach/internal/types"
)

const (
	visitWebsiteText = "Visit Website"
	raisedText       = "Raised"
	unknownCompany   = "Unknown"
	// minDescriptionLen is the rune count a leaf element must exceed to be
	// taken as a description.
	minDescriptionLen = 50
)

// heuristic extracts one field from a parsed detail page, or "" when it does not apply.
type heuristic func(doc *goquery.Document) string

// firstOf runs heuristics in order and returns the first non-empty result.
func firstOf(doc *goquery.Document, chain ...heuristic) string {
	for _, h := range chain {
		if v := h(doc); v != "" {
			return v
		}
	}
	return ""
}

// DetailParser extracts company facts from a directory detail page.
type DetailParser struct {
	BlockedHosts []string
}

// ParseDetail parses a detail page with the default blocked hosts.
func ParseDetail(html, sourceURL string) types.Detail {
	return DetailParser{BlockedHosts: DefaultBlockedHosts}.Parse(html, sourceURL)
}

// Parse extracts the company name, website and description. Fields that cannot
// be found are left empty; the company name falls back to the last path segment
// of sourceURL and then to "Unknown".
func (p DetailParser) Parse(html, sourceURL string) types.Detail {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.Detail{CompanyName: firstNonEmpty(slugOf(sourceURL), unknownCompany)}
	}

	var (
		base          *url.URL
		directoryHost string
	)
	if u, err := url.Parse(sourceURL); err == nil {
		base = u
		directoryHost = strings.ToLower(u.Hostname())
	}

	website, found := visitWebsiteLink(doc, base)
	if !found {
		website = firstOf(doc, p.externalLink(directoryHost))
	}

	return types.Detail{
		CompanyName: firstNonEmpty(
			firstOf(doc, firstHeading),
			slugOf(sourceURL),
			unknownCompany,
		),
		WebsiteURL: website,
		Description: firstOf(doc,
			fundingContext,
			firstLongLeaf,
		),
	}
}

func firstHeading(doc *goquery.Document) string {
	return collapse(doc.Find("h1").First().Text())
}

// visitWebsiteLink returns the href of the first anchor labelled "Visit Website"
// that has one, resolved against the detail page URL. found reports whether such
// an anchor exists; when it does its href is authoritative, even if it does not
// resolve to an http(s) URL.
func visitWebsiteLink(doc *goquery.Document, base *url.URL) (href string, found bool) {
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.AttrOr("href", ""))
		if raw == "" || !strings.Contains(s.Text(), visitWebsiteText) {
			return true
		}
		href, found = resolveHTTP(base, raw), true
		return false
	})
	return href, found
}

// resolveHTTP resolves href against base and keeps it only if it is http(s).
func resolveHTTP(base *url.URL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	return absoluteHTTP(u.String())
}

// externalLink returns the first absolute http(s) link that leaves the
// directory and is not a social profile.
func (p DetailParser) externalLink(directoryHost string) heuristic {
	return func(doc *goquery.Document) string {
		var href string
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			candidate := absoluteHTTP(s.AttrOr("href", ""))
			if candidate == "" {
				return true
			}
			u, err := url.Parse(candidate)
			if err != nil {
				return true
			}
			host := strings.ToLower(u.Hostname())
			if directoryHost != "" && (host == directoryHost || strings.HasSuffix(host, "."+directoryHost)) {
				return true
			}
			for _, blocked := range p.BlockedHosts {
				if blocked != "" && strings.Contains(host, strings.ToLower(blocked)) {
					return true
				}
			}
			href = candidate
			return false
		})
		return href
	}
}

// fundingContext returns the text around the first "Raised" link, without the
// link text itself.
func fundingContext(doc *goquery.Document) string {
	var text string
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		anchorText := s.Text()
		if !strings.Contains(anchorText, raisedText) {
			return true
		}
		parentText := s.Parent().Text()
		text = collapse(strings.Replace(parentText, anchorText, "", 1))
		return false
	})
	return text
}

// firstLongLeaf returns the first div or p without element children whose text
// is long enough to be a description.
func firstLongLeaf(doc *goquery.Document) string {
	var text string
	doc.Find("div, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		t := collapse(s.Text())
		if utf8.RuneCountInString(t) <= minDescriptionLen || strings.Contains(t, visitWebsiteText) {
			return true
		}
		text = t
		return false
	})
	return text
}

func absoluteHTTP(href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}

func slugOf(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	if base == "." || base == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
