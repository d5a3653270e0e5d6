package directory

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractCompanyLinks returns the absolute company detail URLs found in a listing
// page, in document order and without duplicates.
func ExtractCompanyLinks(html, origin, prefix string) ([]string, error) {
	return extractPrefixed(html, origin, prefix)
}

// ExtractCategoryLinks returns the absolute category page URLs found in the
// categories index, in document order and without duplicates.
func ExtractCategoryLinks(html, origin, prefix string) ([]string, error) {
	return extractPrefixed(html, origin, prefix)
}

// extractPrefixed collects anchors whose href starts with prefix. The leading
// "." of the relative href is replaced with origin.
func extractPrefixed(html, origin, prefix string) ([]string, error) {
	if prefix == "" {
		return nil, &ExtractionError{Message: "link prefix is required"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	origin = strings.TrimSuffix(origin, "/")
	seen := make(map[string]bool)
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, prefix) || len(href) == len(prefix) {
			return
		}

		link := origin + strings.TrimPrefix(href, ".")
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	return links, nil
}
