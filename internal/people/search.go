package people

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/founder-outreach/internal/metrics"
	"github.com/jonathan/founder-outreach/internal/prompts"
	"github.com/jonathan/founder-outreach/internal/types"
)

// maxSearchFounders caps how many names the search fallback returns.
const maxSearchFounders = 2

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string
	Snippet string
	Link    string
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, num int64) ([]SearchResult, error)
}

// CustomSearch implements Searcher with the Google Custom Search JSON API.
type CustomSearch struct {
	svc *customsearch.Service
	cx  string
}

// NewCustomSearch creates a CustomSearch client for the given engine.
func NewCustomSearch(ctx context.Context, apiKey, cx string) (*CustomSearch, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &CustomSearch{svc: svc, cx: cx}, nil
}

// Search returns up to num results for query.
func (s *CustomSearch) Search(ctx context.Context, query string, num int64) ([]SearchResult, error) {
	resp, err := s.svc.Cse.List().Cx(s.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		metrics.IncrementCapabilityCall("search", "error")
		return nil, fmt.Errorf("search failed: %w", err)
	}
	metrics.IncrementCapabilityCall("search", "ok")

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return results, nil
}

var (
	titleSeparators = regexp.MustCompile(`[-|–]`)
	hasDigit        = regexp.MustCompile(`\d`)
)

// SearchFallback guesses founder names from search result titles such as
// "Jane Doe - Co-founder - Acme | LinkedIn".
type SearchFallback struct {
	searcher Searcher
}

// NewSearchFallback creates a SearchFallback.
func NewSearchFallback(searcher Searcher) *SearchFallback {
	return &SearchFallback{searcher: searcher}
}

// Find returns at most two founders, or nothing when the search fails.
func (f *SearchFallback) Find(ctx context.Context, companyName string) ([]types.Person, error) {
	query := prompts.Format(prompts.MustGet("outreach.json", "founder-search-query"), map[string]string{
		"CompanyName": companyName,
	})
	results, err := f.searcher.Search(ctx, query, 10)
	if err != nil {
		return nil, err
	}
	return foundersFromResults(results), nil
}

func foundersFromResults(results []SearchResult) []types.Person {
	var people []types.Person
	seen := make(map[string]bool)
	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.Snippet)
		if !strings.Contains(text, "founder") {
			continue
		}
		name := strings.TrimSpace(titleSeparators.Split(r.Title, 2)[0])
		words := len(strings.Fields(name))
		if words < 2 || words > 3 || hasDigit.MatchString(name) {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		people = append(people, types.Person{Name: name, Role: "Founder"})
		if len(people) == maxSearchFounders {
			break
		}
	}
	return people
}
