package directory

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/founder-outreach/internal/fetch"
)

// Fetcher retrieves a page. *fetch.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Result, error)
}

// Collection is the outcome of one discovery pass.
type Collection struct {
	Sources       []string
	FailedSources []string
	Links         []string
}

// Collector gathers candidate detail URLs from the home listing and a random
// sample of category pages.
type Collector struct {
	cfg     Config
	fetcher Fetcher
	rng     *rand.Rand
	logger  *zap.Logger
}

// NewCollector creates a Collector. rng drives category sampling so runs with
// the same seed choose the same sources.
func NewCollector(cfg Config, fetcher Fetcher, rng *rand.Rand, logger *zap.Logger) *Collector {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{cfg: cfg, fetcher: fetcher, rng: rng, logger: logger}
}

// Collect selects the sources, fetches them concurrently and merges their
// company links in source order. A source that fails contributes no links,
// except the home listing whose failure aborts the pass with
// ErrPrimarySourceUnavailable.
func (c *Collector) Collect(ctx context.Context) (*Collection, error) {
	categories := c.categories(ctx)
	sources := SelectSources(c.cfg.HomeURL(), categories, c.cfg.CategorySample, c.rng)
	c.logger.Info("selected directory sources", zap.Strings("sources", sources))

	perSource := make([][]string, len(sources))
	failed := make([]bool, len(sources))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			links, err := c.linksFrom(gCtx, src)
			if err != nil {
				c.logger.Warn("directory source failed",
					zap.String("source", src), zap.Error(err))
				failed[i] = true
				if i == 0 {
					return fmt.Errorf("%w: %w", ErrPrimarySourceUnavailable, err)
				}
				return nil
			}
			perSource[i] = links
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Collection{Sources: sources, Links: make([]string, 0)}
	seen := make(map[string]bool)
	for i, links := range perSource {
		if failed[i] {
			out.FailedSources = append(out.FailedSources, sources[i])
			continue
		}
		for _, link := range links {
			if !seen[link] {
				seen[link] = true
				out.Links = append(out.Links, link)
			}
		}
	}

	c.logger.Info("collected company links",
		zap.Int("sources", len(sources)),
		zap.Int("failed_sources", len(out.FailedSources)),
		zap.Int("links", len(out.Links)))
	return out, nil
}

// categories reads the category index. Failure means the run uses the home
// listing only.
func (c *Collector) categories(ctx context.Context) []string {
	if c.cfg.CategorySample <= 0 {
		return nil
	}
	res, err := c.fetcher.Get(ctx, c.cfg.CategoriesURL())
	if err != nil {
		c.logger.Warn("category index unavailable, using home listing only", zap.Error(err))
		return nil
	}
	links, err := ExtractCategoryLinks(res.HTML, c.cfg.Origin, c.cfg.CategoryPrefix)
	if err != nil {
		c.logger.Warn("category index unparseable", zap.Error(err))
		return nil
	}
	return links
}

func (c *Collector) linksFrom(ctx context.Context, source string) ([]string, error) {
	res, err := c.fetcher.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	return ExtractCompanyLinks(res.HTML, c.cfg.Origin, c.cfg.CompanyPrefix)
}
