// Package pipeline orchestrates one bounded scan run: discover companies in the
// directory, enrich the ones hiring for the target roles and persist a draft.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/claim"
	"github.com/jonathan/founder-outreach/internal/classify"
	"github.com/jonathan/founder-outreach/internal/directory"
	"github.com/jonathan/founder-outreach/internal/domain"
	"github.com/jonathan/founder-outreach/internal/draft"
	"github.com/jonathan/founder-outreach/internal/emails"
	"github.com/jonathan/founder-outreach/internal/fetch"
	"github.com/jonathan/founder-outreach/internal/metrics"
	"github.com/jonathan/founder-outreach/internal/pipeline/steps"
	"github.com/jonathan/founder-outreach/internal/store"
	"github.com/jonathan/founder-outreach/internal/types"
)

const (
	// DefaultLimit is the number of companies persisted per run when none is given.
	DefaultLimit = 5
	// DefaultPace is the pause between persisted companies.
	DefaultPace = 5 * time.Second
)

// StopReason explains why a run ended.
type StopReason string

const (
	StopLimitReached     StopReason = "limit_reached"
	StopSourcesExhausted StopReason = "sources_exhausted"
	StopCanceled         StopReason = "canceled"
)

// Per-company outcomes, also used as metric labels.
const (
	OutcomeInserted          = "inserted"
	OutcomeUpdated           = "updated"
	OutcomeIgnored           = "ignored"
	OutcomeDetailUnavailable = "detail_unavailable"
	OutcomeNoWebsite         = "no_website"
	OutcomeInvalidDomain     = "invalid_domain"
	OutcomeClaimed           = "claimed_elsewhere"
	OutcomeLookupFailed      = "lookup_failed"
	OutcomeContacted         = "contacted"
	OutcomeBlacklisted       = "blacklisted"
	OutcomeFresh             = "recently_scanned"
	OutcomeSiteUnavailable   = "site_unavailable"
	OutcomeNoRoles           = "no_roles"
	OutcomePersistFailed     = "persist_failed"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Stage   steps.Stage `json:"stage"`
	Outcome string      `json:"outcome,omitempty"`
	Company string      `json:"company,omitempty"`
	Domain  string      `json:"domain,omitempty"`
	URL     string      `json:"url"`
}

// ProgressCallback is called when a company finishes processing
type ProgressCallback func(event ProgressEvent)

// LinkCollector discovers candidate detail URLs. *directory.Collector satisfies it.
type LinkCollector interface {
	Collect(ctx context.Context) (*directory.Collection, error)
}

// SiteClassifier decides role fit. *classify.Classifier satisfies it.
type SiteClassifier interface {
	ClassifySite(ctx context.Context, websiteURL string) (classify.Verdict, error)
}

// PersonResolver finds key people. *people.Resolver satisfies it.
type PersonResolver interface {
	Resolve(ctx context.Context, companyName, websiteURL string) []types.Person
}

// InsightGenerator writes the point-of-view sentence. *insight.Generator satisfies it.
type InsightGenerator interface {
	Generate(ctx context.Context, companyName, description string) string
}

// Upserter persists an enriched company. Every store.Store satisfies it.
type Upserter interface {
	Upsert(ctx context.Context, c *types.Company) (store.UpsertResult, error)
}

// Components are the collaborators of a Pipeline. Claims and Logger are optional.
type Components struct {
	Collector  LinkCollector
	Pages      directory.Fetcher
	Parser     directory.DetailParser
	Gate       *store.Gate
	Store      Upserter
	Classifier SiteClassifier
	People     PersonResolver
	Insight    InsightGenerator
	Composer   *draft.Composer
	Claims     claim.Claimer
	Logger     *zap.Logger
}

// Options holds configuration for running the pipeline
type Options struct {
	// Pace is the pause between persisted companies. Zero disables it.
	Pace       time.Duration
	OnProgress ProgressCallback
}

// Summary reports what a run did.
type Summary struct {
	Sources       []string        `json:"sources"`
	FailedSources []string        `json:"failed_sources"`
	Links         int             `json:"links"`
	Examined      int             `json:"examined"`
	Outcomes      map[string]int  `json:"outcomes"`
	Persisted     []types.Company `json:"persisted"`
	StopReason    StopReason      `json:"stop_reason"`
	Duration      time.Duration   `json:"duration"`
}

// Pipeline runs scan batches.
type Pipeline struct {
	c      Components
	opts   Options
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

// New creates a Pipeline.
func New(c Components, opts Options) *Pipeline {
	if c.Claims == nil {
		c.Claims = claim.Noop{}
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{c: c, opts: opts, sleep: sleepContext, logger: logger}
}

// Run discovers companies and processes them one at a time until limit
// companies are persisted or the links run out. Only a failure to fetch the
// home listing is returned as an error; per-company failures skip that company.
func (p *Pipeline) Run(ctx context.Context, limit int) (*Summary, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	start := time.Now()

	collection, err := p.c.Collector.Collect(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Sources:       collection.Sources,
		FailedSources: collection.FailedSources,
		Links:         len(collection.Links),
		Outcomes:      make(map[string]int),
		Persisted:     make([]types.Company, 0, min(limit, len(collection.Links))),
	}
	defer func() { summary.Duration = time.Since(start) }()

	p.logger.Info("scan started",
		zap.Int("limit", limit),
		zap.Int("links", summary.Links),
		zap.Int("sources", len(summary.Sources)),
		zap.Int("failed_sources", len(summary.FailedSources)),
	)

	for i, link := range collection.Links {
		if len(summary.Persisted) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			summary.StopReason = StopCanceled
			return summary, err
		}

		summary.Examined++
		company, outcome := p.process(ctx, link)
		summary.Outcomes[outcome]++
		metrics.IncrementCompany(outcome)
		if company == nil {
			continue
		}
		summary.Persisted = append(summary.Persisted, *company)

		more := len(summary.Persisted) < limit && i < len(collection.Links)-1
		if more && p.opts.Pace > 0 {
			if err := p.sleep(ctx, p.opts.Pace); err != nil {
				summary.StopReason = StopCanceled
				return summary, err
			}
		}
	}

	if len(summary.Persisted) >= limit {
		summary.StopReason = StopLimitReached
	} else {
		summary.StopReason = StopSourcesExhausted
	}
	p.logger.Info("scan finished",
		zap.String("stop_reason", string(summary.StopReason)),
		zap.Int("examined", summary.Examined),
		zap.Int("persisted", len(summary.Persisted)),
	)
	return summary, nil
}

// companyRun carries one company through the stages.
type companyRun struct {
	p      *Pipeline
	url    string
	trace  steps.Trace
	detail types.Detail
	domain string
}

func (r *companyRun) advance(stage steps.Stage) {
	if err := r.trace.Advance(stage); err != nil {
		r.p.logger.Error("stage order violated", zap.String("url", r.url), zap.Error(err))
	}
}

// skip logs why the company stopped and returns the outcome.
func (r *companyRun) skip(outcome, reason string, fields ...zap.Field) (*types.Company, string) {
	r.p.logger.Info("skipping company", append([]zap.Field{
		zap.String("company", r.detail.CompanyName),
		zap.String("domain", r.domain),
		zap.String("stage", string(r.trace.Current())),
		zap.String("reason", reason),
	}, fields...)...)
	r.p.emit(r, outcome)
	return nil, outcome
}

func (p *Pipeline) emit(r *companyRun, outcome string) {
	if p.opts.OnProgress == nil {
		return
	}
	p.opts.OnProgress(ProgressEvent{
		Stage:   r.trace.Current(),
		Outcome: outcome,
		Company: r.detail.CompanyName,
		Domain:  r.domain,
		URL:     r.url,
	})
}

// process runs one detail URL through every stage. It returns the persisted
// company, or nil with the outcome that ended processing.
func (p *Pipeline) process(ctx context.Context, link string) (*types.Company, string) {
	r := &companyRun{p: p, url: link}
	r.advance(steps.LinkCollected)

	page, err := p.c.Pages.Get(ctx, link)
	if err != nil {
		return r.skip(OutcomeDetailUnavailable, "detail page unavailable", zap.Error(err))
	}
	r.detail = p.c.Parser.Parse(page.HTML, link)
	r.advance(steps.DetailExtracted)

	if r.detail.WebsiteURL == "" {
		return r.skip(OutcomeNoWebsite, "no website link on detail page")
	}
	r.domain = domain.Normalize(r.detail.WebsiteURL)
	if r.domain == "" {
		return r.skip(OutcomeInvalidDomain, "website url has no usable host",
			zap.String("website", r.detail.WebsiteURL))
	}
	r.advance(steps.WebsiteResolved)

	if !p.c.Claims.Claim(ctx, r.domain) {
		return r.skip(OutcomeClaimed, "domain claimed by a concurrent run")
	}
	defer p.c.Claims.Release(ctx, r.domain)

	decision, err := p.c.Gate.Check(ctx, r.domain)
	if err != nil {
		return r.skip(OutcomeLookupFailed, "record lookup failed", zap.Error(err))
	}
	if !decision.Proceed {
		return r.skip(gateOutcome(decision.Reason), decision.Reason)
	}
	r.advance(steps.GateChecked)

	verdict, err := p.c.Classifier.ClassifySite(ctx, r.detail.WebsiteURL)
	if err != nil {
		r.advance(steps.ClassifiedNoRole)
		return r.skip(OutcomeSiteUnavailable, "company website unavailable", zap.Error(err))
	}
	if !verdict.RolesFound {
		r.advance(steps.ClassifiedNoRole)
		return r.skip(OutcomeNoRoles, "no target roles found")
	}
	r.advance(steps.ClassifiedRoleFit)
	p.logger.Debug("roles found",
		zap.String("company", r.detail.CompanyName),
		zap.Strings("matched", verdict.Matched),
	)

	people := p.c.People.Resolve(ctx, r.detail.CompanyName, r.detail.WebsiteURL)
	insight := p.c.Insight.Generate(ctx, r.detail.CompanyName, r.detail.Description)
	r.advance(steps.PeopleResolved)

	company := &types.Company{
		CompanyName:     r.detail.CompanyName,
		WebsiteURL:      r.detail.WebsiteURL,
		Domain:          r.domain,
		RolesFound:      true,
		ResolvedPeople:  people,
		EmailCandidates: emails.ForPeople(people, r.domain),
		EmailDraft:      p.c.Composer.Compose(draft.Greeting(people), r.detail.CompanyName, insight),
	}
	r.advance(steps.DraftComposed)

	result, err := p.c.Store.Upsert(ctx, company)
	if err != nil {
		return r.skip(OutcomePersistFailed, "persist failed", zap.Error(err))
	}
	if result == store.UpsertIgnored {
		return r.skip(OutcomeIgnored, "record became terminal during enrichment")
	}
	r.advance(steps.Persisted)

	outcome := OutcomeInserted
	if result == store.UpsertUpdated {
		outcome = OutcomeUpdated
	}
	p.logger.Info("company persisted",
		zap.String("company", company.CompanyName),
		zap.String("domain", company.Domain),
		zap.String("result", string(result)),
		zap.Int("people", len(company.ResolvedPeople)),
		zap.Int("email_candidates", len(company.EmailCandidates)),
	)
	p.emit(r, outcome)
	return company, outcome
}

func gateOutcome(reason string) string {
	switch reason {
	case store.ReasonContacted:
		return OutcomeContacted
	case store.ReasonBlacklisted:
		return OutcomeBlacklisted
	default:
		return OutcomeFresh
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Compile-time interface checks
var (
	_ directory.Fetcher = (*fetch.Client)(nil)
	_ SiteClassifier    = (*classify.Classifier)(nil)
	_ LinkCollector     = (*directory.Collector)(nil)
)
