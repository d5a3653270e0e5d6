// Package people resolves the founders and top executives of a company.
package people

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/llm"
	"github.com/jonathan/founder-outreach/internal/prompts"
	"github.com/jonathan/founder-outreach/internal/schemas"
	"github.com/jonathan/founder-outreach/internal/types"
)

// Finder is a secondary source of founder names.
type Finder interface {
	Find(ctx context.Context, companyName string) ([]types.Person, error)
}

// Resolver asks the generative capability, with search grounding, for the key
// people of a company. Every failure yields an empty result.
type Resolver struct {
	client   llm.Client
	fallback Finder
	max      int
	logger   *zap.Logger
}

// NewResolver creates a Resolver. fallback may be nil; it is consulted only when
// the generative capability is unavailable.
func NewResolver(client llm.Client, fallback Finder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, fallback: fallback, max: types.MaxPeople, logger: logger}
}

// Resolve returns at most four people in resolution order.
func (r *Resolver) Resolve(ctx context.Context, companyName, websiteURL string) []types.Person {
	prompt := prompts.Format(prompts.MustGet("outreach.json", "key-people"), map[string]string{
		"CompanyName": companyName,
		"WebsiteURL":  websiteURL,
	})

	text, err := r.client.Generate(ctx, llm.Request{
		Prompt:   prompt,
		Tier:     llm.TierStandard,
		Grounded: true,
	})
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			return r.fromFallback(ctx, companyName)
		}
		r.logger.Warn("key people lookup failed",
			zap.String("company", companyName), zap.Error(err))
		return nil
	}

	people, err := ParsePeople(text)
	if err != nil {
		r.logger.Warn("key people response rejected",
			zap.String("company", companyName), zap.Error(err))
		return nil
	}
	return capPeople(people, r.max)
}

func (r *Resolver) fromFallback(ctx context.Context, companyName string) []types.Person {
	if r.fallback == nil {
		return nil
	}
	people, err := r.fallback.Find(ctx, companyName)
	if err != nil {
		r.logger.Warn("founder search failed",
			zap.String("company", companyName), zap.Error(err))
		return nil
	}
	return capPeople(people, r.max)
}

// ParsePeople cleans a capability response, validates it against the key people
// schema and decodes it. Names are trimmed and duplicates dropped.
func ParsePeople(text string) ([]types.Person, error) {
	cleaned := llm.CleanJSONBlock(text)
	if err := schemas.Validate(schemas.KeyPeople, cleaned); err != nil {
		return nil, err
	}

	var raw []types.Person
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, err
	}

	people := make([]types.Person, 0, len(raw))
	seen := make(map[string]bool)
	for _, p := range raw {
		p.Name = strings.Join(strings.Fields(p.Name), " ")
		p.Role = strings.TrimSpace(p.Role)
		key := strings.ToLower(p.Name)
		if p.Name == "" || seen[key] {
			continue
		}
		seen[key] = true
		people = append(people, p)
	}
	return people, nil
}

func capPeople(people []types.Person, max int) []types.Person {
	if len(people) > max {
		return people[:max]
	}
	return people
}
