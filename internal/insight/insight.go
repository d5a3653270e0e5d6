// Package insight writes the one-sentence point of view used in the outreach draft.
package insight

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/llm"
	"github.com/jonathan/founder-outreach/internal/prompts"
)

// Generator produces a point-of-view sentence about a company.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// Generate returns one sentence that continues "You've built something
// incredible with {companyName}. ". When the capability is missing or fails, the
// description is returned unchanged.
func (g *Generator) Generate(ctx context.Context, companyName, description string) string {
	prompt := prompts.Format(prompts.MustGet("outreach.json", "founder-pov"), map[string]string{
		"CompanyName": companyName,
		"Description": description,
	})

	text, err := g.client.Generate(ctx, llm.Request{Prompt: prompt, Tier: llm.TierStandard})
	if err != nil {
		if !errors.Is(err, llm.ErrUnavailable) {
			g.logger.Warn("insight generation failed, using description",
				zap.String("company", companyName), zap.Error(err))
		}
		return description
	}

	sentence := StripStem(text, companyName)
	if sentence == "" {
		return description
	}
	return sentence
}

var wrappingQuotes = regexp.MustCompile(`^["']|["']$`)

// StripStem removes an echoed "You've built something incredible with
// {companyName}." prefix and one wrapping quote character at either end.
func StripStem(text, companyName string) string {
	text = strings.TrimSpace(text)
	stem := regexp.MustCompile(`(?i)^You['’]ve built something incredible with ` +
		regexp.QuoteMeta(companyName) + `[.!]*\s*`)
	text = stem.ReplaceAllString(text, "")
	text = wrappingQuotes.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
