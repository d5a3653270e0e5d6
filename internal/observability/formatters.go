// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/founder-outreach/internal/pipeline"
	"github.com/jonathan/founder-outreach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxDraftLines caps the draft preview
	maxDraftLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintCompany outputs a human-readable summary of a persisted company.
func (p *Printer) PrintCompany(c *types.Company) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Domain:   %s\n", c.Domain))
	sb.WriteString(fmt.Sprintf("Website:  %s\n", c.WebsiteURL))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", c.Status))
	sb.WriteString("\n")

	if len(c.ResolvedPeople) > 0 {
		sb.WriteString("Key people:\n")
		for _, person := range c.ResolvedPeople {
			sb.WriteString(fmt.Sprintf("  • %s", person.Name))
			if person.Role != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", person.Role))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(c.EmailCandidates) > 0 {
		sb.WriteString("Email candidates:\n")
		count := min(len(c.EmailCandidates), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", c.EmailCandidates[i]))
		}
		if len(c.EmailCandidates) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(c.EmailCandidates)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if c.EmailDraft != "" {
		sb.WriteString("Draft:\n")
		lines := strings.Split(strings.TrimSpace(c.EmailDraft), "\n")
		count := min(len(lines), maxDraftLines)
		for i := 0; i < count; i++ {
			sb.WriteString("  " + lines[i] + "\n")
		}
		if len(lines) > maxDraftLines {
			sb.WriteString(fmt.Sprintf("  ... %d more lines\n", len(lines)-maxDraftLines))
		}
	}

	p.printBox(strings.ToUpper(c.CompanyName), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the per-outcome counts of a scan run.
func (p *Printer) PrintSummary(s *pipeline.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stop reason:  %s\n", s.StopReason))
	sb.WriteString(fmt.Sprintf("Sources:      %d (%d failed)\n", len(s.Sources), len(s.FailedSources)))
	sb.WriteString(fmt.Sprintf("Links:        %d\n", s.Links))
	sb.WriteString(fmt.Sprintf("Examined:     %d\n", s.Examined))
	sb.WriteString(fmt.Sprintf("Persisted:    %d\n", len(s.Persisted)))

	if len(s.Outcomes) > 0 {
		sb.WriteString("\nOutcomes:\n")
		outcomes := make([]string, 0, len(s.Outcomes))
		for o := range s.Outcomes {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		for _, o := range outcomes {
			sb.WriteString(fmt.Sprintf("  • %-20s %d\n", o, s.Outcomes[o]))
		}
	}

	if len(s.FailedSources) > 0 {
		sb.WriteString("\nFailed sources:\n")
		for _, src := range s.FailedSources {
			sb.WriteString(fmt.Sprintf("  • %s\n", src))
		}
	}

	p.printBox("SCAN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
