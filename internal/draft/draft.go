// Package draft composes the outreach email for a company.
package draft

import (
	"strings"

	"github.com/jonathan/founder-outreach/internal/emails"
	"github.com/jonathan/founder-outreach/internal/prompts"
	"github.com/jonathan/founder-outreach/internal/types"
)

// NoPeopleGreeting is used when no person was resolved.
const NoPeopleGreeting = "Hi there"

// Sender is the signature block of the outreach email.
type Sender struct {
	Name        string
	Title       string
	CalendarURL string
	GitHub      string
	LinkedIn    string
}

// Greeting addresses every resolved person by first name:
// "Hi A", "Hi A and Hi B", "Hi A, Hi B, and Hi C".
func Greeting(people []types.Person) string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if first, _ := emails.SplitName(p.Name); first != "" {
			names = append(names, "Hi "+first)
		}
	}

	switch len(names) {
	case 0:
		return NoPeopleGreeting
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// Composer fills the fixed outreach template.
type Composer struct {
	sender  Sender
	body    string
	subject string
}

// NewComposer creates a Composer for the given sender.
func NewComposer(sender Sender) *Composer {
	return &Composer{
		sender:  sender,
		body:    prompts.MustGet("outreach.json", "draft-body"),
		subject: prompts.MustGet("outreach.json", "draft-subject"),
	}
}

// Compose returns the email body for a company.
func (c *Composer) Compose(greeting, companyName, insight string) string {
	return prompts.Format(c.body, c.values(map[string]string{
		"Greeting":    greeting,
		"CompanyName": companyName,
		"Insight":     strings.TrimSpace(insight),
	}))
}

// Subject returns the email subject for a company.
func (c *Composer) Subject(companyName string) string {
	return prompts.Format(c.subject, c.values(map[string]string{"CompanyName": companyName}))
}

func (c *Composer) values(data map[string]string) map[string]string {
	data["SenderName"] = c.sender.Name
	data["SenderTitle"] = c.sender.Title
	data["CalendarURL"] = c.sender.CalendarURL
	data["GitHub"] = c.sender.GitHub
	data["LinkedIn"] = c.sender.LinkedIn
	return data
}
