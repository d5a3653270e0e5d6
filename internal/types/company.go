// Package types provides type definitions for structured data used throughout the founder-outreach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the outreach lifecycle state of a company record.
type Status string

const (
	// StatusNew is a scanned company that has not been contacted.
	StatusNew Status = "New"
	// StatusContacted is set only after a confirmed send.
	StatusContacted Status = "Contacted"
	// StatusBlacklisted is set only by an explicit operator action.
	StatusBlacklisted Status = "Blacklisted"
)

// Terminal reports whether the status excludes the record from scans and outreach.
func (s Status) Terminal() bool {
	return s == StatusContacted || s == StatusBlacklisted
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusBlacklisted:
		return true
	}
	return false
}

// ParseStatus converts a case-insensitive status name.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusNew, StatusContacted, StatusBlacklisted} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// MaxPeople caps the number of resolved people stored per company.
const MaxPeople = 4

// Person is a resolved key person at a company.
type Person struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Company is the persistent record for one discovered company, keyed by Domain.
type Company struct {
	ID              uuid.UUID `json:"id"`
	CompanyName     string    `json:"company_name"`
	WebsiteURL      string    `json:"website_url"`
	Domain          string    `json:"domain"`
	RolesFound      bool      `json:"roles_found"`
	ResolvedPeople  []Person  `json:"resolved_people"`
	EmailCandidates []string  `json:"email_candidates"`
	EmailDraft      string    `json:"email_draft"`
	Status          Status    `json:"status"`
	LastScannedAt   time.Time `json:"last_scanned_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Detail is the information extracted from a directory detail page.
type Detail struct {
	CompanyName string `json:"company_name"`
	WebsiteURL  string `json:"website_url"`
	Description string `json:"description"`
}
