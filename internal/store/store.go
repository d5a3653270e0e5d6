// Package store persists company records keyed by normalized domain.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/jonathan/founder-outreach/internal/types"
)

// ErrNotFound is returned when a record addressed by ID does not exist.
var ErrNotFound = errors.New("company not found")

// DefaultPageSize is the number of records returned by List when no limit is set.
const DefaultPageSize = 100

// UpsertResult reports what Upsert did.
type UpsertResult string

const (
	// UpsertInserted means a new record was created with status New.
	UpsertInserted UpsertResult = "inserted"
	// UpsertUpdated means an existing non-terminal record was refreshed.
	UpsertUpdated UpsertResult = "updated"
	// UpsertIgnored means the existing record is Contacted or Blacklisted and was left untouched.
	UpsertIgnored UpsertResult = "ignored"
)

// Page selects a slice of records, newest first.
type Page struct {
	Limit  int          `json:"limit,omitempty"`
	Offset int          `json:"offset,omitempty"`
	Status types.Status `json:"status,omitempty"`
}

func (p Page) limit() int {
	if p.Limit <= 0 {
		return DefaultPageSize
	}
	return p.Limit
}

func (p Page) offset() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}

// Lookuper finds a record by domain.
type Lookuper interface {
	Lookup(ctx context.Context, domain string) (*types.Company, error)
}

// Store defines the persistence interface for company records.
type Store interface {
	Lookuper

	// Upsert inserts c as New, refreshes a non-terminal record, or leaves a
	// terminal one untouched. On insert or update c receives the stored ID,
	// status and timestamps.
	Upsert(ctx context.Context, c *types.Company) (UpsertResult, error)
	SetStatus(ctx context.Context, id uuid.UUID, status types.Status) error
	UpdateDraft(ctx context.Context, id uuid.UUID, draft string) error
	Get(ctx context.Context, id uuid.UUID) (*types.Company, error)
	List(ctx context.Context, page Page) ([]types.Company, error)
	Count(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// IsContacted reports whether the record for domain exists and is terminal.
func IsContacted(ctx context.Context, s Lookuper, domain string) (bool, error) {
	c, err := s.Lookup(ctx, domain)
	if err != nil {
		return false, err
	}
	return c != nil && c.Status.Terminal(), nil
}

// Clock returns the current time.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

var terminalStatuses = []string{string(types.StatusContacted), string(types.StatusBlacklisted)}

// scanFields are the encoded mutable fields of an upsert.
type scanFields struct {
	people     []byte
	candidates []byte
}

func encodeScanFields(c *types.Company) (scanFields, error) {
	people := c.ResolvedPeople
	if people == nil {
		people = []types.Person{}
	}
	candidates := c.EmailCandidates
	if candidates == nil {
		candidates = []string{}
	}

	p, err := json.Marshal(people)
	if err != nil {
		return scanFields{}, eris.Wrap(err, "marshal resolved people")
	}
	e, err := json.Marshal(candidates)
	if err != nil {
		return scanFields{}, eris.Wrap(err, "marshal email candidates")
	}
	return scanFields{people: p, candidates: e}, nil
}

func decodeScanFields(c *types.Company, people, candidates []byte) error {
	c.ResolvedPeople = []types.Person{}
	c.EmailCandidates = []string{}
	if len(people) > 0 {
		if err := json.Unmarshal(people, &c.ResolvedPeople); err != nil {
			return eris.Wrap(err, "unmarshal resolved people")
		}
	}
	if len(candidates) > 0 {
		if err := json.Unmarshal(candidates, &c.EmailCandidates); err != nil {
			return eris.Wrap(err, "unmarshal email candidates")
		}
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}
