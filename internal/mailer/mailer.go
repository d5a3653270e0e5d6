// Package mailer sends approved outreach drafts and records the contact.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/types"
)

var (
	// ErrAlreadyContacted is returned when the company has already been emailed.
	ErrAlreadyContacted = errors.New("company already contacted")
	// ErrBlacklisted is returned when the company is excluded from outreach.
	ErrBlacklisted = errors.New("company is blacklisted")
)

// Message is one outgoing email.
type Message struct {
	To          string   `json:"to" validate:"required,email"`
	CC          []string `json:"cc,omitempty" validate:"omitempty,dive,email"`
	Subject     string   `json:"subject" validate:"required"`
	Body        string   `json:"body" validate:"required"`
	CompanyName string   `json:"company_name"`
	Domain      string   `json:"domain"`
	FounderName string   `json:"founder_name"`
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Error wraps a delivery failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mail error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("mail error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Records is the store access needed to send and mark a company contacted.
type Records interface {
	Get(ctx context.Context, id uuid.UUID) (*types.Company, error)
	SetStatus(ctx context.Context, id uuid.UUID, status types.Status) error
}

// Service validates, sends and transitions the record to Contacted.
type Service struct {
	sender   Sender
	records  Records
	validate *validator.Validate
	logger   *zap.Logger
	locks    idLocks
}

// idLocks hands out one mutex per company id while it is in use.
type idLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*idLock
}

type idLock struct {
	sync.Mutex
	refs int
}

func (l *idLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uuid.UUID]*idLock)
	}
	entry, ok := l.m[id]
	if !ok {
		entry = &idLock{}
		l.m[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}

// NewService creates a Service.
func NewService(sender Sender, records Records, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sender:   sender,
		records:  records,
		validate: validator.New(),
		logger:   logger,
	}
}

// Validate checks msg without sending it.
func (s *Service) Validate(msg Message) error {
	return s.validate.Struct(msg)
}

// Send delivers msg for company id. The record becomes Contacted only after the
// transport confirms delivery. Sends for the same id run one at a time, so a
// second caller sees the Contacted status and gets ErrAlreadyContacted.
func (s *Service) Send(ctx context.Context, id uuid.UUID, msg Message) error {
	if err := s.validate.Struct(msg); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	company, err := s.records.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load company: %w", err)
	}
	switch company.Status {
	case types.StatusContacted:
		return ErrAlreadyContacted
	case types.StatusBlacklisted:
		return ErrBlacklisted
	}
	if msg.CompanyName == "" {
		msg.CompanyName = company.CompanyName
	}
	if msg.Domain == "" {
		msg.Domain = company.Domain
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return err
	}

	if err := s.records.SetStatus(ctx, id, types.StatusContacted); err != nil {
		return fmt.Errorf("sent but failed to mark contacted: %w", err)
	}
	s.logger.Info("outreach email sent",
		zap.String("company", msg.CompanyName),
		zap.String("domain", msg.Domain),
		zap.String("to", msg.To),
		zap.Int("cc", len(msg.CC)),
	)
	return nil
}

// LogSender only logs messages. Used when SMTP is not configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mock sending email (configure SMTP to send real)",
		zap.String("to", msg.To),
		zap.Strings("cc", msg.CC),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
	return nil
}
