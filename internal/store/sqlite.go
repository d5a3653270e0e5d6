package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/jonathan/founder-outreach/internal/types"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now Clock
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: utcNow}, nil
}

// SetClock replaces the time source used for scan timestamps.
func (s *SQLiteStore) SetClock(now Clock) {
	s.now = now
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id               TEXT PRIMARY KEY,
	domain           TEXT NOT NULL UNIQUE,
	company_name     TEXT NOT NULL,
	website_url      TEXT NOT NULL,
	roles_found      INTEGER NOT NULL DEFAULT 0,
	resolved_people  TEXT NOT NULL DEFAULT '[]',
	email_candidates TEXT NOT NULL DEFAULT '[]',
	email_draft      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'New',
	last_scanned_at  INTEGER NOT NULL,
	created_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(status);
CREATE INDEX IF NOT EXISTS idx_companies_created_at ON companies(created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteColumns = `id, domain, company_name, website_url, roles_found, resolved_people,
	email_candidates, email_draft, status, last_scanned_at, created_at`

func (s *SQLiteStore) Lookup(ctx context.Context, domain string) (*types.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM companies WHERE domain = ?`, domain)
	c, err := scanSQLiteCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: lookup %s", domain)
	}
	return c, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*types.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM companies WHERE id = ?`, id.String())
	c, err := scanSQLiteCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s", id)
	}
	return c, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, c *types.Company) (UpsertResult, error) {
	fields, err := encodeScanFields(c)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: upsert")
	}

	newID := uuid.New()
	now := s.now().UnixMilli()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO companies (id, domain, company_name, website_url, roles_found, resolved_people,
			email_candidates, email_draft, status, last_scanned_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			company_name     = excluded.company_name,
			website_url      = excluded.website_url,
			roles_found      = excluded.roles_found,
			resolved_people  = excluded.resolved_people,
			email_candidates = excluded.email_candidates,
			email_draft      = excluded.email_draft,
			last_scanned_at  = MAX(companies.last_scanned_at, excluded.last_scanned_at)
		WHERE companies.status NOT IN (?, ?)
		RETURNING id, status, last_scanned_at, created_at`,
		newID.String(), c.Domain, c.CompanyName, c.WebsiteURL, c.RolesFound,
		string(fields.people), string(fields.candidates), c.EmailDraft,
		string(types.StatusNew), now, now,
		terminalStatuses[0], terminalStatuses[1],
	)

	var id, status string
	var scannedAt, createdAt int64
	err = row.Scan(&id, &status, &scannedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UpsertIgnored, nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: upsert %s", c.Domain)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: parse id %s", id)
	}
	c.ID = parsed
	c.Status = types.Status(status)
	c.LastScannedAt = time.UnixMilli(scannedAt).UTC()
	c.CreatedAt = time.UnixMilli(createdAt).UTC()

	if parsed == newID {
		return UpsertInserted, nil
	}
	return UpsertUpdated, nil
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id uuid.UUID, status types.Status) error {
	if !status.Valid() {
		return eris.Errorf("sqlite: invalid status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET status = ? WHERE id = ?`, string(status), id.String())
	if err != nil {
		return eris.Wrapf(err, "sqlite: set status %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) UpdateDraft(ctx context.Context, id uuid.UUID, draft string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET email_draft = ? WHERE id = ?`, draft, id.String())
	if err != nil {
		return eris.Wrapf(err, "sqlite: update draft %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) List(ctx context.Context, page Page) ([]types.Company, error) {
	var (
		where strings.Builder
		args  []any
	)
	if page.Status != "" {
		where.WriteString(" WHERE status = ?")
		args = append(args, string(page.Status))
	}
	args = append(args, page.limit(), page.offset())

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM companies`+where.String()+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer func() { _ = rows.Close() }()

	companies := make([]types.Company, 0)
	for rows.Next() {
		c, err := scanSQLiteCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: list companies")
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies")
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count companies")
}

// helpers

func checkRowsAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "company %s", id)
	}
	return nil
}

func scanSQLiteCompany(row scannable) (*types.Company, error) {
	var (
		c                 types.Company
		id, status        string
		people, emails    string
		scannedAt, create int64
	)
	err := row.Scan(&id, &c.Domain, &c.CompanyName, &c.WebsiteURL, &c.RolesFound,
		&people, &emails, &c.EmailDraft, &status, &scannedAt, &create)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, eris.Wrapf(err, "parse id %s", id)
	}
	c.ID = parsed
	c.Status = types.Status(status)
	c.LastScannedAt = time.UnixMilli(scannedAt).UTC()
	c.CreatedAt = time.UnixMilli(create).UTC()
	if err := decodeScanFields(&c, []byte(people), []byte(emails)); err != nil {
		return nil, err
	}
	return &c, nil
}
