package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/jonathan/founder-outreach/internal/types"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
	now  Clock
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, now: utcNow}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: utcNow}
}

// SetClock replaces the time source used for scan timestamps.
func (s *PostgresStore) SetClock(now Clock) {
	s.now = now
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id               UUID PRIMARY KEY,
	domain           TEXT NOT NULL UNIQUE,
	company_name     TEXT NOT NULL,
	website_url      TEXT NOT NULL,
	roles_found      BOOLEAN NOT NULL DEFAULT FALSE,
	resolved_people  JSONB NOT NULL DEFAULT '[]'::jsonb,
	email_candidates JSONB NOT NULL DEFAULT '[]'::jsonb,
	email_draft      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'New'
		CHECK (status IN ('New', 'Contacted', 'Blacklisted')),
	last_scanned_at  TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(status);
CREATE INDEX IF NOT EXISTS idx_companies_created_at ON companies(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const postgresColumns = `id, domain, company_name, website_url, roles_found, resolved_people,
	email_candidates, email_draft, status, last_scanned_at, created_at`

func (s *PostgresStore) Lookup(ctx context.Context, domain string) (*types.Company, error) {
	c, err := scanPostgresCompany(s.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM companies WHERE domain = $1`, domain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: lookup %s", domain)
	}
	return c, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*types.Company, error) {
	c, err := scanPostgresCompany(s.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get %s", id)
	}
	return c, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, c *types.Company) (UpsertResult, error) {
	fields, err := encodeScanFields(c)
	if err != nil {
		return "", eris.Wrap(err, "postgres: upsert")
	}

	newID := uuid.New()
	now := s.now()

	var (
		id                   uuid.UUID
		status               string
		scannedAt, createdAt time.Time
	)
	err = s.pool.QueryRow(ctx, `
		INSERT INTO companies (id, domain, company_name, website_url, roles_found, resolved_people,
			email_candidates, email_draft, status, last_scanned_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (domain) DO UPDATE SET
			company_name     = EXCLUDED.company_name,
			website_url      = EXCLUDED.website_url,
			roles_found      = EXCLUDED.roles_found,
			resolved_people  = EXCLUDED.resolved_people,
			email_candidates = EXCLUDED.email_candidates,
			email_draft      = EXCLUDED.email_draft,
			last_scanned_at  = GREATEST(companies.last_scanned_at, EXCLUDED.last_scanned_at)
		WHERE companies.status <> ALL($11)
		RETURNING id, status, last_scanned_at, created_at`,
		newID, c.Domain, c.CompanyName, c.WebsiteURL, c.RolesFound,
		fields.people, fields.candidates, c.EmailDraft,
		string(types.StatusNew), now, terminalStatuses,
	).Scan(&id, &status, &scannedAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UpsertIgnored, nil
		}
		return "", eris.Wrapf(err, "postgres: upsert %s", c.Domain)
	}

	c.ID = id
	c.Status = types.Status(status)
	c.LastScannedAt = scannedAt.UTC()
	c.CreatedAt = createdAt.UTC()

	if id == newID {
		return UpsertInserted, nil
	}
	return UpsertUpdated, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id uuid.UUID, status types.Status) error {
	if !status.Valid() {
		return eris.Errorf("postgres: invalid status %q", status)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: set status %s", id)
	}
	return checkTag(tag, id)
}

func (s *PostgresStore) UpdateDraft(ctx context.Context, id uuid.UUID, draft string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET email_draft = $1 WHERE id = $2`, draft, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update draft %s", id)
	}
	return checkTag(tag, id)
}

func (s *PostgresStore) List(ctx context.Context, page Page) ([]types.Company, error) {
	query := `SELECT ` + postgresColumns + ` FROM companies`
	args := []any{}
	if page.Status != "" {
		args = append(args, string(page.Status))
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	args = append(args, page.limit(), page.offset())
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	companies := make([]types.Company, 0)
	for rows.Next() {
		c, err := scanPostgresCompany(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list companies")
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies")
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count companies")
}

func checkTag(tag pgconn.CommandTag, id uuid.UUID) error {
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "company %s", id)
	}
	return nil
}

func scanPostgresCompany(row scannable) (*types.Company, error) {
	var (
		c              types.Company
		status         string
		people, emails []byte
	)
	err := row.Scan(&c.ID, &c.Domain, &c.CompanyName, &c.WebsiteURL, &c.RolesFound,
		&people, &emails, &c.EmailDraft, &status, &c.LastScannedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = types.Status(status)
	c.LastScannedAt = c.LastScannedAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	if err := decodeScanFields(&c, people, emails); err != nil {
		return nil, err
	}
	return &c, nil
}
