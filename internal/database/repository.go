package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobposting-collector/internal/models"
)

var (
	ErrNotFound  = errors.New("job posting not found")
	ErrDuplicate = errors.New("job posting already exists")
)

// Repository stores job postings keyed by posting URL.
type Repository interface {
	FindByPostingURL(ctx context.Context, postingURL string) (*models.StoredPosting, error)
	Get(ctx context.Context, id string) (*models.StoredPosting, error)
	Create(ctx context.Context, rec models.JobRecord) (*models.StoredPosting, error)
	Update(ctx context.Context, id string, rec models.JobRecord) (*models.StoredPosting, error)
	Ping(ctx context.Context) error
}

const schema = `
CREATE TABLE IF NOT EXISTS job_postings (
	id               UUID PRIMARY KEY,
	posting_url      TEXT NOT NULL UNIQUE,
	position         TEXT NOT NULL,
	company          TEXT NOT NULL,
	origin           TEXT NOT NULL,
	job_description  TEXT NOT NULL DEFAULT '',
	work_arrangement TEXT NOT NULL DEFAULT '',
	demand           TEXT NOT NULL DEFAULT '',
	city             TEXT NOT NULL DEFAULT '',
	country          TEXT NOT NULL DEFAULT '',
	match            TEXT NOT NULL DEFAULT '',
	budget           DOUBLE PRECISION,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const postingColumns = `id, posting_url, position, company, origin, job_description, work_arrangement,
	demand, city, country, match, budget, created_at, updated_at`

// PostgresRepository is the pgx-backed Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Transaction-mode poolers do not keep prepared statements between queries.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &PostgresRepository{db: pool}, nil
}

func (r *PostgresRepository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Migrate creates the job_postings table when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate job_postings: %w", err)
	}
	return nil
}

// Version reports the server version string.
func (r *PostgresRepository) Version(ctx context.Context) (string, error) {
	var version string
	if err := r.db.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	return version, nil
}

func (r *PostgresRepository) FindByPostingURL(ctx context.Context, postingURL string) (*models.StoredPosting, error) {
	row := r.db.QueryRow(ctx, "SELECT "+postingColumns+" FROM job_postings WHERE posting_url = $1", postingURL)
	return scanPosting(row)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.StoredPosting, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx, "SELECT "+postingColumns+" FROM job_postings WHERE id = $1", id)
	return scanPosting(row)
}

func (r *PostgresRepository) Create(ctx context.Context, rec models.JobRecord) (*models.StoredPosting, error) {
	query := `
		INSERT INTO job_postings (id, posting_url, position, company, origin, job_description,
			work_arrangement, demand, city, country, match, budget)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + postingColumns

	row := r.db.QueryRow(ctx, query, append([]any{uuid.NewString()}, recordArgs(rec)...)...)
	posting, err := scanPosting(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	return posting, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, rec models.JobRecord) (*models.StoredPosting, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `
		UPDATE job_postings SET posting_url = $2, position = $3, company = $4, origin = $5,
			job_description = $6, work_arrangement = $7, demand = $8, city = $9, country = $10,
			match = $11, budget = $12, updated_at = now()
		WHERE id = $1
		RETURNING ` + postingColumns

	row := r.db.QueryRow(ctx, query, append([]any{id}, recordArgs(rec)...)...)
	posting, err := scanPosting(row)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, err
		case errors.As(err, &pgErr) && pgErr.Code == "23505":
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	return posting, nil
}

func recordArgs(rec models.JobRecord) []any {
	return []any{
		rec.PostingURL,
		rec.Position,
		rec.Company,
		string(rec.Origin),
		rec.JobDescription,
		string(rec.WorkArrangement),
		string(rec.Demand),
		rec.City,
		rec.Country,
		string(rec.Match),
		rec.Budget,
	}
}

func scanPosting(row pgx.Row) (*models.StoredPosting, error) {
	var (
		p                               models.StoredPosting
		origin, arrangement, demand, mt string
	)
	err := row.Scan(&p.ID, &p.Record.PostingURL, &p.Record.Position, &p.Record.Company, &origin,
		&p.Record.JobDescription, &arrangement, &demand, &p.Record.City, &p.Record.Country, &mt,
		&p.Record.Budget, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Record.Origin = models.Origin(origin)
	p.Record.WorkArrangement = models.WorkArrangement(arrangement)
	p.Record.Demand = models.Demand(demand)
	p.Record.Match = models.Match(mt)
	return &p, nil
}
