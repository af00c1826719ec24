package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"profit-calculator/pkg/logger"
	"profit-calculator/pkg/models"
)

const createSubmissionsTable = `
CREATE TABLE IF NOT EXISTS submissions (
	id                UUID PRIMARY KEY,
	email             TEXT NOT NULL,
	monthly_leads     DOUBLE PRECISION NOT NULL,
	lead_value        DOUBLE PRECISION NOT NULL,
	operational_costs DOUBLE PRECISION NOT NULL,
	admin_hours       DOUBLE PRECISION NOT NULL,
	marketing_spend   DOUBLE PRECISION,
	churn_rate        DOUBLE PRECISION,
	ghl_contact_id    TEXT,
	annual_savings    DOUBLE PRECISION,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertSubmission = `
INSERT INTO submissions (
	id, email, monthly_leads, lead_value, operational_costs, admin_hours,
	marketing_spend, churn_rate, ghl_contact_id, annual_savings
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// PostgresStore writes submissions straight into a Postgres database.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

// OpenPostgres connects using a lib/pq DSN or URL.
func OpenPostgres(dsn string, log logger.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewPostgresStore(db, log), nil
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "postgres"}),
	}
}

// EnsureSchema creates the submissions table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSubmissionsTable); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertSubmission(ctx context.Context, record models.SubmissionRecord) error {
	id := record.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, insertSubmission,
		id,
		record.Email,
		record.MonthlyLeads,
		record.LeadValue,
		record.OperationalCosts,
		record.AdminHours,
		nullFloat(record.MarketingSpend),
		nullFloat(record.ChurnRate),
		record.GHLContactID,
		record.AnnualSavings,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	s.logger.Info("stored submission", map[string]interface{}{
		"submissionId": id,
		"contactId":    record.GHLContactID,
	})
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
