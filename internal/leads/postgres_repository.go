package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var leadsTracer = otel.Tracer("website.internal.leads")

type leadsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db leadsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db leadsDB) *PostgresRepository {
	if db == nil {
		panic("leads: db required")
	}
	return &PostgresRepository{db: db}
}

// Insert writes a single row. Failures are not retried here.
func (r *PostgresRepository) Insert(ctx context.Context, lead *Lead) (string, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.insert", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "leads"),
	)

	id := uuid.New()
	query := `
		INSERT INTO leads (id, name, email, company, phone, message, service, source, status, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		lead.Name,
		lead.Email,
		lead.Company,
		lead.Phone,
		lead.Message,
		serviceArg(lead.Service),
		lead.Source,
		string(lead.Status),
		lead.IPAddress,
	).Scan(&createdAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return "", fmt.Errorf("%w: insert lead: %w", ErrStore, err)
	}

	lead.ID = id.String()
	lead.CreatedAt = createdAt
	return lead.ID, nil
}

func serviceArg(s *Service) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
