package content

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var contentTracer = otel.Tracer("website.internal.content")

type contentDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads the catalogue tables.
type PostgresRepository struct {
	db contentDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("content: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db contentDB) *PostgresRepository {
	if db == nil {
		panic("content: db required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListCaseStudies(ctx context.Context) ([]CaseStudy, error) {
	ctx, span := startQuerySpan(ctx, "content.list_case_studies", "case_studies")
	defer span.End()

	query := `
		SELECT id::text, title, slug, industry, challenge, solution, results, technologies, image_url, is_published, created_at
		FROM case_studies
		WHERE is_published = true
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("content: list case studies: %w", err))
	}
	defer rows.Close()

	out := []CaseStudy{}
	for rows.Next() {
		var cs CaseStudy
		if err := rows.Scan(
			&cs.ID,
			&cs.Title,
			&cs.Slug,
			&cs.Industry,
			&cs.Challenge,
			&cs.Solution,
			&cs.Results,
			&cs.Technologies,
			&cs.ImageURL,
			&cs.IsPublished,
			&cs.CreatedAt,
		); err != nil {
			return nil, spanError(span, fmt.Errorf("content: scan case study: %w", err))
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, spanError(span, fmt.Errorf("content: list case studies: %w", err))
	}
	span.SetAttributes(attribute.Int("content.rows", len(out)))
	return out, nil
}

func (r *PostgresRepository) ListSolutions(ctx context.Context) ([]Solution, error) {
	ctx, span := startQuerySpan(ctx, "content.list_solutions", "solutions")
	defer span.End()

	query := `
		SELECT id::text, title, slug, description, benefits, icon, display_order, is_active, created_at
		FROM solutions
		WHERE is_active = true
		ORDER BY display_order ASC, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("content: list solutions: %w", err))
	}
	defer rows.Close()

	out := []Solution{}
	for rows.Next() {
		var s Solution
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Slug,
			&s.Description,
			&s.Benefits,
			&s.Icon,
			&s.DisplayOrder,
			&s.IsActive,
			&s.CreatedAt,
		); err != nil {
			return nil, spanError(span, fmt.Errorf("content: scan solution: %w", err))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, spanError(span, fmt.Errorf("content: list solutions: %w", err))
	}
	span.SetAttributes(attribute.Int("content.rows", len(out)))
	return out, nil
}

func startQuerySpan(ctx context.Context, name, table string) (context.Context, trace.Span) {
	ctx, span := contentTracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", table),
	)
	return ctx, span
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
