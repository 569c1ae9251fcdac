package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/watercan/internal/household/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const canStatusColumns = "user_id, can_1_full, can_2_full, can_3_full, updated_at"

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// - no rows or 23503 (the user row is gone) → goerror.ErrNotFound
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return goerror.ErrNotFound
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("household.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func scanCanStatus(row pgx.Row) (*entity.CanStatus, error) {
	var c entity.CanStatus
	if err := row.Scan(&c.UserID, &c.Can1Full, &c.Can2Full, &c.Can3Full, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreateCanStatus returns the user's row, inserting the all-empty default
// the first time. When a concurrent first read wins the insert, the statement
// snapshot cannot see its row, so it is read again.
func (s *DB) GetOrCreateCanStatus(ctx context.Context, userID int64) (_ *entity.CanStatus, err error) {
	ctx, span := s.startSpan(ctx, "GetOrCreateCanStatus")
	defer func() { s.endSpan(span, err) }()

	q := `WITH ins AS (
		INSERT INTO can_status (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + canStatusColumns + `
	)
	SELECT ` + canStatusColumns + ` FROM ins
	UNION ALL
	SELECT ` + canStatusColumns + ` FROM can_status WHERE user_id = $1
	LIMIT 1`

	c, err := scanCanStatus(s.conn.QueryRow(ctx, q, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		c, err = scanCanStatus(s.conn.QueryRow(ctx, "SELECT "+canStatusColumns+" FROM can_status WHERE user_id = $1", userID))
	}
	if err != nil {
		return nil, s.mapError(err)
	}
	return c, nil
}

func (s *DB) UpsertCanStatus(ctx context.Context, in entity.CanStatus) (_ *entity.CanStatus, err error) {
	ctx, span := s.startSpan(ctx, "UpsertCanStatus")
	defer func() { s.endSpan(span, err) }()

	q := `INSERT INTO can_status (user_id, can_1_full, can_2_full, can_3_full, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET can_1_full = EXCLUDED.can_1_full,
			can_2_full = EXCLUDED.can_2_full,
			can_3_full = EXCLUDED.can_3_full,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + canStatusColumns

	c, err := scanCanStatus(s.conn.QueryRow(ctx, q, in.UserID, in.Can1Full, in.Can2Full, in.Can3Full))
	if err != nil {
		return nil, s.mapError(err)
	}
	return c, nil
}
