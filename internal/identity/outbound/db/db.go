package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

// - 23505 unique violation → goerror.ErrConflict
// - no rows → goerror.ErrNotFound
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// table holds the statements for one principal kind. Table names never come
// from request input.
type table struct {
	name    string
	columns string
}

//nolint:gochecknoglobals // fixed per kind
var tables = map[entity.Kind]table{
	entity.KindUser: {
		name:    "users",
		columns: "id, phone, display_name, COALESCE(avatar_url, ''), '' AS payout_handle, TRUE AS is_active, created_at, updated_at",
	},
	entity.KindDistributor: {
		name:    "distributors",
		columns: "id, phone, display_name, COALESCE(avatar_url, ''), COALESCE(payout_handle, ''), is_active, created_at, updated_at",
	},
}

func tableOf(kind entity.Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, entity.ErrKindUnknown
	}
	return t, nil
}

func scanPrincipal(row pgx.Row, kind entity.Kind) (*entity.Principal, error) {
	p := entity.Principal{Kind: kind}
	if err := row.Scan(
		&p.ID,
		&p.Phone,
		&p.DisplayName,
		&p.AvatarURL,
		&p.PayoutHandle,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
