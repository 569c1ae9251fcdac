package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/watercan/internal/identity/entity"
)

func (s *DB) GetPrincipalByPhone(ctx context.Context, kind entity.Kind, phone string) (_ *entity.Principal, err error) {
	ctx, span := s.startSpan(ctx, "GetPrincipalByPhone")
	defer func() { s.endSpan(span, err) }()

	t, err := tableOf(kind)
	if err != nil {
		return nil, err
	}

	q := "SELECT " + t.columns + " FROM " + t.name + " WHERE phone = $1"
	p, err := scanPrincipal(s.conn.QueryRow(ctx, q, phone), kind)
	if err != nil {
		return nil, s.mapError(err)
	}
	return p, nil
}

func (s *DB) GetPrincipalByID(ctx context.Context, kind entity.Kind, id int64) (_ *entity.Principal, err error) {
	ctx, span := s.startSpan(ctx, "GetPrincipalByID")
	defer func() { s.endSpan(span, err) }()

	t, err := tableOf(kind)
	if err != nil {
		return nil, err
	}

	q := "SELECT " + t.columns + " FROM " + t.name + " WHERE id = $1"
	p, err := scanPrincipal(s.conn.QueryRow(ctx, q, id), kind)
	if err != nil {
		return nil, s.mapError(err)
	}
	return p, nil
}

// CreatePrincipal inserts a new row. A phone that is already taken yields
// goerror.ErrConflict.
func (s *DB) CreatePrincipal(ctx context.Context, in entity.NewPrincipal) (_ *entity.Principal, err error) {
	ctx, span := s.startSpan(ctx, "CreatePrincipal")
	defer func() { s.endSpan(span, err) }()

	t, err := tableOf(in.Kind)
	if err != nil {
		return nil, err
	}

	q := "INSERT INTO " + t.name + " (id, phone, display_name) VALUES ($1, $2, $3) RETURNING " + t.columns
	p, err := scanPrincipal(s.conn.QueryRow(ctx, q, in.ID, in.Phone, in.DisplayName), in.Kind)
	if err != nil {
		return nil, s.mapError(err)
	}
	return p, nil
}

// UpdatePrincipal applies the non-nil fields of patch. Distributor-only
// fields are ignored for users.
func (s *DB) UpdatePrincipal(ctx context.Context, kind entity.Kind, id int64, patch entity.PrincipalPatch) (_ *entity.Principal, err error) {
	ctx, span := s.startSpan(ctx, "UpdatePrincipal")
	defer func() { s.endSpan(span, err) }()

	t, err := tableOf(kind)
	if err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.DisplayName != nil {
		add("display_name", *patch.DisplayName)
	}
	if kind == entity.KindDistributor {
		if patch.PayoutHandle != nil {
			if *patch.PayoutHandle == "" {
				sets = append(sets, "payout_handle = NULL")
			} else {
				add("payout_handle", *patch.PayoutHandle)
			}
		}
		if patch.IsActive != nil {
			add("is_active", *patch.IsActive)
		}
	}

	q := "UPDATE " + t.name + " SET " + strings.Join(sets, ", ") + " WHERE id = $1 RETURNING " + t.columns
	p, err := scanPrincipal(s.conn.QueryRow(ctx, q, args...), kind)
	if err != nil {
		return nil, s.mapError(err)
	}
	return p, nil
}

func (s *DB) UpdatePrincipalAvatar(ctx context.Context, kind entity.Kind, id int64, avatarURL string) (_ *entity.Principal, err error) {
	ctx, span := s.startSpan(ctx, "UpdatePrincipalAvatar")
	defer func() { s.endSpan(span, err) }()

	t, err := tableOf(kind)
	if err != nil {
		return nil, err
	}

	q := "UPDATE " + t.name + " SET avatar_url = $2, updated_at = NOW() WHERE id = $1 RETURNING " + t.columns
	p, err := scanPrincipal(s.conn.QueryRow(ctx, q, id, avatarURL), kind)
	if err != nil {
		return nil, s.mapError(err)
	}
	return p, nil
}

func (s *DB) GetDistributorPayout(ctx context.Context, id int64) (_ *entity.DistributorPayout, err error) {
	ctx, span := s.startSpan(ctx, "GetDistributorPayout")
	defer func() { s.endSpan(span, err) }()

	var out entity.DistributorPayout
	err = s.conn.QueryRow(ctx,
		"SELECT id, display_name, COALESCE(payout_handle, '') FROM distributors WHERE id = $1",
		id,
	).Scan(&out.DistributorID, &out.Name, &out.PayoutHandle)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &out, nil
}

func (s *DB) ListActiveDistributors(ctx context.Context, f entity.DistributorListFilter) (_ []entity.Principal, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListActiveDistributors")
	defer func() { s.endSpan(span, err) }()

	t := tables[entity.KindDistributor]

	var total int64
	if err = s.conn.QueryRow(ctx, "SELECT COUNT(*) FROM distributors WHERE is_active").Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}
	if total == 0 {
		return []entity.Principal{}, 0, nil
	}

	rows, err := s.conn.Query(ctx,
		"SELECT "+t.columns+" FROM distributors WHERE is_active ORDER BY display_name, id LIMIT $1 OFFSET $2",
		f.Size, f.Offset(),
	)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Principal, error) {
		p, err := scanPrincipal(row, entity.KindDistributor)
		if err != nil {
			return entity.Principal{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	return list, total, nil
}
