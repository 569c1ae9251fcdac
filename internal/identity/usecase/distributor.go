package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
)

type DistributorPayoutInput struct {
	ID int64 `validate:"required,gt=0"`
}

// DistributorPayout is public so a customer can pay a distributor by id.
func (s *Usecase) DistributorPayout(ctx context.Context, in DistributorPayoutInput) (*entity.DistributorPayout, error) {
	ctx, span := s.startSpan(ctx, "DistributorPayout")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out, err := s.repoDB.GetDistributorPayout(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "distributor not found", "distributor_id", in.ID)
		return nil, goerror.NewBusiness("Distributor not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get distributor payout", "distributor_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

type DistributorListInput struct {
	Page int32 `validate:"gte=0"`
	Size int32 `validate:"gte=0,lte=100"`
}

type DistributorListOutput struct {
	Distributors []entity.Principal
	Page         int32
	Size         int32
	Total        int64
}

// DistributorList lists active distributors for a signed-in user.
func (s *Usecase) DistributorList(ctx context.Context, in DistributorListInput) (*DistributorListOutput, error) {
	ctx, span := s.startSpan(ctx, "DistributorList")
	defer span.End()

	if _, err := s.authenticated(ctx, entity.KindUser); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Page == 0 {
		in.Page = 1
	}
	if in.Size == 0 {
		in.Size = 20
	}

	list, total, err := s.repoDB.ListActiveDistributors(ctx, entity.DistributorListFilter{Page: in.Page, Size: in.Size})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list active distributors", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &DistributorListOutput{Distributors: list, Page: in.Page, Size: in.Size, Total: total}, nil
}
