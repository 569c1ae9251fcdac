package inbound

import (
	"context"

	"github.com/shandysiswandi/watercan/internal/notification/usecase"
)

type uc interface {
	OTPDeliver(ctx context.Context, in usecase.OTPDeliverInput) error
}
