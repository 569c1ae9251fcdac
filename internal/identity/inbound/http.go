package inbound

import (
	"context"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/identity/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
)

type uc interface {
	OTPSend(ctx context.Context, in usecase.OTPSendInput) (*usecase.OTPSendOutput, error)
	OTPVerify(ctx context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error)

	Profile(ctx context.Context, in usecase.ProfileInput) (*entity.Principal, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) (*entity.Principal, error)
	ProfileUpdateAvatar(ctx context.Context, in usecase.ProfileUpdateAvatarInput) (*entity.Principal, error)

	DistributorPayout(ctx context.Context, in usecase.DistributorPayoutInput) (*entity.DistributorPayout, error)
	DistributorList(ctx context.Context, in usecase.DistributorListInput) (*usecase.DistributorListOutput, error)
}

// Limits are the per-IP middlewares guarding the OTP routes.
type Limits struct {
	Send   router.Middleware
	Verify router.Middleware
}

// PublicRoutes are the identity routes served without a session.
var PublicRoutes = []string{
	"POST /api/v1/users/otp/send",
	"POST /api/v1/users/otp/verify",
	"POST /api/v1/distributors/otp/send",
	"POST /api/v1/distributors/otp/verify",
	"GET /api/v1/payouts/:id",
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, limits Limits) {
	for _, kind := range []entity.Kind{entity.KindUser, entity.KindDistributor} {
		end := &HTTPEndpoint{uc: uc, kind: kind}
		base := "/api/v1/" + kind.String() + "s"

		// OTP login (public)
		r.POST(base+"/otp/send", end.OTPSend, limits.Send)
		r.POST(base+"/otp/verify", end.OTPVerify, limits.Verify)

		// Profile (need authenticated)
		r.GET(base+"/profile", end.Profile)
		r.PUT(base+"/profile", end.ProfileUpdate)
		r.PUT(base+"/profile/avatar", end.ProfileUpdateAvatar)
	}

	dir := &HTTPEndpoint{uc: uc, kind: entity.KindUser}

	// Distributor directory
	r.GET("/api/v1/payouts/:id", dir.DistributorPayout)
	r.GET("/api/v1/users/distributors", dir.DistributorList)
}
