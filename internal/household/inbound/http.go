package inbound

import (
	"context"
	"time"

	"github.com/shandysiswandi/watercan/internal/household/entity"
	"github.com/shandysiswandi/watercan/internal/household/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
)

type uc interface {
	CanStatus(ctx context.Context) (*entity.CanStatus, error)
	CanStatusUpdate(ctx context.Context, in usecase.CanStatusUpdateInput) (*entity.CanStatus, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Can status (need authenticated user)
	r.GET("/api/v1/users/can-status", end.CanStatus)
	r.PUT("/api/v1/users/can-status", end.CanStatusUpdate)
}

type CanStatusUpdateRequest struct {
	Can1Full *bool `json:"can_1_full"`
	Can2Full *bool `json:"can_2_full"`
	Can3Full *bool `json:"can_3_full"`
}

type CanStatusResponse struct {
	Can1Full  bool      `json:"can_1_full"`
	Can2Full  bool      `json:"can_2_full"`
	Can3Full  bool      `json:"can_3_full"`
	FullCount int       `json:"full_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCanStatusResponse(c *entity.CanStatus) CanStatusResponse {
	return CanStatusResponse{
		Can1Full:  c.Can1Full,
		Can2Full:  c.Can2Full,
		Can3Full:  c.Can3Full,
		FullCount: c.FullCount(),
		UpdatedAt: c.UpdatedAt,
	}
}
