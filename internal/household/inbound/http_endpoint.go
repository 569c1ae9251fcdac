package inbound

import (
	"github.com/shandysiswandi/watercan/internal/household/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// CanStatus returns which household cans are full.
// @Summary Get can status
// @Tags Household
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=CanStatusResponse} "Can status"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Invalid token or wrong kind"
// @Router /api/v1/users/can-status [get]
func (h *HTTPEndpoint) CanStatus(r *router.Request) (any, error) {
	resp, err := h.uc.CanStatus(r.Context())
	if err != nil {
		return nil, err
	}

	return toCanStatusResponse(resp), nil
}

// CanStatusUpdate replaces the can status.
// @Summary Update can status
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CanStatusUpdateRequest true "All three cans"
// @Success 200 {object} router.successResponse{data=CanStatusResponse} "Can status"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Invalid token or wrong kind"
// @Router /api/v1/users/can-status [put]
func (h *HTTPEndpoint) CanStatusUpdate(r *router.Request) (any, error) {
	var req CanStatusUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CanStatusUpdate(r.Context(), usecase.CanStatusUpdateInput{
		Can1Full: req.Can1Full,
		Can2Full: req.Can2Full,
		Can3Full: req.Can3Full,
	})
	if err != nil {
		return nil, err
	}

	return toCanStatusResponse(resp), nil
}
