package inbound

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/identity/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP login and profile handlers for one principal kind.
type HTTPEndpoint struct {
	uc   uc
	kind entity.Kind
}

// OTPSend issues a one-time code for a phone number.
// @Summary Send login code
// @Description Issues a 6-digit code for the phone number and sends it by SMS. A new request replaces any pending code.
// @Tags Identity, OTP
// @Accept json
// @Produce json
// @Param request body OTPSendRequest true "Phone number"
// @Success 202 {object} router.successResponse{data=OTPSendResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Rate limit exceeded"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/users/otp/send [post]
// @Router /api/v1/distributors/otp/send [post]
func (h *HTTPEndpoint) OTPSend(r *router.Request) (any, error) {
	var req OTPSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPSend(r.Context(), usecase.OTPSendInput{
		Kind:       h.kind,
		Identifier: req.Identifier,
	})
	if err != nil {
		return nil, err
	}

	return OTPSendResponse{
		ChallengeID:      resp.ChallengeID,
		ExpiresInSeconds: int64(resp.ExpiresIn.Seconds()),
		Code:             resp.Code,
	}, nil
}

// OTPVerify exchanges a code for a session token.
// @Summary Verify login code
// @Description Verifies the code and returns a session token. First-time callers must supply display_name.
// @Tags Identity, OTP
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=OTPVerifyResponse} "Session issued"
// @Failure 400 {object} router.errorResponse "Validation error or challenge failure" example:{"message":"Verification code is incorrect","reason":"INVALID_CHALLENGE","meta":{"attempts_remaining":4}}
// @Failure 429 {object} router.errorResponse "Rate limit exceeded"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/users/otp/verify [post]
// @Router /api/v1/distributors/otp/verify [post]
func (h *HTTPEndpoint) OTPVerify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPVerify(r.Context(), usecase.OTPVerifyInput{
		Kind:        h.kind,
		Identifier:  req.Identifier,
		Code:        req.Code,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return OTPVerifyResponse{
		Token:     resp.Token,
		Principal: toPrincipalResponse(resp.Principal),
		IsNew:     resp.IsNew,
	}, nil
}

// Profile returns the signed-in principal.
// @Summary Get profile
// @Tags Identity, Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=PrincipalResponse} "Profile"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Invalid token or wrong kind"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Router /api/v1/users/profile [get]
// @Router /api/v1/distributors/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	p, err := h.uc.Profile(r.Context(), usecase.ProfileInput{Kind: h.kind})
	if err != nil {
		return nil, err
	}

	return toPrincipalResponse(p), nil
}

// ProfileUpdate applies a partial profile update.
// @Summary Update profile
// @Description Users may change display_name. Distributors may also change payout_handle (empty clears it) and is_active.
// @Tags Identity, Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} router.successResponse{data=PrincipalResponse} "Updated profile"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Invalid token or wrong kind"
// @Failure 404 {object} router.errorResponse "Account not found"
// @Router /api/v1/users/profile [put]
// @Router /api/v1/distributors/profile [put]
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	p, err := h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		Kind:         h.kind,
		DisplayName:  req.DisplayName,
		PayoutHandle: req.PayoutHandle,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	return toPrincipalResponse(p), nil
}

// ProfileUpdateAvatar replaces the avatar image.
// @Summary Upload avatar
// @Tags Identity, Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "JPEG, PNG or WebP image"
// @Success 200 {object} router.successResponse{data=PrincipalResponse} "Updated profile"
// @Failure 400 {object} router.errorResponse "Invalid file"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Invalid token or wrong kind"
// @Router /api/v1/users/profile/avatar [put]
// @Router /api/v1/distributors/profile/avatar [put]
func (h *HTTPEndpoint) ProfileUpdateAvatar(r *router.Request) (any, error) {
	file, err := r.FormFile("avatar")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	p, err := h.uc.ProfileUpdateAvatar(r.Context(), usecase.ProfileUpdateAvatarInput{
		Kind:        h.kind,
		File:        file,
		ContentType: file.ContentType,
	})
	if err != nil {
		return nil, err
	}

	return toPrincipalResponse(p), nil
}

// DistributorPayout returns what a customer needs to pay a distributor.
// @Summary Distributor payout details
// @Tags Identity, Distributors
// @Produce json
// @Param id path string true "Distributor ID"
// @Success 200 {object} router.successResponse{data=DistributorPayoutResponse} "Payout details"
// @Failure 400 {object} router.errorResponse "Invalid id"
// @Failure 404 {object} router.errorResponse "Distributor not found"
// @Router /api/v1/payouts/{id} [get]
func (h *HTTPEndpoint) DistributorPayout(r *router.Request) (any, error) {
	id, err := r.PathID("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.DistributorPayout(r.Context(), usecase.DistributorPayoutInput{ID: id})
	if err != nil {
		return nil, err
	}

	return DistributorPayoutResponse{
		DistributorID: strconv.FormatInt(resp.DistributorID, 10),
		Name:          resp.Name,
		PayoutHandle:  resp.PayoutHandle,
	}, nil
}

// DistributorList lists active distributors.
// @Summary List distributors
// @Tags Identity, Distributors
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starts at 1"
// @Param size query int false "Page size, max 100"
// @Success 200 {object} router.successResponse{data=DistributorListResponse} "Distributors"
// @Failure 400 {object} router.errorResponse "Invalid query"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 403 {object} router.errorResponse "Invalid token or wrong kind"
// @Router /api/v1/users/distributors [get]
func (h *HTTPEndpoint) DistributorList(r *router.Request) (any, error) {
	page, err := r.QueryInt32("page")
	if err != nil {
		return nil, err
	}
	size, err := r.QueryInt32("size")
	if err != nil {
		return nil, err
	}
	if page < 0 || size < 0 {
		return nil, goerror.NewInvalidFormat("page and size must not be negative")
	}

	resp, err := h.uc.DistributorList(r.Context(), usecase.DistributorListInput{Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	return DistributorListResponse{
		Distributors: lo.Map(resp.Distributors, func(p entity.Principal, _ int) DistributorItem {
			return DistributorItem{
				ID:          strconv.FormatInt(p.ID, 10),
				DisplayName: p.DisplayName,
				AvatarURL:   p.AvatarURL,
			}
		}),
		page:  resp.Page,
		size:  resp.Size,
		total: resp.Total,
	}, nil
}
