package inbound

import (
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/watercan/internal/identity/entity"
)

type OTPSendRequest struct {
	Identifier string `json:"identifier"`
}

type OTPSendResponse struct {
	ChallengeID      string `json:"challenge_id"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
	Code             string `json:"code,omitempty"`
}

func (OTPSendResponse) StatusCode() int {
	return http.StatusAccepted
}

func (OTPSendResponse) Message() string {
	return "Verification code sent."
}

type OTPVerifyRequest struct {
	Identifier  string `json:"identifier"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

type OTPVerifyResponse struct {
	Token     string            `json:"token"`
	Principal PrincipalResponse `json:"principal"`
	IsNew     bool              `json:"is_new"`
}

type PrincipalResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Phone        string    `json:"phone"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PayoutHandle *string   `json:"payout_handle,omitempty"`
	IsActive     *bool     `json:"is_active,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPrincipalResponse(p *entity.Principal) PrincipalResponse {
	resp := PrincipalResponse{
		ID:          strconv.FormatInt(p.ID, 10),
		Kind:        p.Kind.String(),
		Phone:       p.Phone,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.Kind == entity.KindDistributor {
		resp.PayoutHandle = lo.ToPtr(p.PayoutHandle)
		resp.IsActive = lo.ToPtr(p.IsActive)
	}

	return resp
}

// ProfileUpdateRequest accepts a partial update. The phone is not part of it,
// so a request that tries to change it fails body decoding.
type ProfileUpdateRequest struct {
	DisplayName  *string `json:"display_name"`
	PayoutHandle *string `json:"payout_handle"`
	IsActive     *bool   `json:"is_active"`
}

type DistributorPayoutResponse struct {
	DistributorID string `json:"distributor_id"`
	Name          string `json:"name"`
	PayoutHandle  string `json:"payout_handle"`
}

type DistributorItem struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type DistributorListResponse struct {
	Distributors []DistributorItem `json:"distributors"`

	page  int32
	size  int32
	total int64
}

func (r DistributorListResponse) Meta() map[string]any {
	return map[string]any{
		"page":  r.page,
		"size":  r.size,
		"total": r.total,
	}
}
