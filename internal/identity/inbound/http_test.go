package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/identity/usecase"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/jwt"
	"github.com/shandysiswandi/watercan/internal/pkg/router"
)

type fakeUsecase struct {
	mu        sync.Mutex
	sendIn    []usecase.OTPSendInput
	verifyIn  []usecase.OTPVerifyInput
	verifyErr error
}

func (f *fakeUsecase) OTPSend(_ context.Context, in usecase.OTPSendInput) (*usecase.OTPSendOutput, error) {
	f.mu.Lock()
	f.sendIn = append(f.sendIn, in)
	f.mu.Unlock()
	return &usecase.OTPSendOutput{ChallengeID: "chal-1", ExpiresIn: 5 * time.Minute}, nil
}

func (f *fakeUsecase) OTPVerify(_ context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error) {
	f.mu.Lock()
	f.verifyIn = append(f.verifyIn, in)
	f.mu.Unlock()
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &usecase.OTPVerifyOutput{
		Token:     "tok",
		Principal: &entity.Principal{ID: 1764000000000000001, Kind: in.Kind, Phone: in.Identifier, DisplayName: "Asha", IsActive: true},
		IsNew:     true,
	}, nil
}

func (f *fakeUsecase) Profile(ctx context.Context, in usecase.ProfileInput) (*entity.Principal, error) {
	clm := jwt.GetAuth(ctx)
	return &entity.Principal{ID: clm.PrincipalID, Kind: in.Kind, Phone: clm.Identifier}, nil
}

func (f *fakeUsecase) ProfileUpdate(context.Context, usecase.ProfileUpdateInput) (*entity.Principal, error) {
	return nil, errors.New("not used")
}

func (f *fakeUsecase) ProfileUpdateAvatar(context.Context, usecase.ProfileUpdateAvatarInput) (*entity.Principal, error) {
	return nil, errors.New("not used")
}

func (f *fakeUsecase) DistributorPayout(_ context.Context, in usecase.DistributorPayoutInput) (*entity.DistributorPayout, error) {
	if in.ID != 8 {
		return nil, goerror.NewBusiness("Distributor not found", goerror.CodeNotFound)
	}
	return &entity.DistributorPayout{DistributorID: 8, Name: "Ravi", PayoutHandle: "ravi@okbank"}, nil
}

func (f *fakeUsecase) DistributorList(_ context.Context, in usecase.DistributorListInput) (*usecase.DistributorListOutput, error) {
	return &usecase.DistributorListOutput{
		Distributors: []entity.Principal{{ID: 8, Kind: entity.KindDistributor, DisplayName: "Ravi"}},
		Page:         max(in.Page, 1),
		Size:         max(in.Size, 20),
		Total:        1,
	}, nil
}

type fakeJWT struct{}

func (fakeJWT) Generate(int64, string, string) (string, error) { return "", errors.New("not used") }

func (fakeJWT) Verify(token string) (jwt.Claims, error) {
	if token != "user-token" {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{PrincipalID: 7, Identifier: "9876543210", Kind: "user"}, nil
}

type staticID string

func (s staticID) Generate() string { return string(s) }

func newTestServer(t *testing.T) (*router.Router, *fakeUsecase) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  env: test\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	r := router.NewRouter(router.Config{
		Config:       cfg,
		UUID:         staticID("cid"),
		JWT:          fakeJWT{},
		Instrument:   instrument.NewNoop(),
		PublicRoutes: PublicRoutes,
	})
	f := &fakeUsecase{}
	RegisterHTTPEndpoint(r, f, Limits{})
	return r, f
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v; body=%s", err, rec.Body.String())
	}
	return env
}

func TestOTPRoutes(t *testing.T) {
	t.Run("send is accepted per kind", func(t *testing.T) {
		r, f := newTestServer(t)

		rec := do(r, http.MethodPost, "/api/v1/distributors/otp/send", `{"identifier":"9876543210"}`, "")

		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
		}
		var data OTPSendResponse
		if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data.ChallengeID != "chal-1" || data.ExpiresInSeconds != 300 {
			t.Fatalf("data = %+v", data)
		}
		if f.sendIn[0].Kind != entity.KindDistributor {
			t.Fatalf("kind = %q", f.sendIn[0].Kind)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		r, _ := newTestServer(t)

		rec := do(r, http.MethodPost, "/api/v1/users/otp/send", `{"identifier":"9876543210","kind":"distributor"}`, "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("verify returns string id", func(t *testing.T) {
		r, _ := newTestServer(t)

		rec := do(r, http.MethodPost, "/api/v1/users/otp/verify", `{"identifier":"9876543210","code":"042917","display_name":"Asha"}`, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
		}
		var data struct {
			Token     string         `json:"token"`
			IsNew     bool           `json:"is_new"`
			Principal map[string]any `json:"principal"`
		}
		if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data.Principal["id"] != "1764000000000000001" || !data.IsNew || data.Token != "tok" {
			t.Fatalf("data = %+v", data)
		}
		if _, ok := data.Principal["payout_handle"]; ok {
			t.Fatal("user principal exposes payout_handle")
		}
	})

	t.Run("verify error carries reason and meta", func(t *testing.T) {
		r, f := newTestServer(t)
		f.verifyErr = goerror.NewBusinessReason("Display name is required", goerror.CodeInvalidInput,
			goerror.ReasonDisplayNameRequired, map[string]any{"requires_display_name": true})

		rec := do(r, http.MethodPost, "/api/v1/users/otp/verify", `{"identifier":"9876543210","code":"042917"}`, "")

		env := decode(t, rec)
		if rec.Code != http.StatusBadRequest || env.Reason != goerror.ReasonDisplayNameRequired || env.Meta["requires_display_name"] != true {
			t.Fatalf("status = %d, env = %+v", rec.Code, env)
		}
	})
}

func TestProfileRoute(t *testing.T) {
	r, _ := newTestServer(t)

	if rec := do(r, http.MethodGet, "/api/v1/users/profile", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	rec := do(r, http.MethodGet, "/api/v1/users/profile", "", "user-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	var data PrincipalResponse
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.ID != "7" || data.Kind != "user" {
		t.Fatalf("data = %+v", data)
	}
}

func TestDirectoryRoutes(t *testing.T) {
	r, _ := newTestServer(t)

	rec := do(r, http.MethodGet, "/api/v1/payouts/8", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("payout status = %d, body=%s", rec.Code, rec.Body.String())
	}

	if rec := do(r, http.MethodGet, "/api/v1/payouts/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/api/v1/payouts/9", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown status = %d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/api/v1/users/distributors?page=1&size=5", "", "user-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if env := decode(t, rec); env.Meta["total"] != float64(1) || env.Meta["size"] != float64(5) {
		t.Fatalf("meta = %v", env.Meta)
	}
}
