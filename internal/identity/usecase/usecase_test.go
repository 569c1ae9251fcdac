package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/watercan/internal/identity/entity"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"github.com/shandysiswandi/watercan/internal/pkg/config"
	"github.com/shandysiswandi/watercan/internal/pkg/goerror"
	"github.com/shandysiswandi/watercan/internal/pkg/hash"
	"github.com/shandysiswandi/watercan/internal/pkg/instrument"
	"github.com/shandysiswandi/watercan/internal/pkg/jwt"
	"github.com/shandysiswandi/watercan/internal/pkg/ratelimit"
	"github.com/shandysiswandi/watercan/internal/pkg/storage"
	"github.com/shandysiswandi/watercan/internal/pkg/validator"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type seqString struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (s *seqString) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

type seqNumber struct {
	mu sync.Mutex
	n  int64
}

func (s *seqNumber) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return 1000 + s.n
}

type fixedCode struct {
	code string
	err  error
}

func (f *fixedCode) Generate() (string, error) {
	return f.code, f.err
}

type fakeLimiter struct {
	mu      sync.Mutex
	deny    bool
	err     error
	keys    []string
	retryIn time.Duration
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (ratelimit.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.keys = append(f.keys, key)
	if f.err != nil {
		return ratelimit.Info{}, f.err
	}
	if f.deny {
		return ratelimit.Info{Allowed: false, Limit: 5, RetryAfter: f.retryIn}, nil
	}
	return ratelimit.Info{Allowed: true, Limit: 5, Remaining: 4}, nil
}

type fakeMessaging struct {
	mu     sync.Mutex
	err    error
	events []OTPIssuedEvent
}

func (f *fakeMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, msg)
	return nil
}

func (f *fakeMessaging) last() OTPIssuedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type fakeChallengeStore struct {
	mu      sync.Mutex
	items   map[string]entity.Challenge
	getErr  error
	putErr  error
	deletes int
	// afterGet runs once, right after the next Get returns its record.
	afterGet func()
}

func newFakeChallengeStore() *fakeChallengeStore {
	return &fakeChallengeStore{items: map[string]entity.Challenge{}}
}

func (f *fakeChallengeStore) Put(_ context.Context, key string, c entity.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.items[key] = c
	return nil
}

func (f *fakeChallengeStore) Get(_ context.Context, key string) (*entity.Challenge, error) {
	f.mu.Lock()
	hook := f.afterGet
	f.afterGet = nil
	c, ok := f.items[key]
	getErr := f.getErr
	f.mu.Unlock()

	if getErr != nil {
		return nil, getErr
	}
	if !ok {
		return nil, goerror.ErrNotFound
	}
	if hook != nil {
		hook()
	}
	return &c, nil
}

func (f *fakeChallengeStore) IncrementAttempts(_ context.Context, key, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[key]
	if !ok || c.ID != id {
		return 0, goerror.ErrNotFound
	}
	c.Attempts++
	f.items[key] = c
	return c.Attempts, nil
}

func (f *fakeChallengeStore) Delete(_ context.Context, key, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if c, ok := f.items[key]; !ok || c.ID != id {
		return false, nil
	}
	delete(f.items, key)
	return true, nil
}

func (f *fakeChallengeStore) Sweep(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k, c := range f.items {
		if c.IsExpired(now) {
			delete(f.items, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeChallengeStore) get(key string) (entity.Challenge, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[key]
	return c, ok
}

// fakeRepoDB enforces unique phones per kind like the real tables.
type fakeRepoDB struct {
	mu         sync.Mutex
	principals map[entity.Kind]map[int64]entity.Principal
	err        error
	creates    int
	// beforeCreate runs before the uniqueness check, used to force races.
	beforeCreate func()
}

func newFakeRepoDB() *fakeRepoDB {
	return &fakeRepoDB{principals: map[entity.Kind]map[int64]entity.Principal{
		entity.KindUser:        {},
		entity.KindDistributor: {},
	}}
}

func (f *fakeRepoDB) seed(p entity.Principal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.principals[p.Kind][p.ID] = p
}

func (f *fakeRepoDB) count(kind entity.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.principals[kind])
}

func (f *fakeRepoDB) GetPrincipalByPhone(_ context.Context, kind entity.Kind, phone string) (*entity.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.principals[kind] {
		if p.Phone == phone {
			return &p, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeRepoDB) GetPrincipalByID(_ context.Context, kind entity.Kind, id int64) (*entity.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.principals[kind][id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &p, nil
}

func (f *fakeRepoDB) CreatePrincipal(_ context.Context, in entity.NewPrincipal) (*entity.Principal, error) {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.principals[in.Kind] {
		if p.Phone == in.Phone {
			return nil, goerror.ErrConflict
		}
	}

	f.creates++
	p := entity.Principal{
		ID:          in.ID,
		Kind:        in.Kind,
		Phone:       in.Phone,
		DisplayName: in.DisplayName,
		IsActive:    true,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	f.principals[in.Kind][in.ID] = p
	return &p, nil
}

func (f *fakeRepoDB) UpdatePrincipal(_ context.Context, kind entity.Kind, id int64, patch entity.PrincipalPatch) (*entity.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.principals[kind][id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.PayoutHandle != nil {
		p.PayoutHandle = *patch.PayoutHandle
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	f.principals[kind][id] = p
	return &p, nil
}

func (f *fakeRepoDB) UpdatePrincipalAvatar(_ context.Context, kind entity.Kind, id int64, avatarURL string) (*entity.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.principals[kind][id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	p.AvatarURL = avatarURL
	f.principals[kind][id] = p
	return &p, nil
}

func (f *fakeRepoDB) GetDistributorPayout(_ context.Context, id int64) (*entity.DistributorPayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.principals[entity.KindDistributor][id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &entity.DistributorPayout{DistributorID: p.ID, Name: p.DisplayName, PayoutHandle: p.PayoutHandle}, nil
}

func (f *fakeRepoDB) ListActiveDistributors(_ context.Context, flt entity.DistributorListFilter) ([]entity.Principal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []entity.Principal
	for _, p := range f.principals[entity.KindDistributor] {
		if p.IsActive {
			out = append(out, p)
		}
	}
	total := int64(len(out))
	start := min(int(flt.Offset()), len(out))
	end := min(start+int(flt.Size), len(out))
	return out[start:end], total, nil
}

type testDeps struct {
	uc        *Usecase
	db        *fakeRepoDB
	store     *fakeChallengeStore
	mq        *fakeMessaging
	limiter   *fakeLimiter
	code      *fixedCode
	clock     *clock.Frozen
	jwt       *jwt.Symmetric
	storage   *storage.Memory
	hmac      *hash.HMACSHA256
	uuid      *seqString
	principal *seqNumber
}

const baseTestConfig = `
modules:
  identity:
    avatar_bucket: avatars
    avatar_max_size_bytes: 16
    otp:
      window_seconds: 300
      max_attempts: 5
      echo_code: %t
storage:
  public_base_url: http://cdn.local
`

func newTestUsecase(t *testing.T, echo bool) *testDeps {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", fmt.Appendf(nil, baseTestConfig, echo))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	h, err := hash.NewHMACSHA256("otp-secret")
	if err != nil {
		t.Fatalf("hmac: %v", err)
	}

	d := &testDeps{
		db:        newFakeRepoDB(),
		store:     newFakeChallengeStore(),
		mq:        &fakeMessaging{},
		limiter:   &fakeLimiter{},
		code:      &fixedCode{code: "042917"},
		clock:     clock.NewFrozen(testNow),
		storage:   storage.NewMemory(),
		hmac:      h,
		uuid:      &seqString{prefix: "uuid"},
		principal: &seqNumber{},
	}

	d.jwt, err = jwt.NewHS512(jwt.Config{
		Secret:    []byte(testSecret),
		Issuer:    "watercan",
		Audiences: []string{"watercan-app"},
		TTL:       30 * 24 * time.Hour,
		Clock:     d.clock,
		UUID:      &seqString{prefix: "jti"},
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	d.uc = New(Dependency{
		RepoDB:            d.db,
		RepoChallenge:     d.store,
		RepoMessaging:     d.mq,
		IdentifierLimiter: d.limiter,
		Validator:         v,
		Config:            cfg,
		Storage:           d.storage,
		HMAC:              d.hmac,
		Code:              d.code,
		UID:               d.principal,
		UUID:              d.uuid,
		Clock:             d.clock,
		JWT:               d.jwt,
		Instrument:        instrument.NewNoop(),
	})

	return d
}

func authCtx(kind entity.Kind, id int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{PrincipalID: id, Identifier: "9876543210", Kind: kind.String()})
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()

	if got := goerror.ReasonOf(err); got != reason {
		t.Fatalf("reason = %q (err %v), want %q", got, err, reason)
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error %v is not a goerror", err)
	}
	if gerr.StatusCode() != status {
		t.Fatalf("status = %d (err %v), want %d", gerr.StatusCode(), err, status)
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	long := strings.Repeat("é", 300)

	tests := []struct {
		in   string
		want string
	}{
		{in: "  Asha  ", want: "Asha"},
		{in: "   ", want: ""},
		{in: long, want: strings.Repeat("é", 255)},
	}

	for _, tt := range tests {
		if got := normalizeDisplayName(tt.in); got != tt.want {
			t.Errorf("normalizeDisplayName() = %d runes %q, want %d runes", len([]rune(got)), got, len([]rune(tt.want)))
		}
	}
}
