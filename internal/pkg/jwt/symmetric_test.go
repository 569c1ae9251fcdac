package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
)

type staticID string

func (s staticID) Generate() string { return string(s) }

func newTestSymmetric(t *testing.T, secret string, clk clock.Clocker) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:    []byte(secret),
		Issuer:    "watercan",
		Audiences: []string{"watercan-app"},
		TTL:       30 * 24 * time.Hour,
		Clock:     clk,
		UUID:      staticID("0190b6f5-7a39-7c4e-9d8e-5b1f3a2c4d6e"),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return s
}

var testSecret = strings.Repeat("k", 64)

func TestSymmetric_GenerateVerify(t *testing.T) {
	// Arrange
	clk := clock.NewFrozen(time.Now().Truncate(time.Second))
	s := newTestSymmetric(t, testSecret, clk)

	// Act
	token, err := s.Generate(1234567890123, "9876543210", "distributor")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	claims, err := s.Verify(token)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.PrincipalID != 1234567890123 || claims.Identifier != "9876543210" || claims.Kind != "distributor" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "1234567890123" {
		t.Fatalf("Subject = %q", claims.Subject)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 30*24*time.Hour {
		t.Fatalf("lifetime = %s, want 720h", got)
	}
}

func TestSymmetric_VerifyExpired(t *testing.T) {
	clk := clock.NewFrozen(time.Now().Truncate(time.Second))
	s := newTestSymmetric(t, testSecret, clk)

	token, err := s.Generate(1, "9876543210", "user")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	clk.Advance(30*24*time.Hour + time.Minute)

	if _, err := s.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestSymmetric_VerifyWrongSecret(t *testing.T) {
	clk := clock.NewFrozen(time.Now().Truncate(time.Second))
	issuer := newTestSymmetric(t, testSecret, clk)
	other := newTestSymmetric(t, strings.Repeat("x", 64), clk)

	token, err := issuer.Generate(1, "9876543210", "user")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("other secret: Verify() error = %v, want ErrInvalidToken", err)
	}
	if _, err := issuer.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered: Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestNewHS512_ShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short"), Clock: clock.New(), UUID: staticID("x")})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("error = %v, want ErrSigningKeyTooShort", err)
	}
}

func TestSymmetric_GenerateUnknownKind(t *testing.T) {
	s := newTestSymmetric(t, testSecret, clock.New())

	if _, err := s.Generate(1, "9876543210", "admin"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Generate() error = %v, want ErrUnknownKind", err)
	}
}

func TestSymmetric_VerifyRejectsForeignPayload(t *testing.T) {
	clk := clock.NewFrozen(time.Now().Truncate(time.Second))
	s := newTestSymmetric(t, testSecret, clk)

	forge := func(c Claims) string {
		t.Helper()
		now := clk.Now()
		c.RegisteredClaims = libJWT.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    "watercan",
			Audience:  []string{"watercan-app"},
			IssuedAt:  libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(time.Hour)),
		}
		token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS512, c).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	tests := []struct {
		name   string
		claims Claims
		want   error
	}{
		{name: "admin kind", claims: Claims{PrincipalID: 5, Kind: "admin", RegisteredClaims: libJWT.RegisteredClaims{Subject: "5"}}, want: ErrUnknownKind},
		{name: "subject mismatch", claims: Claims{PrincipalID: 5, Kind: KindUser, RegisteredClaims: libJWT.RegisteredClaims{Subject: "6"}}, want: ErrInvalidToken},
		{name: "missing principal", claims: Claims{Kind: KindUser, RegisteredClaims: libJWT.RegisteredClaims{Subject: "0"}}, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Verify(forge(tt.claims)); !errors.Is(err, tt.want) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSymmetric_VerifyWrongAlgorithm(t *testing.T) {
	s := newTestSymmetric(t, testSecret, clock.New())

	token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS256, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{Subject: "1", Issuer: "watercan", Audience: []string{"watercan-app"}},
		PrincipalID:      1,
		Kind:             KindUser,
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestContextAuth(t *testing.T) {
	if GetAuth(t.Context()) != nil {
		t.Fatal("empty context must carry no claims")
	}

	ctx := SetAuth(t.Context(), Claims{PrincipalID: 9, Kind: KindDistributor})
	if c := GetAuth(ctx); c == nil || c.PrincipalID != 9 || c.Kind != KindDistributor {
		t.Fatalf("GetAuth() = %+v", c)
	}
}
