package jwt

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/watercan/internal/pkg/clock"
	"github.com/shandysiswandi/watercan/internal/pkg/uid"
)

// Principal kinds a session may be issued for.
const (
	KindUser        = "user"
	KindDistributor = "distributor"
)

const minSecretLen = 64

var (
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 signing key must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token has expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
	ErrUnknownKind          = errors.New("jwt: unknown principal kind")
)

// JWT issues session tokens after a successful OTP verification and checks
// them on every authenticated request.
type JWT interface {
	Generate(principalID int64, identifier, kind string) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clock.Clocker
	UUID      uid.StringID // token id (jti)
}

// Claims is the session payload. Subject repeats PrincipalID as a string so
// generic JWT tooling can still identify the holder.
type Claims struct {
	jwt.RegisteredClaims
	PrincipalID int64  `json:"principal_id,string"`
	Identifier  string `json:"identifier"`
	Kind        string `json:"kind"`
}

// Validate runs after the registered claims pass. It rejects tokens whose
// payload could not have been issued by Generate.
func (c Claims) Validate() error {
	if c.Kind != KindUser && c.Kind != KindDistributor {
		return ErrUnknownKind
	}
	if c.PrincipalID <= 0 || c.Subject != strconv.FormatInt(c.PrincipalID, 10) {
		return ErrInvalidToken
	}
	return nil
}

type authContextKey struct{}

// GetAuth returns the claims of the authenticated caller, or nil on public
// routes.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authContextKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authContextKey{}, clm)
}
