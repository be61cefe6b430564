package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erazemk/mechatrack/internal/errs"
)

// Messages returned when a token is rejected.
const (
	MsgTokenMissing = "Token is missing"
	MsgTokenInvalid = "Token is invalid"
	MsgTokenExpired = "Token has expired"
	MsgTokenRevoked = "Token has been revoked"
)

// TokenExpiry is the default token lifetime.
const TokenExpiry = 24 * time.Hour

// Claims represents the JWT claims. The subject is the user id as a string.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing subject %q: %w", c.Subject, err)
	}
	return id, nil
}

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	Secret  string
	Issuer  string
	TTL     time.Duration
	Revoked RevocationChecker
	Now     func() time.Time
}

func (t *Tokens) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func (t *Tokens) ttl() time.Duration {
	if t.TTL <= 0 {
		return TokenExpiry
	}
	return t.TTL
}

// Issue creates a signed token for userID with a unique JTI.
func (t *Tokens) Issue(userID int64) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    t.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return signed, claims, nil
}

// Verify parses and validates a token, returning its claims. Every
// rejection is an unauthorized error.
func (t *Tokens) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, errs.Unauthorized(MsgTokenMissing)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(t.Secret), nil
	}, opts...)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, errs.Wrap(errs.CodeUnauthorized, err, MsgTokenExpired)
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeUnauthorized, err, MsgTokenInvalid)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errs.Unauthorized(MsgTokenInvalid)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, errs.Wrap(errs.CodeUnauthorized, err, MsgTokenInvalid)
	}

	if t.Revoked != nil && claims.ID != "" {
		revoked, err := t.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errs.Unauthorized(MsgTokenRevoked)
		}
	}

	return claims, nil
}
