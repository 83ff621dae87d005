// Package auth mints and verifies bearer credentials. Tokens are standard
// HS256 JWTs, but the signing key is not a static server secret: it is derived
// from a per-(subject, device) session secret held in the session store, so
// deleting that secret revokes every credential derived from it. No token
// table, no blacklist.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slicelab/pizzeria/internal/api/session"
	"github.com/slicelab/pizzeria/pkg/cryptox"
	"github.com/slicelab/pizzeria/pkg/idx"
)

// DefaultSessionTTL is the credential validity window.
const DefaultSessionTTL = 5 * time.Hour

var (
	ErrMalformedToken = errors.New("auth: malformed token")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrSessionRevoked = errors.New("auth: session revoked or unknown")
	ErrBadSignature   = errors.New("auth: invalid signature")
	ErrSessionPersist = errors.New("auth: session persist failed")
)

// IsRejection reports whether err is one of the four client-side verification
// failures, as opposed to an infrastructure error (session.ErrUnavailable).
// The auth gate collapses rejections into one generic response; infrastructure
// errors must surface as server errors instead.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSessionRevoked) ||
		errors.Is(err, ErrBadSignature)
}

// SessionStore is the slice of the session store the token service needs.
type SessionStore interface {
	Put(ctx context.Context, subject, device, secret string, expiresAt time.Time) error
	Get(ctx context.Context, subject, device string) (string, error)
	Delete(ctx context.Context, subject, device string) error
}

// TokenService is stateless: every verification re-derives the signing key
// from whatever secret is currently live in the session store.
type TokenService struct {
	Sessions SessionStore
	TTL      time.Duration // zero means DefaultSessionTTL

	// Now is an optional clock override for tests.
	Now func() time.Time
}

func (s *TokenService) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// signingKey derives the HMAC key for a credential. Binding the expiry into
// the key means a token cannot outlive its own exp claim even if the claim
// were tampered with.
func signingKey(secret string, exp int64) []byte {
	return []byte(secret + "_" + strconv.FormatInt(exp, 10))
}

// Issue mints a credential for the given identity, bound to a freshly
// generated device ID and session secret. The secret is persisted with an
// absolute expiry equal to the credential's exp claim.
func (s *TokenService) Issue(ctx context.Context, subject, displayName string, tenant int64) (string, Claims, error) {
	secret, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", Claims{}, fmt.Errorf("auth: generate session secret: %w", err)
	}

	now := s.clock()
	expiresAt := now.Add(s.ttl()).Truncate(time.Second)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SubjectID:   subject,
		DisplayName: displayName,
		TenantID:    tenant,
		DeviceID:    idx.New().String(),
	}

	if err := s.Sessions.Put(ctx, subject, claims.DeviceID, secret, expiresAt); err != nil {
		return "", Claims{}, fmt.Errorf("%w: %s", ErrSessionPersist, err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(signingKey(secret, expiresAt.Unix()))
	if err != nil {
		return "", Claims{}, fmt.Errorf("auth: sign credential: %w", err)
	}

	return token, claims, nil
}

// Verify checks a raw credential and returns its claims. Checks run in a
// fixed order: structure, expiry, session liveness, signature. Session store
// transport failures pass through as session.ErrUnavailable so callers can
// tell infrastructure trouble apart from a bad token.
func (s *TokenService) Verify(ctx context.Context, raw string) (Claims, error) {
	claims, err := decodeUnverified(raw)
	if err != nil {
		return Claims{}, err
	}

	if claims.ExpiresAt == nil || claims.SubjectID == "" || claims.DeviceID == "" {
		return Claims{}, ErrMalformedToken
	}

	if claims.ExpiresAt.Before(s.clock()) {
		return Claims{}, ErrTokenExpired
	}

	secret, err := s.Sessions.Get(ctx, claims.SubjectID, claims.DeviceID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Claims{}, ErrSessionRevoked
		}
		return Claims{}, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(), // expiry already checked above
	)
	_, err = parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return signingKey(secret, claims.Expiry()), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Claims{}, ErrBadSignature
		}
		return Claims{}, fmt.Errorf("%w: %s", ErrMalformedToken, err)
	}

	return claims, nil
}

// UnverifiedClaims decodes the payload without checking the signature or the
// session. It must never be used as an authorization decision on its own;
// it exists for lightweight identity extraction after the gate has already
// verified the request.
func (s *TokenService) UnverifiedClaims(raw string) (Claims, error) {
	return decodeUnverified(raw)
}

// Revoke deletes the session secret for (subject, device), invalidating every
// credential bound to it. Logout is just this.
func (s *TokenService) Revoke(ctx context.Context, subject, device string) error {
	return s.Sessions.Delete(ctx, subject, device)
}

func decodeUnverified(raw string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %s", ErrMalformedToken, err)
	}
	return claims, nil
}
