package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned for a correctly signed token whose expiry has
	// passed. Callers treat this as a routine reissue trigger, never as
	// tampering.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid is returned for malformed, mis-signed, or subject-less
	// tokens. Unlike ErrExpired it forces re-authentication.
	ErrInvalid = errors.New("token: invalid")
)

// Identity is the outcome of a successful verification. It is the only type
// in this package whose UserID may be trusted for authorization.
type Identity struct {
	UserID string
}

// DecodedClaims holds claims extracted without signature verification.
// It is deliberately a distinct type from Identity: decoded claims are good
// for deriving a cache lookup key and nothing else.
type DecodedClaims struct {
	Subject  string
	ID       string
	IssuedAt time.Time
}

// Verifier validates tokens minted by the matching Issuer.
type Verifier struct {
	authSecret   []byte
	accessSecret []byte
}

// NewVerifier creates a Verifier from the two signing secrets.
func NewVerifier(authSecret, accessSecret string) (*Verifier, error) {
	if authSecret == "" {
		return nil, errors.New("token: auth token secret is not set")
	}
	if accessSecret == "" {
		return nil, errors.New("token: access token secret is not set")
	}
	return &Verifier{
		authSecret:   []byte(authSecret),
		accessSecret: []byte(accessSecret),
	}, nil
}

// VerifyAuthToken checks the signature of an auth token. Auth tokens carry
// no expiry claim, so ErrExpired is only possible if a future issuer adds
// one; today every failure is ErrInvalid.
func (v *Verifier) VerifyAuthToken(raw string) (Identity, error) {
	return verify(raw, v.authSecret)
}

// VerifyAccessToken checks the signature and expiry of an access token.
// An expired but well-signed token yields ErrExpired, distinct from
// ErrInvalid, so callers can reissue silently instead of rejecting.
func (v *Verifier) VerifyAccessToken(raw string) (Identity, error) {
	return verify(raw, v.accessSecret)
}

func verify(raw string, secret []byte) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpired
		}
		return Identity{}, ErrInvalid
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return Identity{}, ErrInvalid
	}
	return Identity{UserID: claims.Subject}, nil
}

// Decode extracts claims from raw without verifying the signature. The
// result must never be used as an authorization decision on its own; it
// exists so the request gate can derive the cache key cheaply before the
// cache membership check settles validity.
func Decode(raw string) (DecodedClaims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, &jwt.RegisteredClaims{})
	if err != nil {
		return DecodedClaims{}, ErrInvalid
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return DecodedClaims{}, ErrInvalid
	}
	dc := DecodedClaims{
		Subject: claims.Subject,
		ID:      claims.ID,
	}
	if claims.IssuedAt != nil {
		dc.IssuedAt = claims.IssuedAt.Time
	}
	return dc, nil
}
