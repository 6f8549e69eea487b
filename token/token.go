// Package token issues and verifies the signed credentials that identify a
// session. Two token kinds exist: the long-lived auth token, whose validity
// is controlled entirely by the token cache, and the short-lived access
// token, which expires on its own after AccessTokenTTL.
//
// The two kinds are signed with independent secrets held by separate signer
// instances, so an access token can never verify as an auth token or vice
// versa.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenTTL is the lifetime of an access token.
const AccessTokenTTL = 15 * time.Minute

// Issuer mints signed auth and access tokens. Issuance is pure: persisting
// an auth token into the cache is the caller's job.
type Issuer struct {
	authSecret   []byte
	accessSecret []byte
	now          func() time.Time
}

// NewIssuer creates an Issuer from the two signing secrets. Either secret
// being empty is a configuration error and should abort startup.
func NewIssuer(authSecret, accessSecret string) (*Issuer, error) {
	if authSecret == "" {
		return nil, errors.New("token: auth token secret is not set")
	}
	if accessSecret == "" {
		return nil, errors.New("token: access token secret is not set")
	}
	return &Issuer{
		authSecret:   []byte(authSecret),
		accessSecret: []byte(accessSecret),
		now:          time.Now,
	}, nil
}

// IssueAuthToken mints a long-lived auth token for userID. The token carries
// no expiry claim: it stays structurally valid until a later sign-in or
// sign-out overwrites or removes the cache entry that anchors it.
func (i *Issuer) IssueAuthToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(i.now()),
		Subject:  userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.authSecret)
	if err != nil {
		return "", fmt.Errorf("signing auth token: %w", err)
	}
	return signed, nil
}

// IssueAccessToken mints a short-lived access token for userID, expiring
// AccessTokenTTL after issuance.
func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		Subject:   userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}
