// Package auth issues and verifies bearer tokens and owns the login flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleBusiness   Role = "BUSINESS"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Identity is the authenticated caller resolved once per request.
type Identity struct {
	Subject             string `json:"sub"`
	BusinessID          string `json:"business_id,omitempty"`
	Role                Role   `json:"role"`
	Email               string `json:"email"`
	ForcePasswordChange bool   `json:"force_password_change,omitempty"`
}

type claims struct {
	BusinessID          string `json:"businessId,omitempty"`
	Role                Role   `json:"role"`
	Email               string `json:"email"`
	ForcePasswordChange bool   `json:"forcePasswordChange,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) Issue(id Identity) (string, error) {
	now := i.now()
	c := claims{
		BusinessID:          id.BusinessID,
		Role:                id.Role,
		Email:               id.Email,
		ForcePasswordChange: id.ForcePasswordChange,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Parse verifies signature and expiry. Every failure is Unauthorized.
func (i *Issuer) Parse(token string) (Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return i.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperr.Unauthorized("token expired")
		}
		return Identity{}, apperr.Unauthorized("invalid token")
	}
	if c.Subject == "" || (c.Role != RoleBusiness && c.Role != RoleSuperAdmin) {
		return Identity{}, apperr.Unauthorized("invalid token")
	}
	if c.Role == RoleBusiness && c.BusinessID == "" {
		return Identity{}, apperr.Unauthorized("invalid token")
	}
	return Identity{
		Subject:             c.Subject,
		BusinessID:          c.BusinessID,
		Role:                c.Role,
		Email:               c.Email,
		ForcePasswordChange: c.ForcePasswordChange,
	}, nil
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
