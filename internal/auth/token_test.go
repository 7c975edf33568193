package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	in := Identity{Subject: "b1", BusinessID: "b1", Role: RoleBusiness, Email: "a@b.co", ForcePasswordChange: true}

	tok, err := iss.Issue(in)
	require.NoError(t, err)
	got, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestParseRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	iss := &Issuer{Secret: []byte("secret"), TTL: time.Hour, Now: func() time.Time { return now }}
	tok, err := iss.Issue(Identity{Subject: "a1", Role: RoleSuperAdmin, Email: "root@duka.co"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := &Issuer{Secret: iss.Secret, Now: func() time.Time { return now.Add(2 * time.Hour) }}
		_, err := later.Parse(tok)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})
	t.Run("wrong secret", func(t *testing.T) {
		other := &Issuer{Secret: []byte("other"), Now: iss.Now}
		_, err := other.Parse(tok)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not.a.token")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
	t.Run("unknown role", func(t *testing.T) {
		c := claims{Role: "GUEST", RegisteredClaims: jwt.RegisteredClaims{
			Subject: "x", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(iss.Secret)
		require.NoError(t, err)
		_, err = iss.Parse(s)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
	t.Run("business without business id", func(t *testing.T) {
		c := claims{Role: RoleBusiness, RegisteredClaims: jwt.RegisteredClaims{
			Subject: "x", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(iss.Secret)
		require.NoError(t, err)
		_, err = iss.Parse(s)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{Subject: "b1", Role: RoleBusiness})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "b1", id.Subject)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}
