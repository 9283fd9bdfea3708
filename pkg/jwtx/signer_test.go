package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/AD0791/graphql-todos-backend/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestNewHMAC(t *testing.T) {
	for _, alg := range []string{"HS256", "hs384", "HS512"} {
		s, err := jwtx.NewHMAC(alg, secret, "")
		require.NoError(t, err)
		require.Equal(t, strings.ToUpper(alg), s.Alg())
	}

	_, err := jwtx.NewHMAC("RS256", secret, "")
	require.ErrorIs(t, err, jwtx.ErrUnsupportedAlg)

	_, err = jwtx.NewHMAC("HS256", []byte("short"), "")
	require.Error(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := jwtx.NewHMAC("HS256", secret, "graphql-todos")
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims("user-1", "USER", "u@example.com", "graphql-todos", time.Minute, time.Now().UTC())
	tok, err := s.Sign(claims)
	require.NoError(t, err)

	got, err := s.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "USER", got.Role)
}

func TestVerifyRejects(t *testing.T) {
	s, err := jwtx.NewHMAC("HS256", secret, "graphql-todos")
	require.NoError(t, err)
	now := time.Now().UTC()

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwtx.NewHMAC("HS256", []byte(strings.Repeat("x", 32)), "graphql-todos")
		require.NoError(t, err)
		tok, err := other.Sign(jwtx.NewAccessClaims("u", "USER", "", "graphql-todos", time.Minute, now))
		require.NoError(t, err)

		_, err = s.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		other, err := jwtx.NewHMAC("HS512", secret, "graphql-todos")
		require.NoError(t, err)
		tok, err := other.Sign(jwtx.NewAccessClaims("u", "USER", "", "graphql-todos", time.Minute, now))
		require.NoError(t, err)

		_, err = s.Verify(tok)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		tok, err := s.Sign(jwtx.NewAccessClaims("u", "USER", "", "graphql-todos", time.Minute, now.Add(-time.Hour)))
		require.NoError(t, err)

		_, err = s.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		tok, err := s.Sign(jwtx.NewAccessClaims("u", "USER", "", "elsewhere", time.Minute, now))
		require.NoError(t, err)

		_, err = s.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("not an access token", func(t *testing.T) {
		c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			Issuer:    "graphql-todos",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}, Type: "refresh"}
		tok, err := s.Sign(c)
		require.NoError(t, err)

		_, err = s.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}
