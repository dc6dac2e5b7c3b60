package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottery-system/backend/internal/infrastructure/config"
	"github.com/lottery-system/backend/internal/infrastructure/logger"
)

func securityConfig(secret string) config.SecurityConfig {
	return config.SecurityConfig{
		SessionSecret: secret,
		TokenIssuer:   "lottery-system",
		TokenTTL:      time.Hour,
	}
}

func TestSessionServiceIssueAndValidate(t *testing.T) {
	s := NewSessionService(securityConfig("0123456789abcdef"), logger.NewNop())
	require.True(t, s.Enabled())

	tok, err := s.Issue("desktop-shell")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := s.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "desktop-shell", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestSessionServiceDisabled(t *testing.T) {
	s := NewSessionService(securityConfig(""), logger.NewNop())
	assert.False(t, s.Enabled())

	_, err := s.Issue("desktop-shell")
	require.ErrorIs(t, err, ErrSessionsDisabled)
	_, err = s.ValidateToken("anything")
	require.ErrorIs(t, err, ErrSessionsDisabled)
}

func TestSessionServiceRejectsBadTokens(t *testing.T) {
	s := NewSessionService(securityConfig("0123456789abcdef"), logger.NewNop())
	other := NewSessionService(securityConfig("fedcba9876543210"), logger.NewNop())

	foreign, err := other.Issue("desktop-shell")
	require.NoError(t, err)

	wrongIssuerCfg := securityConfig("0123456789abcdef")
	wrongIssuerCfg.TokenIssuer = "someone-else"
	wrongIssuer, err := NewSessionService(wrongIssuerCfg, logger.NewNop()).Issue("desktop-shell")
	require.NoError(t, err)

	expired := NewSessionService(securityConfig("0123456789abcdef"), logger.NewNop())
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredTok, err := expired.Issue("desktop-shell")
	require.NoError(t, err)

	noneTok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    "lottery-system",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign.Token,
		"wrong issuer":   wrongIssuer.Token,
		"expired":        expiredTok.Token,
		"none algorithm": noneTok,
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.ValidateToken(tok)
			require.Error(t, err)
		})
	}
}
