package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lottery-system/backend/internal/infrastructure/config"
	"github.com/lottery-system/backend/internal/infrastructure/logger"
	"github.com/lottery-system/backend/internal/ports"
)

// ErrSessionsDisabled is returned when no session secret is configured.
var ErrSessionsDisabled = errors.New("session tokens are disabled: no session secret configured")

// SessionClaims represents the JWT claims
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionService issues and validates the bearer tokens the desktop shell
// hands to the UI.
type SessionService struct {
	cfg    config.SecurityConfig
	logger *logger.Logger
	now    func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(cfg config.SecurityConfig, logger *logger.Logger) *SessionService {
	return &SessionService{
		cfg:    cfg,
		logger: logger.WithComponent("session_service"),
		now:    time.Now,
	}
}

// Enabled reports whether requests must carry a token
func (s *SessionService) Enabled() bool {
	return s.cfg.SessionSecret != ""
}

// Issue signs a new token for subject
func (s *SessionService) Issue(subject string) (*ports.SessionToken, error) {
	if !s.Enabled() {
		return nil, ErrSessionsDisabled
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.cfg.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Infow("Session token issued", "subject", subject, "token_id", claims.ID, "expires_at", expiresAt)

	return &ports.SessionToken{
		Token:     tokenString,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses and verifies a token
func (s *SessionService) ValidateToken(tokenString string) (*ports.Claims, error) {
	if !s.Enabled() {
		return nil, ErrSessionsDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SessionSecret), nil
	},
		jwt.WithIssuer(s.cfg.TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &ports.Claims{
		Subject: claims.Subject,
		TokenID: claims.ID,
	}, nil
}
