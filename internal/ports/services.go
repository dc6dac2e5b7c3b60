package ports

import (
	"context"
	"time"

	"github.com/lottery-system/backend/internal/domain/entities"
)

// OptionsService interface for options persistence operations
type OptionsService interface {
	Save(ctx context.Context, options *entities.LotteryOptions) error
	Get(ctx context.Context) (*entities.LotteryOptions, bool)
	Loaded() bool
	Path() string
}

// SessionService interface for local session tokens
type SessionService interface {
	Enabled() bool
	Issue(subject string) (*SessionToken, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Command names understood by the invoke endpoint
const (
	CommandSaveOptions = "save_options"
	CommandGetOptions  = "get_options"
)

// Request/Response Types

// SaveOptionsRequest is the argument object of the save_options command
type SaveOptionsRequest struct {
	Options *entities.LotteryOptions `json:"options" validate:"required"`
}

type SessionToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Claims struct {
	Subject string `json:"sub"`
	TokenID string `json:"jti"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
