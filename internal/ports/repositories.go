package ports

import (
	"context"

	"github.com/lottery-system/backend/internal/domain/entities"
)

// OptionsRepository defines the interface for persisting the options record
type OptionsRepository interface {
	// Load returns the stored options, or nil when nothing usable is stored.
	Load(ctx context.Context) *entities.LotteryOptions
	// Save replaces the stored options.
	Save(ctx context.Context, options *entities.LotteryOptions) error
	// Path returns the location of the backing file.
	Path() string
}
