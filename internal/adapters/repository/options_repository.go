package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"

	"github.com/lottery-system/backend/internal/domain/entities"
	"github.com/lottery-system/backend/internal/infrastructure/logger"
	"github.com/lottery-system/backend/internal/ports"
)

const optionsFileMode = 0o644

// FileOptionsRepository implements the OptionsRepository interface on top of
// a single JSON file. Every save rewrites the whole file in place.
type FileOptionsRepository struct {
	fs     afero.Fs
	path   string
	logger *logger.Logger
}

// NewFileOptionsRepository creates a new file-backed options repository
func NewFileOptionsRepository(fs afero.Fs, path string, logger *logger.Logger) ports.OptionsRepository {
	return &FileOptionsRepository{
		fs:     fs,
		path:   path,
		logger: logger.WithComponent("options_repository"),
	}
}

// Load reads and decodes the options file. Missing, unreadable and malformed
// files all yield nil.
func (r *FileOptionsRepository) Load(ctx context.Context) *entities.LotteryOptions {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		r.logger.Debugw("No stored options", "path", r.path, "reason", err.Error())
		return nil
	}

	var options entities.LotteryOptions
	if err := json.Unmarshal(data, &options); err != nil {
		r.logger.Debugw("Discarding unparsable options file", "path", r.path, "reason", err.Error())
		return nil
	}

	return &options
}

// Save encodes the options as indented JSON and overwrites the file.
func (r *FileOptionsRepository) Save(ctx context.Context, options *entities.LotteryOptions) error {
	data, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	if err := afero.WriteFile(r.fs, r.path, data, optionsFileMode); err != nil {
		return fmt.Errorf("failed to write options file: %w", err)
	}

	return nil
}

// Path returns the options file location
func (r *FileOptionsRepository) Path() string {
	return r.path
}
