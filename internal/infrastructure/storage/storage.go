package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"github.com/lottery-system/backend/internal/infrastructure/config"
)

const dirMode = 0o755

// Storage describes the resolved location of the options file
type Storage struct {
	Fs   afero.Fs
	Dir  string
	Path string
}

// DataRoot returns the per-user data directory the application directory is
// created under: the configured override, or the platform data home.
func DataRoot(cfg config.StorageConfig) (string, error) {
	if cfg.DataDir != "" {
		return filepath.Clean(cfg.DataDir), nil
	}
	if xdg.DataHome == "" {
		return "", errors.New("platform data directory is not available")
	}
	return xdg.DataHome, nil
}

// ResolvePath computes the storage path and creates its directory with any
// missing ancestors.
func ResolvePath(fs afero.Fs, cfg config.StorageConfig) (*Storage, error) {
	root, err := DataRoot(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	dir := filepath.Join(root, cfg.AppDir)
	if err := fs.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	return &Storage{
		Fs:   fs,
		Dir:  dir,
		Path: filepath.Join(dir, cfg.FileName),
	}, nil
}

// HealthCheck verifies the storage directory still exists
func (s *Storage) HealthCheck() error {
	info, err := s.Fs.Stat(s.Dir)
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage health check failed: %s is not a directory", s.Dir)
	}
	return nil
}

// GetInfo returns details about the options file
func (s *Storage) GetInfo() map[string]interface{} {
	info := map[string]interface{}{
		"dir":  s.Dir,
		"path": s.Path,
	}

	if fi, err := s.Fs.Stat(s.Path); err == nil {
		info["exists"] = true
		info["size_bytes"] = fi.Size()
		info["modified_at"] = fi.ModTime().UTC()
	} else {
		info["exists"] = false
	}

	return info
}
