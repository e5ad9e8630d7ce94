package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// ConfigFileName is the file the file backend keeps inside its data dir.
const ConfigFileName = "config.json"

// FileBridge keeps the config in a single JSON file. It remembers the bytes
// of its last save so a watcher can tell its own writes from foreign ones.
type FileBridge struct {
	path string

	mu      sync.Mutex
	written []byte
}

// NewFileBridge creates a file backend at path.
func NewFileBridge(path string) *FileBridge {
	return &FileBridge{path: path}
}

// Path returns the config file location.
func (b *FileBridge) Path() string {
	return b.path
}

func (b *FileBridge) GetConfig(ctx context.Context) (*models.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return decodeConfig(data)
}

// GetForeignConfig reads the file and reports whether its contents differ
// from what this bridge last saved. The config is nil when they match.
func (b *FileBridge) GetForeignConfig(ctx context.Context) (*models.Config, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read config file: %w", err)
	}
	b.mu.Lock()
	ours := b.written != nil && bytes.Equal(data, b.written)
	b.mu.Unlock()
	if ours {
		return nil, false, nil
	}
	cfg, err := decodeConfig(data)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// SaveConfig writes to a temporary file and renames it over the old one so a
// reader never sees a partial file.
func (b *FileBridge) SaveConfig(ctx context.Context, cfg *models.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeConfig(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	b.mu.Lock()
	b.written = data
	b.mu.Unlock()
	return nil
}

func (b *FileBridge) Close() error { return nil }
