// Package persistence stores the classification config. Every backend reads
// and writes the whole config snapshot, so the last save wins.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// Bridge loads and saves config snapshots.
type Bridge interface {
	GetConfig(ctx context.Context) (*models.Config, error)
	SaveConfig(ctx context.Context, cfg *models.Config) error
	Close() error
}

// Response is the body every config endpoint answers with. Only the fields
// relevant to an endpoint are set.
type Response struct {
	Success           bool           `json:"success"`
	Error             string         `json:"error,omitempty"`
	Message           string         `json:"message,omitempty"`
	Config            *models.Config `json:"config,omitempty"`
	Folder            *FolderInfo    `json:"folder,omitempty"`
	Expanded          *bool          `json:"expanded,omitempty"`
	Deleted           []string       `json:"deleted,omitempty"`
	HiddenPlugins     []string       `json:"hiddenPlugins,omitempty"`
	ShowHiddenPlugins *bool          `json:"showHiddenPlugins,omitempty"`
}

// FolderInfo is a folder together with its id, as returned on create.
type FolderInfo struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Parent   *string `json:"parent"`
	Level    int     `json:"level"`
	Order    int     `json:"order"`
	Expanded bool    `json:"expanded"`
}

// NewFolderInfo converts a stored folder.
func NewFolderInfo(f models.Folder) *FolderInfo {
	info := &FolderInfo{
		ID:       f.ID,
		Name:     f.Name,
		Level:    f.Level,
		Order:    f.Order,
		Expanded: f.Expanded,
	}
	if !f.IsRoot() {
		parent := f.Parent
		info.Parent = &parent
	}
	return info
}

// DefaultConfig is returned when nothing has been saved yet.
func DefaultConfig() *models.Config {
	cfg := models.NewConfig()
	cfg.Settings["auto_save"] = true
	return cfg
}

func decodeConfig(data []byte) (*models.Config, error) {
	cfg := &models.Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

func encodeConfig(cfg *models.Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("encode config: nil config")
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
