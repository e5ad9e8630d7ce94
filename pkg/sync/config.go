package sync

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Defaults for Config.
const (
	DefaultDebounce    = 250 * time.Millisecond
	DefaultSaveTimeout = 5 * time.Second
)

// Config controls how store mutations reach the persistence backend.
type Config struct {
	// Debounce collapses bursts of mutations into one save.
	Debounce time.Duration `mapstructure:"debounce"`
	// SaveTimeout bounds a single save call.
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
	// AutoSave saves after every mutation. When false only Flush saves.
	AutoSave bool `mapstructure:"auto_save"`
	// Watch reloads the store when the backing file changes on disk.
	Watch bool `mapstructure:"watch"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Debounce:    DefaultDebounce,
		SaveTimeout: DefaultSaveTimeout,
		AutoSave:    true,
	}
}

// DecodeConfig reads sync settings from a loosely typed map, such as the
// `sync:` section of the user's config file. Missing keys keep defaults.
func DecodeConfig(raw map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()
	if len(raw) == 0 {
		return cfg, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, fmt.Errorf("build sync config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("failed to decode sync config: %w", err)
	}
	if cfg.Debounce < 0 {
		return cfg, fmt.Errorf("sync debounce must not be negative")
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	return cfg, nil
}
