package persistence

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendHTTP   = "http"
)

// Options holds the backend settings found under `persistence:` in the
// user's config file.
type Options struct {
	Path          string        `mapstructure:"path"`
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	InMemory      bool          `mapstructure:"in_memory"`
	SyncWrites    bool          `mapstructure:"sync_writes"`
	KeepRevisions int           `mapstructure:"keep_revisions"`
}

// DecodeOptions decodes a loosely typed settings map.
func DecodeOptions(raw map[string]interface{}) (Options, error) {
	var opts Options
	if len(raw) == 0 {
		return opts, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return opts, fmt.Errorf("build options decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("decode persistence options: %w", err)
	}
	return opts, nil
}

// Open creates the named backend. Relative or empty paths resolve inside
// dataDir.
func Open(backend, dataDir string, raw map[string]interface{}, logger logrus.FieldLogger) (Bridge, error) {
	opts, err := DecodeOptions(raw)
	if err != nil {
		return nil, err
	}
	resolve := func(def string) string {
		p := opts.Path
		if p == "" {
			p = def
		}
		if p != ":memory:" && !filepath.IsAbs(p) {
			p = filepath.Join(dataDir, p)
		}
		return p
	}

	switch backend {
	case "", BackendFile:
		return NewFileBridge(resolve(ConfigFileName)), nil
	case BackendSQLite:
		return NewSQLiteBridge(resolve("nodemanager.db"), opts.KeepRevisions)
	case BackendBadger:
		return NewBadgerBridge(BadgerOptions{
			Path:       resolve("badger"),
			InMemory:   opts.InMemory,
			SyncWrites: opts.SyncWrites,
			Logger:     logger,
		})
	case BackendHTTP:
		if opts.URL == "" {
			return nil, fmt.Errorf("http backend requires persistence.url")
		}
		return NewHTTPBridge(opts.URL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", backend)
	}
}
