package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

var configKey = []byte("nodemanager/config")

// BadgerOptions configures the embedded badger backend.
type BadgerOptions struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     logrus.FieldLogger
}

// BadgerBridge keeps the config under one key in an embedded badger store.
type BadgerBridge struct {
	db *badger.DB
}

type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// NewBadgerBridge opens the badger store.
func NewBadgerBridge(opts BadgerOptions) (*BadgerBridge, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("badger path is required unless in_memory is set")
	}

	var bo badger.Options
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", opts.Path, err)
		}
		bo = badger.DefaultOptions(opts.Path)
	}
	bo = bo.WithSyncWrites(opts.SyncWrites).WithNumVersionsToKeep(1)
	if opts.Logger != nil {
		bo = bo.WithLogger(badgerLogger{logger: opts.Logger})
	} else {
		bo = bo.WithLogger(nil)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerBridge{db: db}, nil
}

func (b *BadgerBridge) GetConfig(ctx context.Context) (*models.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(configKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config key: %w", err)
	}
	return decodeConfig(data)
}

func (b *BadgerBridge) SaveConfig(ctx context.Context, cfg *models.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeConfig(cfg)
	if err != nil {
		return err
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(configKey, data)
	}); err != nil {
		return fmt.Errorf("write config key: %w", err)
	}
	return nil
}

func (b *BadgerBridge) Close() error {
	return b.db.Close()
}
