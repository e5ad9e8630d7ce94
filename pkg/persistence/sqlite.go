package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
)

// DefaultKeepRevisions is how many saved snapshots the sqlite backend retains.
const DefaultKeepRevisions = 20

// Revision describes one saved snapshot.
type Revision struct {
	ID      int64
	SavedAt time.Time
	Size    int
}

// SQLiteBridge stores every save as a revision row and reads the newest one.
type SQLiteBridge struct {
	db   *sql.DB
	keep int
}

// NewSQLiteBridge opens (or creates) the database at dbPath. keep <= 0 uses
// DefaultKeepRevisions.
func NewSQLiteBridge(dbPath string, keep int) (*SQLiteBridge, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if keep <= 0 {
		keep = DefaultKeepRevisions
	}
	b := &SQLiteBridge{db: db, keep: keep}
	if err := b.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBridge) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS config_revisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		saved_at TIMESTAMP NOT NULL,
		body TEXT NOT NULL
	);
	`
	if _, err := b.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (b *SQLiteBridge) GetConfig(ctx context.Context) (*models.Config, error) {
	var body string
	err := b.db.QueryRowContext(ctx,
		"SELECT body FROM config_revisions ORDER BY id DESC LIMIT 1").Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest config: %w", err)
	}
	return decodeConfig([]byte(body))
}

func (b *SQLiteBridge) SaveConfig(ctx context.Context, cfg *models.Config) error {
	data, err := encodeConfig(cfg)
	if err != nil {
		return err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO config_revisions (saved_at, body) VALUES (?, ?)",
		time.Now().UTC(), string(data)); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM config_revisions
		WHERE id NOT IN (SELECT id FROM config_revisions ORDER BY id DESC LIMIT ?)`,
		b.keep); err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit revision: %w", err)
	}
	return nil
}

// Revisions lists retained snapshots, newest first.
func (b *SQLiteBridge) Revisions(ctx context.Context) ([]Revision, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT id, saved_at, length(body) FROM config_revisions ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.SavedAt, &r.Size); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Revision loads a specific snapshot.
func (b *SQLiteBridge) Revision(ctx context.Context, id int64) (*models.Config, error) {
	var body string
	err := b.db.QueryRowContext(ctx,
		"SELECT body FROM config_revisions WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query revision %d: %w", id, err)
	}
	return decodeConfig([]byte(body))
}

func (b *SQLiteBridge) Close() error {
	return b.db.Close()
}
