package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mattsolo1/grove-nodemanager/pkg/models"
	"github.com/mattsolo1/grove-nodemanager/pkg/store"
)

// DefaultHTTPTimeout bounds each request when the caller's context has no
// deadline.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPBridge talks to a config server exposing the /node-manager endpoints.
type HTTPBridge struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBridge creates a client for baseURL. timeout <= 0 uses
// DefaultHTTPTimeout.
func NewHTTPBridge(baseURL string, timeout time.Duration) *HTTPBridge {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPBridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// remoteError turns a failed response into the store's error taxonomy.
func remoteError(status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest:
		return &store.ValidationError{Reason: msg}
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, store.ErrNotFound)
	default:
		return fmt.Errorf("server returned %d: %s", status, msg)
	}
}

func (b *HTTPBridge) do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= 300 {
			return nil, remoteError(resp.StatusCode, "")
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !out.Success {
		status := resp.StatusCode
		if status < 300 {
			status = http.StatusInternalServerError
		}
		return nil, remoteError(status, out.Error)
	}
	return &out, nil
}

func (b *HTTPBridge) GetConfig(ctx context.Context) (*models.Config, error) {
	resp, err := b.do(ctx, http.MethodGet, "/node-manager/config", nil)
	if err != nil {
		return nil, err
	}
	if resp.Config == nil {
		return DefaultConfig(), nil
	}
	resp.Config.Normalize()
	return resp.Config, nil
}

func (b *HTTPBridge) SaveConfig(ctx context.Context, cfg *models.Config) error {
	_, err := b.do(ctx, http.MethodPost, "/node-manager/config", map[string]interface{}{"config": cfg})
	return err
}

// CreateFolder creates a folder on the server and returns it.
func (b *HTTPBridge) CreateFolder(ctx context.Context, name, parentID string) (*FolderInfo, error) {
	body := map[string]interface{}{"name": name, "parent": nil}
	if parentID != "" {
		body["parent"] = parentID
	}
	resp, err := b.do(ctx, http.MethodPost, "/node-manager/folder/create", body)
	if err != nil {
		return nil, err
	}
	return resp.Folder, nil
}

func (b *HTTPBridge) RenameFolder(ctx context.Context, id, name string) error {
	_, err := b.do(ctx, http.MethodPost, "/node-manager/folder/rename", map[string]string{"id": id, "name": name})
	return err
}

// DeleteFolders deletes folders and their descendants, returning every
// removed id.
func (b *HTTPBridge) DeleteFolders(ctx context.Context, ids []string) ([]string, error) {
	resp, err := b.do(ctx, http.MethodPost, "/node-manager/folder/delete", map[string][]string{"ids": ids})
	if err != nil {
		return nil, err
	}
	return resp.Deleted, nil
}

func (b *HTTPBridge) MoveFolder(ctx context.Context, id, targetParent string, targetOrder int) error {
	body := map[string]interface{}{"id": id, "target_parent": nil, "target_order": targetOrder}
	if targetParent != "" {
		body["target_parent"] = targetParent
	}
	_, err := b.do(ctx, http.MethodPost, "/node-manager/folder/move", body)
	return err
}

// ToggleFolder flips a folder's expanded flag and returns the new value.
func (b *HTTPBridge) ToggleFolder(ctx context.Context, id string) (bool, error) {
	resp, err := b.do(ctx, http.MethodPost, "/node-manager/folder/toggle", map[string]string{"id": id})
	if err != nil {
		return false, err
	}
	return resp.Expanded != nil && *resp.Expanded, nil
}

// SetHiddenPlugins hides or shows plugin sources and returns the hidden list.
func (b *HTTPBridge) SetHiddenPlugins(ctx context.Context, sourceIDs []string, hidden bool) ([]string, error) {
	action := "show"
	if hidden {
		action = "hide"
	}
	resp, err := b.do(ctx, http.MethodPost, "/node-manager/plugin/toggle-hidden",
		map[string]interface{}{"pluginNames": sourceIDs, "action": action})
	if err != nil {
		return nil, err
	}
	return resp.HiddenPlugins, nil
}

func (b *HTTPBridge) SetShowHidden(ctx context.Context, show bool) error {
	_, err := b.do(ctx, http.MethodPost, "/node-manager/plugin/toggle-show-hidden", map[string]bool{"showHidden": show})
	return err
}

func (b *HTTPBridge) Close() error {
	b.client.CloseIdleConnections()
	return nil
}
